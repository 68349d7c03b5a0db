package domain

import "errors"

var (
	ErrRecordNotFound    = errors.New("record not found")
	ErrMissingReference  = errors.New("referenced cinema or movie does not exist")
	ErrCoreMovieConflict = errors.New("core movie id already assigned to another movie of this provider")
	ErrStoreUnavailable  = errors.New("canonical store unavailable")
	ErrAlreadyRunning    = errors.New("pipeline run already in progress")
	ErrMalformedDocument = errors.New("malformed listing document")
	ErrSourceUnavailable = errors.New("source document unavailable")
)
