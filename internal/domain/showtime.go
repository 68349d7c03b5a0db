package domain

import (
	"context"
	"time"
)

type Showtime struct {
	ID               int
	CinemaID         int
	MovieID          int
	StartTime        time.Time
	VersionLabel     *string
	HallType         *string
	AudioLanguage    *string
	SubtitleLanguage *string
}

// ShowtimeKey is globally unique. StartTime is venue-local wall time.
type ShowtimeKey struct {
	CinemaID  int
	MovieID   int
	StartTime time.Time
}

// ShowtimeAttrs are only written on insert; a re-seen key keeps the
// attributes it was first stored with.
type ShowtimeAttrs struct {
	VersionLabel     *string
	HallType         *string
	AudioLanguage    *string
	SubtitleLanguage *string
}

type ShowtimeDetails struct {
	Showtime
	Cinema       CinemaSummary
	BookingLinks []BookingLink
}

type CinemaSummary struct {
	ID       int
	Name     string
	Provider ProviderSummary
}

type ProviderSummary struct {
	ID   int
	Name string
}

type ShowtimeFilters struct {
	Pagination
	MovieID    *int
	MovieTitle string
}

type ShowtimeRepository interface {
	Ensure(ctx context.Context, key ShowtimeKey, attrs ShowtimeAttrs) (*Showtime, error)
	Search(ctx context.Context, filters ShowtimeFilters) ([]*ShowtimeDetails, *Metadata, error)
}
