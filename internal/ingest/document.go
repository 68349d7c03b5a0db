package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/metinatakli/showtime-aggregator/internal/domain"
)

const unknownTitle = "Unknown"

// Document is one source's listing as emitted by its producer.
type Document struct {
	BaseURL string
	Movies  []Lenient[MovieEntry]
}

var errNullElement = errors.New("element is null")

// Lenient holds a collection element whose decode error is kept instead of
// failing the enclosing document. A null element is an error too.
type Lenient[T any] struct {
	Value T
	Err   error

	decoded bool
}

func (l *Lenient[T]) UnmarshalJSON(data []byte) error {
	l.decoded = true

	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		l.Err = errNullElement
		return nil
	}

	if err := json.Unmarshal(data, &l.Value); err != nil {
		l.Err = err
	}
	return nil
}

// Failure reports why the element cannot be ingested, or nil. An element the
// decoder never handed to UnmarshalJSON carried no data.
func (l Lenient[T]) Failure() error {
	if l.Err != nil {
		return l.Err
	}
	if !l.decoded {
		return errNullElement
	}
	return nil
}

type MovieEntry struct {
	MovieTitle *string              `json:"movie_title"`
	Title      *string              `json:"title"`
	Poster     *string              `json:"poster"`
	Format     *string              `json:"format"`
	Dates      []Lenient[DateEntry] `json:"dates"`
}

// DisplayTitle is movie_title, then title, then "Unknown".
func (m MovieEntry) DisplayTitle() string {
	for _, candidate := range []*string{m.MovieTitle, m.Title} {
		if candidate == nil {
			continue
		}
		if title := strings.TrimSpace(*candidate); title != "" {
			return title
		}
	}

	return unknownTitle
}

type DateEntry struct {
	DateLabel string                 `json:"date_label"`
	Cinemas   []Lenient[CinemaEntry] `json:"cinemas"`
}

type CinemaEntry struct {
	CinemaName string                  `json:"cinema_name"`
	Sessions   []Lenient[SessionEntry] `json:"sessions"`
}

type SessionEntry struct {
	VersionLabel     *string              `json:"version_label"`
	Hall             *string              `json:"hall"`
	AudioLanguage    *string              `json:"audio_language"`
	SubtitleLanguage *string              `json:"subtitle_language"`
	Times            []Lenient[TimeValue] `json:"times"`
}

type TimeKind int

const (
	BareTime TimeKind = iota + 1
	URLTime
)

func (k TimeKind) String() string {
	switch k {
	case BareTime:
		return "bare"
	case URLTime:
		return "url"
	default:
		return "unknown"
	}
}

// TimeValue is either a bare time string or a time paired with a booking URL.
// The variant is decided while decoding.
type TimeValue struct {
	Kind TimeKind
	Time string
	URL  string
}

var errNullTimeValue = errors.New("time value is null")

func (v *TimeValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return errNullTimeValue
	}

	var bare string
	if err := json.Unmarshal(data, &bare); err == nil {
		*v = TimeValue{Kind: BareTime, Time: bare}
		return nil
	}

	var structured struct {
		Time string `json:"time"`
		URL  string `json:"url"`
	}
	if err := json.Unmarshal(data, &structured); err != nil {
		return fmt.Errorf("time value must be a string or an object with time and url: %w", err)
	}

	if strings.TrimSpace(structured.URL) == "" {
		*v = TimeValue{Kind: BareTime, Time: structured.Time}
		return nil
	}

	*v = TimeValue{Kind: URLTime, Time: structured.Time, URL: strings.TrimSpace(structured.URL)}
	return nil
}

// DecodeDocument decodes a listing document. The top level must be an object
// holding a movies array; anything else is ErrMalformedDocument. Malformed
// elements below the top level are kept with their error.
func DecodeDocument(data []byte) (*Document, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("%w: top level is not an object: %v", domain.ErrMalformedDocument, err)
	}

	rawMovies, ok := top["movies"]
	if !ok {
		return nil, fmt.Errorf("%w: missing movies collection", domain.ErrMalformedDocument)
	}

	rawMovies = bytes.TrimSpace(rawMovies)
	if len(rawMovies) == 0 || rawMovies[0] != '[' {
		return nil, fmt.Errorf("%w: movies is not an array", domain.ErrMalformedDocument)
	}

	doc := &Document{}
	if err := json.Unmarshal(rawMovies, &doc.Movies); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedDocument, err)
	}

	if rawBase, ok := top["base_url"]; ok {
		var baseURL *string
		if err := json.Unmarshal(rawBase, &baseURL); err == nil && baseURL != nil {
			doc.BaseURL = strings.TrimSpace(*baseURL)
		}
	}

	return doc, nil
}

// ExternalID is the movie's natural key within its provider: the display
// title with runs of whitespace collapsed.
func ExternalID(title string) string {
	return strings.Join(strings.Fields(title), " ")
}

// rawData is the canonical JSON stored with each movie.
func rawData(entry MovieEntry, baseURL string) (*string, error) {
	snapshot := struct {
		Title   string  `json:"title"`
		Poster  *string `json:"poster"`
		Format  *string `json:"format"`
		BaseURL string  `json:"base_url,omitempty"`
	}{
		Title:   entry.DisplayTitle(),
		Poster:  entry.Poster,
		Format:  entry.Format,
		BaseURL: baseURL,
	}

	b, err := json.Marshal(snapshot)
	if err != nil {
		return nil, err
	}

	s := string(b)
	return &s, nil
}
