package domain

import "context"

type Movie struct {
	ID          int
	ProviderID  int
	ExternalID  string
	CoreMovieID *int
	Title       string
	Poster      *string
	RawData     *string
}

type MovieKey struct {
	ProviderID int
	ExternalID string
}

// MovieAttrs are the mutable movie fields. A nil Poster or RawData and an
// empty Title leave the stored value untouched.
type MovieAttrs struct {
	Title       string
	Poster      *string
	RawData     *string
	CoreMovieID *int
}

// Changes returns the attributes of attrs that differ from the stored movie.
func (m *Movie) Changes(attrs MovieAttrs) MovieAttrs {
	var changes MovieAttrs

	if attrs.Title != "" && attrs.Title != m.Title {
		changes.Title = attrs.Title
	}
	if attrs.Poster != nil && (m.Poster == nil || *m.Poster != *attrs.Poster) {
		changes.Poster = attrs.Poster
	}
	if attrs.RawData != nil && (m.RawData == nil || *m.RawData != *attrs.RawData) {
		changes.RawData = attrs.RawData
	}

	return changes
}

func (a MovieAttrs) IsZero() bool {
	return a.Title == "" && a.Poster == nil && a.RawData == nil
}

type MovieRepository interface {
	Ensure(ctx context.Context, key MovieKey, attrs MovieAttrs) (*Movie, error)
	GetById(ctx context.Context, id int) (*Movie, error)
	FindByTitle(ctx context.Context, term string) (*Movie, error)
}
