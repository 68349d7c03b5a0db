package domain

import "context"

// Registries is the write path of the canonical store. Callers must respect
// the dependency order provider, cinema/movie, showtime, booking link.
type Registries struct {
	Providers    ProviderRepository
	Cinemas      CinemaRepository
	Movies       MovieRepository
	Showtimes    ShowtimeRepository
	BookingLinks BookingLinkRepository
}

type Counts struct {
	Providers    int `json:"providers"`
	Cinemas      int `json:"cinemas"`
	Movies       int `json:"movies"`
	Showtimes    int `json:"showtimes"`
	BookingLinks int `json:"bookingLinks"`
}

// Store is the canonical store as seen by a pipeline run.
type Store interface {
	// Reset drops every entity table and recreates the empty schema.
	Reset(ctx context.Context) error
	Acquire(ctx context.Context) (Session, error)
}

// Session is the single store handle a run writes through. Release must be
// called exactly once.
type Session interface {
	Registries() Registries
	Counts(ctx context.Context) (Counts, error)
	Release()
}
