package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/metinatakli/showtime-aggregator/internal/domain"
)

// MemStore is an in-memory domain.Store that enforces the natural keys of
// the canonical model. ResetErr and AcquireErr are returned when set.
type MemStore struct {
	mu sync.Mutex

	ResetErr   error
	AcquireErr error

	Resets   int
	Acquired int
	Released int

	providers    []*domain.Provider
	cinemas      []*domain.Cinema
	movies       []*domain.Movie
	showtimes    []*domain.Showtime
	bookingLinks []*domain.BookingLink
}

func NewMemStore() *MemStore {
	return &MemStore{}
}

func (s *MemStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ResetErr != nil {
		return s.ResetErr
	}

	s.Resets++
	s.providers = nil
	s.cinemas = nil
	s.movies = nil
	s.showtimes = nil
	s.bookingLinks = nil
	return nil
}

func (s *MemStore) Acquire(ctx context.Context) (domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.AcquireErr != nil {
		return nil, s.AcquireErr
	}

	s.Acquired++
	return &memSession{store: s}, nil
}

// Registries gives direct access without a session.
func (s *MemStore) Registries() domain.Registries {
	return domain.Registries{
		Providers:    &memProviders{s},
		Cinemas:      &memCinemas{s},
		Movies:       &memMovies{s},
		Showtimes:    &memShowtimes{s},
		BookingLinks: &memBookingLinks{s},
	}
}

func (s *MemStore) Counts(ctx context.Context) (domain.Counts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return domain.Counts{
		Providers:    len(s.providers),
		Cinemas:      len(s.cinemas),
		Movies:       len(s.movies),
		Showtimes:    len(s.showtimes),
		BookingLinks: len(s.bookingLinks),
	}, nil
}

func (s *MemStore) Movies() []domain.Movie {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Movie, 0, len(s.movies))
	for _, m := range s.movies {
		out = append(out, *m)
	}
	return out
}

// Showtimes are returned ordered by start time.
func (s *MemStore) Showtimes() []domain.Showtime {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Showtime, 0, len(s.showtimes))
	for _, st := range s.showtimes {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out
}

func (s *MemStore) BookingLinks() []domain.BookingLink {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.BookingLink, 0, len(s.bookingLinks))
	for _, l := range s.bookingLinks {
		out = append(out, *l)
	}
	return out
}

type memSession struct {
	store *MemStore
}

func (s *memSession) Registries() domain.Registries {
	return s.store.Registries()
}

func (s *memSession) Counts(ctx context.Context) (domain.Counts, error) {
	return s.store.Counts(ctx)
}

func (s *memSession) Release() {
	s.store.mu.Lock()
	s.store.Released++
	s.store.mu.Unlock()
}

type memProviders struct{ s *MemStore }

func (r *memProviders) Ensure(ctx context.Context, name string, websiteURL *string) (*domain.Provider, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, p := range r.s.providers {
		if p.Name == name {
			out := *p
			return &out, nil
		}
	}

	p := &domain.Provider{ID: len(r.s.providers) + 1, Name: name, WebsiteURL: websiteURL}
	r.s.providers = append(r.s.providers, p)
	out := *p
	return &out, nil
}

func (r *memProviders) GetById(ctx context.Context, id int) (*domain.Provider, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, p := range r.s.providers {
		if p.ID == id {
			out := *p
			return &out, nil
		}
	}
	return nil, domain.ErrRecordNotFound
}

func (r *memProviders) GetAll(ctx context.Context) ([]*domain.Provider, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]*domain.Provider, 0, len(r.s.providers))
	for _, p := range r.s.providers {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

type memCinemas struct{ s *MemStore }

func (r *memCinemas) Ensure(ctx context.Context, key domain.CinemaKey, attrs domain.CinemaAttrs) (*domain.Cinema, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if !r.s.hasProvider(key.ProviderID) {
		return nil, domain.ErrMissingReference
	}

	for _, c := range r.s.cinemas {
		if c.ProviderID == key.ProviderID && c.ExternalID == key.ExternalID {
			out := *c
			return &out, nil
		}
	}

	c := &domain.Cinema{
		ID:         len(r.s.cinemas) + 1,
		ProviderID: key.ProviderID,
		ExternalID: key.ExternalID,
		Name:       attrs.Name,
		City:       attrs.City,
		Country:    attrs.Country,
	}
	r.s.cinemas = append(r.s.cinemas, c)
	out := *c
	return &out, nil
}

func (r *memCinemas) GetById(ctx context.Context, id int) (*domain.Cinema, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, c := range r.s.cinemas {
		if c.ID == id {
			out := *c
			return &out, nil
		}
	}
	return nil, domain.ErrRecordNotFound
}

func (r *memCinemas) GetAll(ctx context.Context) ([]*domain.Cinema, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]*domain.Cinema, 0, len(r.s.cinemas))
	for _, c := range r.s.cinemas {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

type memMovies struct{ s *MemStore }

func (r *memMovies) Ensure(ctx context.Context, key domain.MovieKey, attrs domain.MovieAttrs) (*domain.Movie, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if !r.s.hasProvider(key.ProviderID) {
		return nil, domain.ErrMissingReference
	}

	for _, m := range r.s.movies {
		if m.ProviderID != key.ProviderID || m.ExternalID != key.ExternalID {
			continue
		}

		changes := m.Changes(attrs)
		if changes.Title != "" {
			m.Title = changes.Title
		}
		if changes.Poster != nil {
			m.Poster = changes.Poster
		}
		if changes.RawData != nil {
			m.RawData = changes.RawData
		}
		out := *m
		return &out, nil
	}

	if attrs.CoreMovieID != nil {
		for _, m := range r.s.movies {
			if m.ProviderID == key.ProviderID && m.CoreMovieID != nil && *m.CoreMovieID == *attrs.CoreMovieID {
				return nil, domain.ErrCoreMovieConflict
			}
		}
	}

	m := &domain.Movie{
		ID:          len(r.s.movies) + 1,
		ProviderID:  key.ProviderID,
		ExternalID:  key.ExternalID,
		CoreMovieID: attrs.CoreMovieID,
		Title:       attrs.Title,
		Poster:      attrs.Poster,
		RawData:     attrs.RawData,
	}
	r.s.movies = append(r.s.movies, m)
	out := *m
	return &out, nil
}

func (r *memMovies) GetById(ctx context.Context, id int) (*domain.Movie, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, m := range r.s.movies {
		if m.ID == id {
			out := *m
			return &out, nil
		}
	}
	return nil, domain.ErrRecordNotFound
}

func (r *memMovies) FindByTitle(ctx context.Context, term string) (*domain.Movie, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, m := range r.s.movies {
		if strings.Contains(strings.ToLower(m.Title), strings.ToLower(term)) {
			out := *m
			return &out, nil
		}
	}
	return nil, domain.ErrRecordNotFound
}

type memShowtimes struct{ s *MemStore }

func (r *memShowtimes) Ensure(ctx context.Context, key domain.ShowtimeKey, attrs domain.ShowtimeAttrs) (*domain.Showtime, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if !r.s.hasCinema(key.CinemaID) || !r.s.hasMovie(key.MovieID) {
		return nil, domain.ErrMissingReference
	}

	for _, st := range r.s.showtimes {
		if st.CinemaID == key.CinemaID && st.MovieID == key.MovieID && st.StartTime.Equal(key.StartTime) {
			out := *st
			return &out, nil
		}
	}

	st := &domain.Showtime{
		ID:               len(r.s.showtimes) + 1,
		CinemaID:         key.CinemaID,
		MovieID:          key.MovieID,
		StartTime:        key.StartTime,
		VersionLabel:     attrs.VersionLabel,
		HallType:         attrs.HallType,
		AudioLanguage:    attrs.AudioLanguage,
		SubtitleLanguage: attrs.SubtitleLanguage,
	}
	r.s.showtimes = append(r.s.showtimes, st)
	out := *st
	return &out, nil
}

// Search ignores pagination and returns every matching showtime.
func (r *memShowtimes) Search(ctx context.Context, filters domain.ShowtimeFilters) ([]*domain.ShowtimeDetails, *domain.Metadata, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*domain.ShowtimeDetails
	for _, st := range r.s.showtimes {
		if filters.MovieID != nil && st.MovieID != *filters.MovieID {
			continue
		}
		details := &domain.ShowtimeDetails{Showtime: *st}
		for _, l := range r.s.bookingLinks {
			if l.ShowtimeID == st.ID {
				details.BookingLinks = append(details.BookingLinks, *l)
			}
		}
		out = append(out, details)
	}

	return out, domain.NewMetadata(len(out), 1, max(len(out), 1)), nil
}

type memBookingLinks struct{ s *MemStore }

func (r *memBookingLinks) Ensure(ctx context.Context, key domain.BookingLinkKey) (*domain.BookingLink, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	found := false
	for _, st := range r.s.showtimes {
		if st.ID == key.ShowtimeID {
			found = true
			break
		}
	}
	if !found {
		return nil, domain.ErrMissingReference
	}

	for _, l := range r.s.bookingLinks {
		if l.ShowtimeID == key.ShowtimeID && l.URL == key.URL {
			out := *l
			return &out, nil
		}
	}

	l := &domain.BookingLink{ID: len(r.s.bookingLinks) + 1, ShowtimeID: key.ShowtimeID, URL: key.URL}
	r.s.bookingLinks = append(r.s.bookingLinks, l)
	out := *l
	return &out, nil
}

func (r *memBookingLinks) GetAll(ctx context.Context) ([]*domain.BookingLink, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]*domain.BookingLink, 0, len(r.s.bookingLinks))
	for _, l := range r.s.bookingLinks {
		cp := *l
		out = append(out, &cp)
	}
	return out, nil
}

func (s *MemStore) hasProvider(id int) bool {
	for _, p := range s.providers {
		if p.ID == id {
			return true
		}
	}
	return false
}

func (s *MemStore) hasCinema(id int) bool {
	for _, c := range s.cinemas {
		if c.ID == id {
			return true
		}
	}
	return false
}

func (s *MemStore) hasMovie(id int) bool {
	for _, m := range s.movies {
		if m.ID == id {
			return true
		}
	}
	return false
}
