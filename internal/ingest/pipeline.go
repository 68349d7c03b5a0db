package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/metinatakli/showtime-aggregator/internal/domain"
	"github.com/metinatakli/showtime-aggregator/internal/timeresolver"
)

// Source identifies the provider a document is ingested for.
type Source struct {
	Name       string
	WebsiteURL string
}

// Failure is one skipped entry. Path locates it inside the document, e.g.
// movies[0].dates[1].cinemas[0].sessions[2].times[1].
type Failure struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Stats count the distinct entities a document touched.
type Stats struct {
	Movies        int       `json:"movies"`
	Cinemas       int       `json:"cinemas"`
	Showtimes     int       `json:"showtimes"`
	BookingLinks  int       `json:"bookingLinks"`
	Skipped       int       `json:"skipped"`
	DateFallbacks int       `json:"dateFallbacks"`
	Failures      []Failure `json:"failures,omitempty"`
}

type Pipeline struct {
	resolver *timeresolver.Resolver
	logger   *slog.Logger
}

func New(resolver *timeresolver.Resolver, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		resolver: resolver,
		logger:   logger,
	}
}

// Ingest materializes doc into the store through reg, in the order provider,
// movie, cinema, showtime, booking link. Unresolvable entries are skipped and
// recorded in the returned stats. The document is abandoned when the store is
// unavailable, a referenced row is missing or ctx is done; the stats gathered
// so far are returned with the error.
func (p *Pipeline) Ingest(ctx context.Context, reg domain.Registries, doc *Document, source Source) (*Stats, error) {
	run := &ingestion{
		resolver:     p.resolver,
		reg:          reg,
		logger:       p.logger.With("source", source.Name),
		stats:        &Stats{},
		movies:       make(map[int]struct{}),
		cinemas:      make(map[int]struct{}),
		showtimes:    make(map[int]struct{}),
		bookingLinks: make(map[int]struct{}),
	}

	website := optional(&source.WebsiteURL)
	if website == nil {
		website = optional(&doc.BaseURL)
	}

	provider, err := reg.Providers.Ensure(ctx, source.Name, website)
	if err != nil {
		return run.finish(), fmt.Errorf("ensure provider %q: %w", source.Name, err)
	}

	for i, entry := range doc.Movies {
		path := fmt.Sprintf("movies[%d]", i)
		if err := run.movie(ctx, provider, doc, path, entry); err != nil {
			return run.finish(), err
		}
	}

	return run.finish(), nil
}

type ingestion struct {
	resolver *timeresolver.Resolver
	reg      domain.Registries
	logger   *slog.Logger
	stats    *Stats

	movies       map[int]struct{}
	cinemas      map[int]struct{}
	showtimes    map[int]struct{}
	bookingLinks map[int]struct{}
}

func (r *ingestion) finish() *Stats {
	r.stats.Movies = len(r.movies)
	r.stats.Cinemas = len(r.cinemas)
	r.stats.Showtimes = len(r.showtimes)
	r.stats.BookingLinks = len(r.bookingLinks)
	return r.stats
}

func (r *ingestion) skip(path, reason string) {
	r.stats.Skipped++
	r.stats.Failures = append(r.stats.Failures, Failure{Path: path, Reason: reason})
	r.logger.Debug("skipped listing entry", "path", path, "reason", reason)
}

// check decides whether a registry error ends the document. Errors that do
// not are recorded against path and swallowed.
func (r *ingestion) check(path string, err error) error {
	if isFatal(err) {
		return fmt.Errorf("%s: %w", path, err)
	}

	r.skip(path, err.Error())
	return nil
}

func isFatal(err error) bool {
	return errors.Is(err, domain.ErrStoreUnavailable) ||
		errors.Is(err, domain.ErrMissingReference) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

func (r *ingestion) movie(ctx context.Context, provider *domain.Provider, doc *Document, path string, entry Lenient[MovieEntry]) error {
	if err := entry.Failure(); err != nil {
		r.skip(path, err.Error())
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	title := entry.Value.DisplayTitle()
	raw, err := rawData(entry.Value, doc.BaseURL)
	if err != nil {
		r.skip(path, err.Error())
		return nil
	}

	movie, err := r.reg.Movies.Ensure(ctx,
		domain.MovieKey{ProviderID: provider.ID, ExternalID: ExternalID(title)},
		domain.MovieAttrs{Title: title, Poster: optional(entry.Value.Poster), RawData: raw},
	)
	if err != nil {
		return r.check(path, err)
	}
	r.movies[movie.ID] = struct{}{}

	for i, date := range entry.Value.Dates {
		datePath := fmt.Sprintf("%s.dates[%d]", path, i)
		if err := r.date(ctx, provider, movie, datePath, date); err != nil {
			return err
		}
	}

	return nil
}

func (r *ingestion) date(ctx context.Context, provider *domain.Provider, movie *domain.Movie, path string, entry Lenient[DateEntry]) error {
	if err := entry.Failure(); err != nil {
		r.skip(path, err.Error())
		return nil
	}

	day, ok := r.resolver.NormalizeDate(entry.Value.DateLabel)
	if !ok {
		r.stats.DateFallbacks++
		r.logger.Warn("unrecognized date label, using run date",
			"path", path, "date_label", entry.Value.DateLabel, "run_date", day.Format(time.DateOnly))
	}

	for i, cinema := range entry.Value.Cinemas {
		cinemaPath := fmt.Sprintf("%s.cinemas[%d]", path, i)
		if err := r.cinema(ctx, provider, movie, day, cinemaPath, cinema); err != nil {
			return err
		}
	}

	return nil
}

func (r *ingestion) cinema(ctx context.Context, provider *domain.Provider, movie *domain.Movie, day time.Time, path string, entry Lenient[CinemaEntry]) error {
	if err := entry.Failure(); err != nil {
		r.skip(path, err.Error())
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	name := strings.TrimSpace(entry.Value.CinemaName)
	if name == "" {
		r.skip(path, "cinema has no name")
		return nil
	}

	cinema, err := r.reg.Cinemas.Ensure(ctx,
		domain.CinemaKey{ProviderID: provider.ID, ExternalID: name},
		domain.CinemaAttrs{Name: name},
	)
	if err != nil {
		return r.check(path, err)
	}
	r.cinemas[cinema.ID] = struct{}{}

	for i, session := range entry.Value.Sessions {
		sessionPath := fmt.Sprintf("%s.sessions[%d]", path, i)
		if err := r.session(ctx, cinema, movie, day, sessionPath, session); err != nil {
			return err
		}
	}

	return nil
}

func (r *ingestion) session(ctx context.Context, cinema *domain.Cinema, movie *domain.Movie, day time.Time, path string, entry Lenient[SessionEntry]) error {
	if err := entry.Failure(); err != nil {
		r.skip(path, err.Error())
		return nil
	}

	attrs := domain.ShowtimeAttrs{
		VersionLabel:     optional(entry.Value.VersionLabel),
		HallType:         optional(entry.Value.Hall),
		AudioLanguage:    optional(entry.Value.AudioLanguage),
		SubtitleLanguage: optional(entry.Value.SubtitleLanguage),
	}

	for i, value := range entry.Value.Times {
		timePath := fmt.Sprintf("%s.times[%d]", path, i)
		if err := r.showtime(ctx, cinema, movie, day, attrs, timePath, value); err != nil {
			return err
		}
	}

	return nil
}

func (r *ingestion) showtime(ctx context.Context, cinema *domain.Cinema, movie *domain.Movie, day time.Time, attrs domain.ShowtimeAttrs, path string, value Lenient[TimeValue]) error {
	if err := value.Failure(); err != nil {
		r.skip(path, err.Error())
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	start, ok := r.resolver.Resolve(day, value.Value.Time, value.Value.URL)
	if !ok {
		r.skip(path, fmt.Sprintf("no time derivable from %q", value.Value.Time))
		return nil
	}

	showtime, err := r.reg.Showtimes.Ensure(ctx,
		domain.ShowtimeKey{CinemaID: cinema.ID, MovieID: movie.ID, StartTime: start},
		attrs,
	)
	if err != nil {
		return r.check(path, err)
	}
	r.showtimes[showtime.ID] = struct{}{}

	if value.Value.Kind != URLTime {
		return nil
	}

	link, err := r.reg.BookingLinks.Ensure(ctx, domain.BookingLinkKey{ShowtimeID: showtime.ID, URL: value.Value.URL})
	if err != nil {
		return r.check(path+".url", err)
	}
	r.bookingLinks[link.ID] = struct{}{}

	return nil
}

// optional returns nil for a missing or blank value.
func optional(s *string) *string {
	if s == nil {
		return nil
	}

	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}

	return &trimmed
}
