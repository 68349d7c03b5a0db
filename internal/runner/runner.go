package runner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/metinatakli/showtime-aggregator/internal/domain"
	"github.com/metinatakli/showtime-aggregator/internal/ingest"
	"github.com/metinatakli/showtime-aggregator/internal/timeresolver"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Source is one configured listing document.
type Source struct {
	Name       string
	Path       string
	WebsiteURL string
}

// Invalidator drops cached read responses. It is called after the store is
// reset and again when the run ends.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

type Runner struct {
	store     domain.Store
	sources   []Source
	urlParams []string
	logger    *slog.Logger
	cache     Invalidator
	now       func() time.Time
	readFile  func(name string) ([]byte, error)

	running atomic.Bool

	showtimes metric.Int64Counter
	skipped   metric.Int64Counter
	outcomes  metric.Int64Counter
}

type Option func(*Runner)

func WithCache(cache Invalidator) Option {
	return func(r *Runner) {
		r.cache = cache
	}
}

// WithClock replaces time.Now. The run date used for date fallbacks is taken
// from it.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		r.now = now
	}
}

// WithURLParams sets the booking URL query parameters read for exact
// timestamps.
func WithURLParams(params ...string) Option {
	return func(r *Runner) {
		r.urlParams = params
	}
}

func New(store domain.Store, sources []Source, logger *slog.Logger, opts ...Option) *Runner {
	r := &Runner{
		store:     store,
		sources:   sources,
		urlParams: timeresolver.DefaultURLParams,
		logger:    logger,
		now:       time.Now,
		readFile:  os.ReadFile,
	}

	for _, opt := range opts {
		opt(r)
	}

	meter := otel.Meter("github.com/metinatakli/showtime-aggregator/internal/runner")

	r.showtimes = counter(meter, logger, "aggregator.showtimes.ingested", "Distinct showtimes touched per source")
	r.skipped = counter(meter, logger, "aggregator.entries.skipped", "Listing entries skipped per source")
	r.outcomes = counter(meter, logger, "aggregator.sources", "Source outcomes per run")

	return r
}

// Run clears the canonical store and ingests every source into it. Sources
// that are missing or fail are reported and skipped. The run stops when the
// store becomes unavailable or ctx is done; the partial report is returned
// with the error. A call made while another run is in progress returns
// domain.ErrAlreadyRunning.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	if !r.running.CompareAndSwap(false, true) {
		return nil, domain.ErrAlreadyRunning
	}
	defer r.running.Store(false)

	report := &Report{
		RunID:     uuid.New(),
		StartedAt: r.now(),
	}
	defer func() {
		report.FinishedAt = r.now()
	}()

	logger := r.logger.With("run_id", report.RunID.String())

	err := r.run(ctx, logger, report)
	if err != nil {
		report.Error = err.Error()
		logger.Error("pipeline run aborted", "error", err)
		return report, err
	}

	logger.Info("pipeline run finished",
		"providers", report.Totals.Providers,
		"movies", report.Totals.Movies,
		"showtimes", report.Totals.Showtimes)

	return report, nil
}

func (r *Runner) run(ctx context.Context, logger *slog.Logger, report *Report) error {
	if err := r.store.Reset(ctx); err != nil {
		return fmt.Errorf("failed to reset canonical store: %w", err)
	}

	// Reads served while sources are ingested see a partial store, so the
	// cache is dropped again once the run is over, aborted or not.
	r.invalidate(ctx, logger)
	defer r.invalidate(context.WithoutCancel(ctx), logger)

	session, err := r.store.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire store session: %w", err)
	}
	defer session.Release()

	pipeline := ingest.New(timeresolver.New(report.StartedAt, r.urlParams...), logger)

	for _, src := range r.sources {
		if err := ctx.Err(); err != nil {
			return err
		}

		result, err := r.ingestSource(ctx, pipeline, session.Registries(), src)
		report.Sources = append(report.Sources, result)
		r.record(ctx, result)

		if err != nil {
			return fmt.Errorf("source %q: %w", src.Name, err)
		}

		switch result.Status {
		case StatusIngested:
			logger.Info("source ingested",
				"source", src.Name,
				"showtimes", result.Stats.Showtimes,
				"skipped", result.Stats.Skipped)
		default:
			logger.Warn("source skipped", "source", src.Name, "status", result.Status, "error", result.Error)
		}
	}

	totals, err := session.Counts(ctx)
	if err != nil {
		return fmt.Errorf("failed to count canonical rows: %w", err)
	}
	report.Totals = totals

	return nil
}

func (r *Runner) invalidate(ctx context.Context, logger *slog.Logger) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Invalidate(ctx); err != nil {
		logger.Warn("failed to invalidate response cache", "error", err)
	}
}

// ingestSource returns an error only when the whole run has to stop.
func (r *Runner) ingestSource(ctx context.Context, pipeline *ingest.Pipeline, reg domain.Registries, src Source) (SourceResult, error) {
	result := SourceResult{Name: src.Name, Path: src.Path}

	data, err := r.readFile(src.Path)
	if err != nil {
		result.Status = StatusFailed
		if errors.Is(err, fs.ErrNotExist) {
			result.Status = StatusUnavailable
			err = fmt.Errorf("%w: %w", domain.ErrSourceUnavailable, err)
		}
		result.Error = err.Error()
		return result, nil
	}

	doc, err := ingest.DecodeDocument(data)
	if err != nil {
		result.Status = StatusFailed
		result.Error = err.Error()
		return result, nil
	}

	stats, err := pipeline.Ingest(ctx, reg, doc, ingest.Source{Name: src.Name, WebsiteURL: src.WebsiteURL})
	result.Stats = stats
	if err != nil {
		result.Status = StatusFailed
		result.Error = err.Error()

		if errors.Is(err, domain.ErrStoreUnavailable) ||
			errors.Is(err, context.Canceled) ||
			errors.Is(err, context.DeadlineExceeded) {
			return result, err
		}
		return result, nil
	}

	result.Status = StatusIngested
	return result, nil
}

func counter(meter metric.Meter, logger *slog.Logger, name, description string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(description))
	if err != nil {
		logger.Warn("failed to create counter", "name", name, "error", err)
		return noop.Int64Counter{}
	}
	return c
}

func (r *Runner) record(ctx context.Context, result SourceResult) {
	attrs := metric.WithAttributes(
		attribute.String("source", result.Name),
		attribute.String("status", string(result.Status)),
	)

	r.outcomes.Add(ctx, 1, attrs)

	if result.Stats != nil {
		r.showtimes.Add(ctx, int64(result.Stats.Showtimes), attrs)
		r.skipped.Add(ctx, int64(result.Stats.Skipped), attrs)
	}
}
