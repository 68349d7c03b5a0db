package runner

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/metinatakli/showtime-aggregator/internal/domain"
	"github.com/metinatakli/showtime-aggregator/internal/ingest"
)

type SourceStatus string

const (
	StatusIngested    SourceStatus = "ingested"
	StatusUnavailable SourceStatus = "unavailable"
	StatusFailed      SourceStatus = "failed"
)

type SourceResult struct {
	Name   string        `json:"name"`
	Path   string        `json:"path"`
	Status SourceStatus  `json:"status"`
	Stats  *ingest.Stats `json:"stats,omitempty"`
	Error  string        `json:"error,omitempty"`
}

// Report describes one full reseed. Totals are counted in the store after the
// last source, so they reflect what the read side sees.
type Report struct {
	RunID      uuid.UUID      `json:"runId"`
	StartedAt  time.Time      `json:"startedAt"`
	FinishedAt time.Time      `json:"finishedAt"`
	Sources    []SourceResult `json:"sources"`
	Totals     domain.Counts  `json:"totals"`
	Error      string         `json:"error,omitempty"`
}

func (r *Report) Succeeded() bool {
	return r.Error == ""
}

// Result returns the outcome recorded for the named source.
func (r *Report) Result(name string) (SourceResult, bool) {
	for _, s := range r.Sources {
		if s.Name == name {
			return s, true
		}
	}
	return SourceResult{}, false
}

func (r *Report) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "run %s finished in %s\n", r.RunID, r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond))

	for _, s := range r.Sources {
		fmt.Fprintf(&b, "  %-24s %-12s", s.Name, s.Status)
		if s.Stats != nil {
			fmt.Fprintf(&b, " movies=%d cinemas=%d showtimes=%d booking_links=%d skipped=%d date_fallbacks=%d",
				s.Stats.Movies, s.Stats.Cinemas, s.Stats.Showtimes, s.Stats.BookingLinks, s.Stats.Skipped, s.Stats.DateFallbacks)
		}
		if s.Error != "" {
			fmt.Fprintf(&b, " error=%q", s.Error)
		}
		b.WriteByte('\n')
	}

	fmt.Fprintf(&b, "totals: providers=%d cinemas=%d movies=%d showtimes=%d booking_links=%d",
		r.Totals.Providers, r.Totals.Cinemas, r.Totals.Movies, r.Totals.Showtimes, r.Totals.BookingLinks)

	if r.Error != "" {
		fmt.Fprintf(&b, "\naborted: %s", r.Error)
	}

	return b.String()
}
