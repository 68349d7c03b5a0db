package runner

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/metinatakli/showtime-aggregator/internal/domain"
	"github.com/metinatakli/showtime-aggregator/internal/mocks"
)

const acmeDocument = `{
	"movies": [{
		"movie_title": "X",
		"dates": [{
			"date_label": "2025-12-11",
			"cinemas": [{
				"cinema_name": "Acme Mall",
				"sessions": [{"times": ["19:30", "21:00"]}]
			}]
		}]
	}]
}`

const legendDocument = `{
	"base_url": "https://legend.com.kh",
	"movies": [{
		"movie_title": "Y",
		"dates": [{
			"date_label": "Fri, 12 of Dec",
			"cinemas": [{
				"cinema_name": "Legend Exchange Square",
				"sessions": [{"times": [{"time": "8:30 PM", "url": "https://legend.com.kh/b?ShowDate=12-Dec-2025%208:30:00%20PM"}]}]
			}]
		}]
	}]
}`

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func fixedClock() func() time.Time {
	return func() time.Time {
		return time.Date(2025, time.December, 11, 8, 0, 0, 0, time.UTC)
	}
}

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

type fakeCache struct {
	calls int
	err   error

	// onInvalidate, when set, runs on every call.
	onInvalidate func()
}

func (c *fakeCache) Invalidate(ctx context.Context) error {
	c.calls++
	if c.onInvalidate != nil {
		c.onInvalidate()
	}
	return c.err
}

func TestRun_SourceOutcomes(t *testing.T) {
	dir := t.TempDir()
	sources := []Source{
		{Name: "Acme", Path: writeSource(t, dir, "acme.json", acmeDocument)},
		{Name: "Missing", Path: filepath.Join(dir, "missing.json")},
		{Name: "Broken", Path: writeSource(t, dir, "broken.json", `["not", "a", "listing"]`)},
		{Name: "Legend Cinema", Path: writeSource(t, dir, "legend.json", legendDocument)},
	}

	store := mocks.NewMemStore()
	cache := &fakeCache{}
	r := New(store, sources, discardLogger, WithCache(cache), WithClock(fixedClock()))

	report, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}

	var statuses []SourceStatus
	for _, s := range report.Sources {
		statuses = append(statuses, s.Status)
	}
	wantStatuses := []SourceStatus{StatusIngested, StatusUnavailable, StatusFailed, StatusIngested}
	if diff := cmp.Diff(wantStatuses, statuses); diff != "" {
		t.Errorf("source statuses mismatch (-want +got):\n%s", diff)
	}

	missing, _ := report.Result("Missing")
	if !strings.Contains(missing.Error, domain.ErrSourceUnavailable.Error()) {
		t.Errorf("missing source error = %q", missing.Error)
	}
	broken, _ := report.Result("Broken")
	if !strings.Contains(broken.Error, domain.ErrMalformedDocument.Error()) {
		t.Errorf("broken source error = %q", broken.Error)
	}

	wantTotals := domain.Counts{Providers: 2, Cinemas: 2, Movies: 2, Showtimes: 3, BookingLinks: 1}
	if diff := cmp.Diff(wantTotals, report.Totals); diff != "" {
		t.Errorf("totals mismatch (-want +got):\n%s", diff)
	}

	if store.Resets != 1 || store.Acquired != 1 || store.Released != 1 {
		t.Errorf("store lifecycle resets=%d acquired=%d released=%d, want 1/1/1", store.Resets, store.Acquired, store.Released)
	}
	if cache.calls != 2 {
		t.Errorf("cache invalidated %d times, want 2", cache.calls)
	}
	if !report.Succeeded() {
		t.Errorf("report marked as failed: %s", report.Error)
	}

	summary := report.String()
	for _, want := range []string{"Acme", "unavailable", "Broken", "totals: providers=2"} {
		if !strings.Contains(summary, want) {
			t.Errorf("String() = %q, missing %q", summary, want)
		}
	}
}

func TestRun_DoubleReseedIsStable(t *testing.T) {
	dir := t.TempDir()
	sources := []Source{
		{Name: "Acme", Path: writeSource(t, dir, "acme.json", acmeDocument)},
		{Name: "Legend Cinema", Path: writeSource(t, dir, "legend.json", legendDocument)},
	}

	store := mocks.NewMemStore()
	r := New(store, sources, discardLogger, WithClock(fixedClock()))

	first, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("first Run() unexpected error: %v", err)
	}
	second, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run() unexpected error: %v", err)
	}

	if diff := cmp.Diff(first.Totals, second.Totals); diff != "" {
		t.Errorf("totals differ between runs (-first +second):\n%s", diff)
	}
	if first.RunID == second.RunID {
		t.Error("runs share a run id")
	}
	if store.Resets != 2 {
		t.Errorf("store reset %d times, want 2", store.Resets)
	}
}

func TestRun_StoreFailures(t *testing.T) {
	tests := []struct {
		name       string
		resetErr   error
		acquireErr error
		wantErr    error
	}{
		{
			name:     "reset fails",
			resetErr: domain.ErrStoreUnavailable,
			wantErr:  domain.ErrStoreUnavailable,
		},
		{
			name:       "acquire fails",
			acquireErr: domain.ErrStoreUnavailable,
			wantErr:    domain.ErrStoreUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := mocks.NewMemStore()
			store.ResetErr = tt.resetErr
			store.AcquireErr = tt.acquireErr

			r := New(store, []Source{{Name: "Acme", Path: "acme.json"}}, discardLogger)

			report, err := r.Run(context.Background())
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Run() error = %v, want %v", err, tt.wantErr)
			}
			if report == nil || report.Succeeded() {
				t.Fatalf("Run() report = %+v, want a failed report", report)
			}
			if len(report.Sources) != 0 {
				t.Errorf("sources attempted after store failure: %+v", report.Sources)
			}
		})
	}
}

// unavailableStore hands out sessions whose showtime registry has lost its
// connection.
type unavailableStore struct {
	*mocks.MemStore
}

func (s *unavailableStore) Acquire(ctx context.Context) (domain.Session, error) {
	session, err := s.MemStore.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return &unavailableSession{Session: session}, nil
}

type unavailableSession struct {
	domain.Session
}

func (s *unavailableSession) Registries() domain.Registries {
	reg := s.Session.Registries()
	reg.Showtimes = &mocks.MockShowtimeRepo{
		EnsureFunc: func(ctx context.Context, key domain.ShowtimeKey, attrs domain.ShowtimeAttrs) (*domain.Showtime, error) {
			return nil, domain.ErrStoreUnavailable
		},
	}
	return reg
}

func TestRun_StoreLostMidRun(t *testing.T) {
	dir := t.TempDir()
	sources := []Source{
		{Name: "Acme", Path: writeSource(t, dir, "acme.json", acmeDocument)},
		{Name: "Legend Cinema", Path: writeSource(t, dir, "legend.json", legendDocument)},
	}

	mem := mocks.NewMemStore()
	var releasedAtInvalidate []int
	cache := &fakeCache{onInvalidate: func() {
		releasedAtInvalidate = append(releasedAtInvalidate, mem.Released)
	}}
	r := New(&unavailableStore{MemStore: mem}, sources, discardLogger, WithClock(fixedClock()), WithCache(cache))

	report, err := r.Run(context.Background())
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("Run() error = %v, want %v", err, domain.ErrStoreUnavailable)
	}

	if len(report.Sources) != 1 || report.Sources[0].Status != StatusFailed {
		t.Errorf("sources = %+v, want only Acme, failed", report.Sources)
	}
	if mem.Released != 1 {
		t.Errorf("session released %d times, want 1", mem.Released)
	}
	if diff := cmp.Diff([]int{0, 1}, releasedAtInvalidate); diff != "" {
		t.Errorf("released sessions seen at each invalidation mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_CacheInvalidatedAfterIngestion(t *testing.T) {
	dir := t.TempDir()
	store := mocks.NewMemStore()

	var showtimesAtInvalidate []int
	cache := &fakeCache{onInvalidate: func() {
		showtimesAtInvalidate = append(showtimesAtInvalidate, len(store.Showtimes()))
	}}

	sources := []Source{
		{Name: "Acme", Path: writeSource(t, dir, "acme.json", acmeDocument)},
		{Name: "Legend Cinema", Path: writeSource(t, dir, "legend.json", legendDocument)},
	}
	r := New(store, sources, discardLogger, WithClock(fixedClock()), WithCache(cache))

	report, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}

	want := []int{0, report.Totals.Showtimes}
	if diff := cmp.Diff(want, showtimesAtInvalidate); diff != "" {
		t.Errorf("showtimes seen at each invalidation mismatch (-want +got):\n%s", diff)
	}
	if report.Totals.Showtimes != 3 {
		t.Errorf("totals.Showtimes = %d, want 3", report.Totals.Showtimes)
	}
}

func TestRun_CacheFailureIsNotFatal(t *testing.T) {
	dir := t.TempDir()
	cache := &fakeCache{err: errors.New("redis: connection refused")}

	r := New(mocks.NewMemStore(), []Source{{Name: "Acme", Path: writeSource(t, dir, "acme.json", acmeDocument)}}, discardLogger, WithCache(cache))

	report, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}
	if report.Totals.Showtimes != 2 {
		t.Errorf("totals.Showtimes = %d, want 2", report.Totals.Showtimes)
	}
}

// blockingStore parks Reset until released so a run can be held in progress.
type blockingStore struct {
	*mocks.MemStore
	entered chan struct{}
	release chan struct{}
}

func (s *blockingStore) Reset(ctx context.Context) error {
	close(s.entered)
	<-s.release
	return s.MemStore.Reset(ctx)
}

func TestRun_NotReentrant(t *testing.T) {
	store := &blockingStore{
		MemStore: mocks.NewMemStore(),
		entered:  make(chan struct{}),
		release:  make(chan struct{}),
	}
	r := New(store, nil, discardLogger)

	var (
		wg       sync.WaitGroup
		firstErr error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, firstErr = r.Run(context.Background())
	}()

	<-store.entered

	report, err := r.Run(context.Background())
	if !errors.Is(err, domain.ErrAlreadyRunning) {
		t.Errorf("concurrent Run() error = %v, want %v", err, domain.ErrAlreadyRunning)
	}
	if report != nil {
		t.Errorf("concurrent Run() report = %+v, want nil", report)
	}

	close(store.release)
	wg.Wait()

	if firstErr != nil {
		t.Fatalf("first Run() unexpected error: %v", firstErr)
	}

	store.entered = make(chan struct{})
	store.release = make(chan struct{})
	close(store.release)

	if _, err := r.Run(context.Background()); err != nil {
		t.Errorf("Run() after completion error = %v, want nil", err)
	}
}
