package app

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/metinatakli/showtime-aggregator/api"
	"github.com/metinatakli/showtime-aggregator/internal/config"
	"github.com/metinatakli/showtime-aggregator/internal/mocks"
	"github.com/metinatakli/showtime-aggregator/internal/validator"
)

func newTestApplication(opts ...func(*application)) *application {
	app := &application{
		config: &config.Config{
			Env: "dev",
			API: config.APIConfig{
				Port:            3000,
				DefaultPageSize: 20,
				MaxPageSize:     100,
			},
		},
		validator:       validator.NewValidator(),
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		providerRepo:    &mocks.MockProviderRepo{},
		cinemaRepo:      &mocks.MockCinemaRepo{},
		movieRepo:       &mocks.MockMovieRepo{},
		showtimeRepo:    &mocks.MockShowtimeRepo{},
		bookingLinkRepo: &mocks.MockBookingLinkRepo{},
	}

	for _, opt := range opts {
		opt(app)
	}

	return app
}

func executeRequest(t *testing.T, method, url string, body any) (*httptest.ResponseRecorder, *http.Request) {
	var reader io.Reader = http.NoBody

	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(jsonData)
	}

	r := httptest.NewRequest(method, url, reader)
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	return w, r
}

func checkErrorResponse(t *testing.T, w *httptest.ResponseRecorder, wantStatus int, wantErrMessage string) {
	t.Helper()

	if w.Code != wantStatus {
		t.Fatalf("Status = %d, want %d; body: %s", w.Code, wantStatus, w.Body.String())
	}

	if wantStatus >= 200 && wantStatus < 300 {
		return
	}

	switch wantStatus {
	case http.StatusUnprocessableEntity:
		var validationResp api.ValidationErrorResponse
		if err := json.NewDecoder(w.Body).Decode(&validationResp); err != nil {
			t.Fatalf("Failed to decode validation error response: %v", err)
		}

		errorSet := make(map[string]bool)
		for _, vErr := range validationResp.ValidationErrors {
			errorSet[vErr.Field+" "+vErr.Issue] = true
		}

		if !errorSet[wantErrMessage] {
			t.Errorf("Expected validation error '%s' not found in response %+v", wantErrMessage, validationResp.ValidationErrors)
		}

	default:
		var errorResp api.ErrorResponse
		if err := json.NewDecoder(w.Body).Decode(&errorResp); err != nil {
			t.Fatalf("Failed to decode error response: %v", err)
		}

		if wantErrMessage != "" && errorResp.Message != wantErrMessage {
			t.Errorf("Error message = %v, want %v", errorResp.Message, wantErrMessage)
		}
	}
}

func decodeResponse[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var resp T
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	return resp
}

// fakeCache keeps encoded entries in memory like the redis cache does.
type fakeCache struct {
	entries     map[string][]byte
	gets        int
	sets        int
	invalidated int
	err         error
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.gets++
	if c.err != nil {
		return false, c.err
	}

	data, ok := c.entries[key]
	if !ok {
		return false, nil
	}

	return true, json.Unmarshal(data, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, value any) error {
	c.sets++
	if c.err != nil {
		return c.err
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	c.entries[key] = data
	return nil
}

func (c *fakeCache) Invalidate(ctx context.Context) error {
	c.invalidated++
	if c.err != nil {
		return c.err
	}

	clear(c.entries)
	return nil
}

func ptr[T any](v T) *T {
	return &v
}
