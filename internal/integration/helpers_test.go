package integration_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/metinatakli/showtime-aggregator/internal/domain"
	"github.com/stretchr/testify/require"
)

var keysToIgnore = map[string]struct{}{
	"timestamp": {},
	"requestId": {},
}

func prepareRequest(method, path string, body io.Reader, headers map[string]string) (*http.Request, error) {
	req := httptest.NewRequest(method, path, body)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req, nil
}

func compareResponse(t *testing.T, body io.Reader, expectedResponse string) {
	var actual any
	require.NoError(t, json.NewDecoder(body).Decode(&actual))

	cleanValue(actual)

	var expected any
	require.NoError(t, json.Unmarshal([]byte(expectedResponse), &expected))

	opts := cmpopts.IgnoreMapEntries(func(k string, _ any) bool {
		_, ok := keysToIgnore[k]
		return ok
	})

	if diff := cmp.Diff(expected, actual, opts); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
}

func cleanValue(v any) {
	switch v := v.(type) {
	case map[string]any:
		for k, nested := range v {
			if _, ok := keysToIgnore[k]; ok {
				delete(v, k)
				continue
			}
			cleanValue(nested)
		}
	case []any:
		for _, nested := range v {
			cleanValue(nested)
		}
	}
}

// writeSource stores a listing document where a runner source can read it.
func writeSource(t testing.TB, name, document string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name+".json")
	require.NoError(t, os.WriteFile(path, []byte(document), 0o600))

	return path
}

type seeded struct {
	provider *domain.Provider
	cinema   *domain.Cinema
	movie    *domain.Movie
}

func seedProviderCinemaMovie(t testing.TB, reg domain.Registries) seeded {
	t.Helper()

	ctx := context.Background()

	provider, err := reg.Providers.Ensure(ctx, "Acme", nil)
	require.NoError(t, err)

	cinema, err := reg.Cinemas.Ensure(ctx,
		domain.CinemaKey{ProviderID: provider.ID, ExternalID: "Acme Mall"},
		domain.CinemaAttrs{Name: "Acme Mall"})
	require.NoError(t, err)

	movie, err := reg.Movies.Ensure(ctx,
		domain.MovieKey{ProviderID: provider.ID, ExternalID: "Dune"},
		domain.MovieAttrs{Title: "Dune"})
	require.NoError(t, err)

	return seeded{provider: provider, cinema: cinema, movie: movie}
}

func ptr[T any](v T) *T {
	return &v
}
