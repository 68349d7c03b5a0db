package app

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/metinatakli/showtime-aggregator/api"
	"github.com/metinatakli/showtime-aggregator/internal/domain"
	"github.com/metinatakli/showtime-aggregator/internal/mocks"
)

func TestRoutes(t *testing.T) {
	app := newTestApplication(func(a *application) {
		a.providerRepo = &mocks.MockProviderRepo{
			GetAllFunc: func(ctx context.Context) ([]*domain.Provider, error) {
				return []*domain.Provider{{ID: 1, Name: "Acme"}}, nil
			},
		}
	})

	router := app.routes()

	tests := []struct {
		name           string
		method         string
		path           string
		wantStatus     int
		wantErrMessage string
	}{
		{
			name:       "healthcheck",
			method:     http.MethodGet,
			path:       "/healthcheck",
			wantStatus: http.StatusOK,
		},
		{
			name:       "list providers",
			method:     http.MethodGet,
			path:       "/providers",
			wantStatus: http.StatusOK,
		},
		{
			name:           "unknown route",
			method:         http.MethodGet,
			path:           "/halls",
			wantStatus:     http.StatusNotFound,
			wantErrMessage: "The requested resource not found",
		},
		{
			name:           "unsupported method",
			method:         http.MethodDelete,
			path:           "/booking-links",
			wantStatus:     http.StatusMethodNotAllowed,
			wantErrMessage: "The requested method is not supported for this resource",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, r := executeRequest(t, tt.method, tt.path, nil)
			router.ServeHTTP(w, r)

			checkErrorResponse(t, w, tt.wantStatus, tt.wantErrMessage)
		})
	}
}

func TestHealthcheckRoute(t *testing.T) {
	app := newTestApplication()

	w, r := executeRequest(t, http.MethodGet, "/healthcheck", nil)
	app.routes().ServeHTTP(w, r)

	checkErrorResponse(t, w, http.StatusOK, "")

	want := api.HealthcheckResponse{
		Status:     "UP",
		SystemInfo: api.SystemInfo{Version: version, Environment: "dev"},
	}
	got := decodeResponse[api.HealthcheckResponse](t, w)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Response mismatch (-want +got):\n%s", diff)
	}
}
