package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"github.com/metinatakli/showtime-aggregator/api"
)

func TestGetHealth(t *testing.T) {
	h := NewHealthcheckHandler("staging", "abc123")

	w := httptest.NewRecorder()
	h.GetHealth(w, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var got api.HealthcheckResponse
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	want := api.HealthcheckResponse{
		Status:     "UP",
		SystemInfo: api.SystemInfo{Version: "abc123", Environment: "staging"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
}
