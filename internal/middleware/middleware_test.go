package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/metinatakli/showtime-aggregator/api"
)

func TestRecoverPanic(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(RecoverPanic(logger))
	r.Get("/boom", func(w http.ResponseWriter, r *http.Request) {
		panic("kaboom")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
	if got := w.Header().Get("Connection"); got != "close" {
		t.Errorf("Connection header = %q, want close", got)
	}

	var resp api.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.RequestId == "" {
		t.Error("response carries no request id")
	}
	if !strings.Contains(logs.String(), "kaboom") {
		t.Errorf("panic value not logged: %q", logs.String())
	}
}

func TestRequestLogger(t *testing.T) {
	var logs bytes.Buffer
	base := slog.New(slog.NewTextHandler(&logs, nil))

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(RequestLogger(base))
	r.Get("/showtimes", func(w http.ResponseWriter, r *http.Request) {
		LoggerFrom(r.Context(), nil).Info("handled")
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/showtimes", nil))

	out := logs.String()
	for _, want := range []string{"msg=handled", "request_id=", "path=/showtimes"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q missing %q", out, want)
		}
	}
}

func TestLoggerFrom_Fallback(t *testing.T) {
	fallback := slog.New(slog.NewTextHandler(io.Discard, nil))

	if got := LoggerFrom(httptest.NewRequest(http.MethodGet, "/", nil).Context(), fallback); got != fallback {
		t.Error("LoggerFrom() did not return the fallback logger")
	}
}
