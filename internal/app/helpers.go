package app

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/metinatakli/showtime-aggregator/internal/jsonutil"
	appmiddleware "github.com/metinatakli/showtime-aggregator/internal/middleware"
)

func (app *application) writeJSON(w http.ResponseWriter, status int, data any, headers http.Header) error {
	return jsonutil.WriteJSON(w, status, data, headers)
}

func (app *application) readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	return jsonutil.ReadJSON(w, r, dst)
}

func (app *application) contextGetLogger(r *http.Request) *slog.Logger {
	return appmiddleware.LoggerFrom(r.Context(), app.logger)
}

// readIntParam returns nil when the query parameter is absent.
func readIntParam(r *http.Request, key string) (*int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be an integer", key)
	}

	return &value, nil
}

// readStringParam returns nil when the query parameter is absent or blank.
func readStringParam(r *http.Request, key string) *string {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil
	}

	return &raw
}
