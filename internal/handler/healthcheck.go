package handler

import (
	"net/http"

	"github.com/metinatakli/showtime-aggregator/api"
	"github.com/metinatakli/showtime-aggregator/internal/jsonutil"
)

type HealthcheckHandler struct {
	env     string
	version string
}

func NewHealthcheckHandler(env, version string) *HealthcheckHandler {
	return &HealthcheckHandler{
		env:     env,
		version: version,
	}
}

func (h *HealthcheckHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	resp := api.HealthcheckResponse{
		Status: "UP",
		SystemInfo: api.SystemInfo{
			Version:     h.version,
			Environment: h.env,
		},
	}

	jsonutil.WriteJSON(w, http.StatusOK, resp, nil)
}
