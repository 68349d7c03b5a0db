package app

import (
	"errors"
	"net/http"
	"strings"

	"github.com/metinatakli/showtime-aggregator/api"
	"github.com/metinatakli/showtime-aggregator/internal/domain"
)

func (app *application) ListCinemas(w http.ResponseWriter, r *http.Request) {
	cinemas, err := app.cinemaRepo.GetAll(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := make([]api.CinemaResponse, len(cinemas))
	for i, cinema := range cinemas {
		resp[i] = toCinemaResponse(cinema)
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) CreateCinema(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	var input api.CreateCinemaRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	_, err = app.providerRepo.GetById(r.Context(), input.ProviderId)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			logger.Warn("cinema creation for unknown provider", "provider_id", input.ProviderId)
			app.notFoundResponse(w, r, "Provider not found")
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	cinema, err := app.cinemaRepo.Ensure(r.Context(),
		domain.CinemaKey{ProviderID: input.ProviderId, ExternalID: strings.TrimSpace(input.ExternalId)},
		domain.CinemaAttrs{Name: strings.TrimSpace(input.Name), City: input.City, Country: input.Country},
	)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMissingReference):
			app.notFoundResponse(w, r, "Provider not found")
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	err = app.writeJSON(w, http.StatusOK, toCinemaResponse(cinema), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toCinemaResponse(cinema *domain.Cinema) api.CinemaResponse {
	return api.CinemaResponse{
		Id:         cinema.ID,
		ProviderId: cinema.ProviderID,
		ExternalId: cinema.ExternalID,
		Name:       cinema.Name,
		City:       cinema.City,
		Country:    cinema.Country,
	}
}
