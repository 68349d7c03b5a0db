package app

import (
	"net/http"
	"strings"

	"github.com/metinatakli/showtime-aggregator/api"
	"github.com/metinatakli/showtime-aggregator/internal/domain"
)

func (app *application) ListProviders(w http.ResponseWriter, r *http.Request) {
	providers, err := app.providerRepo.GetAll(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := make([]api.ProviderResponse, len(providers))
	for i, provider := range providers {
		resp[i] = toProviderResponse(provider)
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// CreateProvider returns the existing provider when the name is taken.
func (app *application) CreateProvider(w http.ResponseWriter, r *http.Request) {
	var input api.CreateProviderRequest

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

	provider, err := app.providerRepo.Ensure(r.Context(), strings.TrimSpace(input.Name), input.WebsiteUrl)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, toProviderResponse(provider), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toProviderResponse(provider *domain.Provider) api.ProviderResponse {
	return api.ProviderResponse{
		Id:         provider.ID,
		Name:       provider.Name,
		WebsiteUrl: provider.WebsiteURL,
	}
}
