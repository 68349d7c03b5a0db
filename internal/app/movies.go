package app

import (
	"errors"
	"net/http"
	"strings"

	"github.com/metinatakli/showtime-aggregator/api"
	"github.com/metinatakli/showtime-aggregator/internal/domain"
)

func (app *application) CreateMovie(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	var input api.CreateMovieRequest

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
			logger.Warn("movie creation for unknown provider", "provider_id", input.ProviderId)
			app.notFoundResponse(w, r, "Provider not found")
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	movie, err := app.movieRepo.Ensure(r.Context(),
		domain.MovieKey{ProviderID: input.ProviderId, ExternalID: strings.TrimSpace(input.ExternalId)},
		domain.MovieAttrs{Title: strings.TrimSpace(input.Title), CoreMovieID: input.CoreMovieId},
	)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrCoreMovieConflict):
			logger.Warn("core movie id already taken", "provider_id", input.ProviderId, "core_movie_id", *input.CoreMovieId)
			app.conflictResponse(w, r, err)
		case errors.Is(err, domain.ErrMissingReference):
			app.notFoundResponse(w, r, "Provider not found")
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	err = app.writeJSON(w, http.StatusOK, toMovieResponse(movie), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// GetMovie looks a movie up by movie_id, or failing that by a case
// insensitive match on movie_title.
func (app *application) GetMovie(w http.ResponseWriter, r *http.Request) {
	movieID, err := readIntParam(r, "movie_id")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	params := api.GetMovieParams{
		MovieId:    movieID,
		MovieTitle: readStringParam(r, "movie_title"),
	}

	err = app.validator.Struct(params)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	var movie *domain.Movie

	switch {
	case params.MovieId != nil:
		movie, err = app.movieRepo.GetById(r.Context(), *params.MovieId)
	case params.MovieTitle != nil:
		movie, err = app.movieRepo.FindByTitle(r.Context(), *params.MovieTitle)
	default:
		app.badRequestResponse(w, r, errors.New("You must provide either movie_id or movie_title"))
		return
	}

	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r, "Movie not found")
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	err = app.writeJSON(w, http.StatusOK, toMovieResponse(movie), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toMovieResponse(movie *domain.Movie) api.MovieResponse {
	return api.MovieResponse{
		Id:          movie.ID,
		ProviderId:  movie.ProviderID,
		ExternalId:  movie.ExternalID,
		CoreMovieId: movie.CoreMovieID,
		Title:       movie.Title,
		Poster:      movie.Poster,
	}
}
