package app

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/metinatakli/showtime-aggregator/api"
	"github.com/metinatakli/showtime-aggregator/internal/domain"
)

func (app *application) ListShowtimes(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	params, err := app.readShowtimesParams(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(params)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	filters := domain.ShowtimeFilters{
		Pagination: domain.Pagination{
			Page:     1,
			PageSize: app.config.API.DefaultPageSize,
		},
		MovieID:    params.MovieId,
		MovieTitle: params.MovieTitle,
	}

	if params.Page != nil {
		filters.Page = *params.Page
	}
	if params.PageSize != nil {
		filters.PageSize = *params.PageSize
	}

	if filters.PageSize > app.config.API.MaxPageSize {
		app.badRequestResponse(w, r, fmt.Errorf("page_size must not exceed %d", app.config.API.MaxPageSize))
		return
	}

	key := showtimesCacheKey(filters)

	if app.cache != nil {
		var cached api.ShowtimeListResponse

		found, err := app.cache.Get(r.Context(), key, &cached)
		if err != nil {
			logger.Warn("failed to read showtimes from cache", "key", key, "error", err)
		} else if found {
			err = app.writeJSON(w, http.StatusOK, cached, nil)
			if err != nil {
				app.serverErrorResponse(w, r, err)
			}

			return
		}
	}

	showtimes, metadata, err := app.showtimeRepo.Search(r.Context(), filters)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.ShowtimeListResponse{
		Showtimes: make([]api.ShowtimeResponse, len(showtimes)),
		Metadata:  toApiMetadata(metadata),
	}

	for i, details := range showtimes {
		resp.Showtimes[i] = toShowtimeDetailsResponse(details)
	}

	if app.cache != nil {
		err = app.cache.Set(r.Context(), key, resp)
		if err != nil {
			logger.Warn("failed to cache showtimes", "key", key, "error", err)
		}
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) CreateShowtime(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	var input api.CreateShowtimeRequest

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

	_, err = app.cinemaRepo.GetById(r.Context(), input.CinemaId)
	if err == nil {
		_, err = app.movieRepo.GetById(r.Context(), input.MovieId)
	}
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			logger.Warn("showtime creation for unknown cinema or movie",
				"cinema_id", input.CinemaId, "movie_id", input.MovieId)
			app.notFoundResponse(w, r, "Cinema or movie not found")
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	showtime, err := app.showtimeRepo.Ensure(r.Context(),
		domain.ShowtimeKey{CinemaID: input.CinemaId, MovieID: input.MovieId, StartTime: input.StartTime.Time},
		domain.ShowtimeAttrs{
			VersionLabel:     input.VersionLabel,
			HallType:         input.HallType,
			AudioLanguage:    input.AudioLanguage,
			SubtitleLanguage: input.SubtitleLanguage,
		},
	)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMissingReference):
			app.notFoundResponse(w, r, "Cinema or movie not found")
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	if app.cache != nil {
		err = app.cache.Invalidate(r.Context())
		if err != nil {
			logger.Warn("failed to invalidate showtimes cache", "error", err)
		}
	}

	err = app.writeJSON(w, http.StatusOK, toShowtimeResponse(*showtime), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) readShowtimesParams(r *http.Request) (api.GetShowtimesParams, error) {
	var params api.GetShowtimesParams
	var err error

	params.MovieId, err = readIntParam(r, "movie_id")
	if err != nil {
		return params, err
	}

	params.Page, err = readIntParam(r, "page")
	if err != nil {
		return params, err
	}

	params.PageSize, err = readIntParam(r, "page_size")
	if err != nil {
		return params, err
	}

	if title := readStringParam(r, "movie_title"); title != nil {
		params.MovieTitle = *title
	}

	return params, nil
}

// showtimesCacheKey ignores title case since the title filter is case
// insensitive.
func showtimesCacheKey(filters domain.ShowtimeFilters) string {
	movieID := "any"
	if filters.MovieID != nil {
		movieID = fmt.Sprint(*filters.MovieID)
	}

	return fmt.Sprintf("showtimes:movie=%s:title=%s:page=%d:size=%d",
		movieID, strings.ToLower(filters.MovieTitle), filters.Page, filters.PageSize)
}

func toShowtimeResponse(showtime domain.Showtime) api.ShowtimeResponse {
	return api.ShowtimeResponse{
		Id:               showtime.ID,
		CinemaId:         showtime.CinemaID,
		MovieId:          showtime.MovieID,
		StartTime:        api.NewLocalTime(showtime.StartTime),
		VersionLabel:     showtime.VersionLabel,
		HallType:         showtime.HallType,
		AudioLanguage:    showtime.AudioLanguage,
		SubtitleLanguage: showtime.SubtitleLanguage,
		BookingLinks:     []api.BookingLinkResponse{},
	}
}

func toShowtimeDetailsResponse(details *domain.ShowtimeDetails) api.ShowtimeResponse {
	resp := toShowtimeResponse(details.Showtime)

	resp.Cinema = &api.CinemaSummary{
		Id:   details.Cinema.ID,
		Name: details.Cinema.Name,
		Provider: api.ProviderSummary{
			Id:   details.Cinema.Provider.ID,
			Name: details.Cinema.Provider.Name,
		},
	}

	resp.BookingLinks = make([]api.BookingLinkResponse, len(details.BookingLinks))
	for i, link := range details.BookingLinks {
		resp.BookingLinks[i] = toBookingLinkResponse(link)
	}

	return resp
}

func toApiMetadata(metadata *domain.Metadata) *api.Metadata {
	if metadata == nil {
		return nil
	}

	return &api.Metadata{
		CurrentPage:  metadata.CurrentPage,
		FirstPage:    metadata.FirstPage,
		LastPage:     metadata.LastPage,
		PageSize:     metadata.PageSize,
		TotalRecords: metadata.TotalRecords,
	}
}
