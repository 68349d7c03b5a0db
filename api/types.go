// Package api holds the request and response bodies of the HTTP API.
package api

import "time"

type ErrorResponse struct {
	Message   string    `json:"message"`
	RequestId string    `json:"requestId"`
	Timestamp time.Time `json:"timestamp"`
}

type ValidationError struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

type ValidationErrorResponse struct {
	ErrorResponse
	ValidationErrors []ValidationError `json:"validationErrors"`
}

type SystemInfo struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

type HealthcheckResponse struct {
	Status     string     `json:"status"`
	SystemInfo SystemInfo `json:"systemInfo"`
}

type Metadata struct {
	CurrentPage  int `json:"currentPage"`
	FirstPage    int `json:"firstPage"`
	LastPage     int `json:"lastPage"`
	PageSize     int `json:"pageSize"`
	TotalRecords int `json:"totalRecords"`
}

type CreateProviderRequest struct {
	Name       string  `json:"name" validate:"required,notblank,max=255"`
	WebsiteUrl *string `json:"website_url" validate:"omitempty,url"`
}

type ProviderResponse struct {
	Id         int     `json:"id"`
	Name       string  `json:"name"`
	WebsiteUrl *string `json:"website_url"`
}

type CreateCinemaRequest struct {
	ProviderId int     `json:"provider_id" validate:"gt=0"`
	ExternalId string  `json:"external_id" validate:"required,notblank,max=255"`
	Name       string  `json:"name" validate:"required,notblank,max=255"`
	City       *string `json:"city" validate:"omitempty,max=255"`
	Country    *string `json:"country" validate:"omitempty,max=255"`
}

type CinemaResponse struct {
	Id         int     `json:"id"`
	ProviderId int     `json:"provider_id"`
	ExternalId string  `json:"external_id"`
	Name       string  `json:"name"`
	City       *string `json:"city"`
	Country    *string `json:"country"`
}

type CreateMovieRequest struct {
	ProviderId  int    `json:"provider_id" validate:"gt=0"`
	ExternalId  string `json:"external_id" validate:"required,notblank,max=255"`
	Title       string `json:"title" validate:"required,notblank,max=255"`
	CoreMovieId *int   `json:"core_movie_id" validate:"omitempty,gt=0"`
}

type MovieResponse struct {
	Id          int     `json:"id"`
	ProviderId  int     `json:"provider_id"`
	ExternalId  string  `json:"external_id"`
	CoreMovieId *int    `json:"core_movie_id"`
	Title       string  `json:"title"`
	Poster      *string `json:"poster"`
}

type GetMovieParams struct {
	MovieId    *int    `validate:"omitempty,gt=0"`
	MovieTitle *string `validate:"omitempty,min=1"`
}

// CreateShowtimeRequest carries the start time as venue wall time; any zone
// offset in the payload is ignored.
type CreateShowtimeRequest struct {
	CinemaId         int       `json:"cinema_id" validate:"gt=0"`
	MovieId          int       `json:"movie_id" validate:"gt=0"`
	StartTime        LocalTime `json:"start_time" validate:"required"`
	VersionLabel     *string   `json:"version_label"`
	HallType         *string   `json:"hall_type"`
	AudioLanguage    *string   `json:"audio_language"`
	SubtitleLanguage *string   `json:"subtitle_language"`
}

type GetShowtimesParams struct {
	MovieId    *int   `validate:"omitempty,gt=0"`
	MovieTitle string `validate:"max=255"`
	Page       *int   `validate:"omitempty,min=1,max=10000"`
	PageSize   *int   `validate:"omitempty,min=1"`
}

type ProviderSummary struct {
	Id   int    `json:"id"`
	Name string `json:"name"`
}

type CinemaSummary struct {
	Id       int             `json:"id"`
	Name     string          `json:"name"`
	Provider ProviderSummary `json:"provider"`
}

type BookingLinkResponse struct {
	Id         int    `json:"id"`
	ShowtimeId int    `json:"showtime_id"`
	Url        string `json:"url"`
}

type ShowtimeResponse struct {
	Id               int                   `json:"id"`
	CinemaId         int                   `json:"cinema_id"`
	MovieId          int                   `json:"movie_id"`
	StartTime        LocalTime             `json:"start_time"`
	VersionLabel     *string               `json:"version_label"`
	HallType         *string               `json:"hall_type"`
	AudioLanguage    *string               `json:"audio_language"`
	SubtitleLanguage *string               `json:"subtitle_language"`
	Cinema           *CinemaSummary        `json:"cinema,omitempty"`
	BookingLinks     []BookingLinkResponse `json:"booking_links"`
}

type ShowtimeListResponse struct {
	Showtimes []ShowtimeResponse `json:"showtimes"`
	Metadata  *Metadata          `json:"metadata"`
}
