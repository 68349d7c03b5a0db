package app

import (
	"net/http"

	"github.com/metinatakli/showtime-aggregator/api"
	"github.com/metinatakli/showtime-aggregator/internal/domain"
)

func (app *application) ListBookingLinks(w http.ResponseWriter, r *http.Request) {
	links, err := app.bookingLinkRepo.GetAll(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := make([]api.BookingLinkResponse, len(links))
	for i, link := range links {
		resp[i] = toBookingLinkResponse(*link)
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toBookingLinkResponse(link domain.BookingLink) api.BookingLinkResponse {
	return api.BookingLinkResponse{
		Id:         link.ID,
		ShowtimeId: link.ShowtimeID,
		Url:        link.URL,
	}
}
