package handlers

import (
	"net/http"
	"time"

	"github.com/suyogshakya/rentwheels/internal/application"
	"github.com/suyogshakya/rentwheels/internal/interfaces/rest"
)

type availabilityResponse struct {
	Available    bool            `json:"available"`
	BookedRanges []rest.APIRange `json:"bookedRanges"`
}

// CheckAvailability answers GET /bookings/check-availability.
func (h *Handlers) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	resourceID := q.Get("resourceId")
	if resourceID == "" {
		rest.WriteError(w, application.NewInvalidInputError("resourceId is required"), h.logger)
		return
	}

	startDate, err := parseDate(q.Get("startDate"))
	if err != nil {
		rest.WriteError(w, application.NewInvalidInputError("startDate must be yyyy-mm-dd"), h.logger)
		return
	}
	endDate, err := parseDate(q.Get("endDate"))
	if err != nil {
		rest.WriteError(w, application.NewInvalidInputError("endDate must be yyyy-mm-dd"), h.logger)
		return
	}

	result, err := h.availability.Check(r.Context(), resourceID, startDate, endDate)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusOK, availabilityResponse{
		Available:    result.Available,
		BookedRanges: rest.RangesToAPI(result.BookedRanges),
	})
}

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}
