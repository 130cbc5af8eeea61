package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/suyogshakya/rentwheels/internal/application"
	"github.com/suyogshakya/rentwheels/internal/application/services"
	"github.com/suyogshakya/rentwheels/internal/interfaces/rest"
)

type statusResponse struct {
	GatewayStatus string           `json:"gatewayStatus"`
	Booking       *bookingResponse `json:"booking,omitempty"`
}

// PaymentStatus answers GET /payments/status with either ?transactionId= or
// ?bookingId=. Exactly one of the two must be present.
func (h *Handlers) PaymentStatus(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	transactionID := q.Get("transactionId")
	bookingID := q.Get("bookingId")

	var (
		result *services.StatusResult
		err    error
	)
	switch {
	case transactionID != "" && bookingID != "":
		rest.WriteError(w, application.NewInvalidInputError("provide transactionId or bookingId, not both"), h.logger)
		return
	case transactionID != "":
		result, err = h.reconcile.CheckByTransaction(r.Context(), transactionID)
	case bookingID != "":
		var id uuid.UUID
		id, err = uuid.Parse(bookingID)
		if err != nil {
			rest.WriteError(w, application.NewInvalidInputError("bookingId must be a UUID"), h.logger)
			return
		}
		result, err = h.reconcile.CheckByBooking(r.Context(), id)
	default:
		rest.WriteError(w, application.NewInvalidInputError("transactionId or bookingId is required"), h.logger)
		return
	}
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	resp := statusResponse{GatewayStatus: result.GatewayStatus}
	if result.Booking != nil {
		resp.Booking = toBookingResponse(result.Booking)
	}
	rest.WriteJSON(w, http.StatusOK, resp)
}
