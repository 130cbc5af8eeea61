package handlers

import (
	"net/http"
	"strconv"

	"github.com/suyogshakya/rentwheels/internal/application"
	"github.com/suyogshakya/rentwheels/internal/domain"
	"github.com/suyogshakya/rentwheels/internal/interfaces/rest"
)

type bookingResponse struct {
	ID            string  `json:"id"`
	RequesterID   string  `json:"requesterId"`
	ResourceID    string  `json:"resourceId"`
	StartDate     string  `json:"startDate"`
	EndDate       string  `json:"endDate"`
	TotalDays     int     `json:"totalDays"`
	UnitPrice     float64 `json:"unitPrice"`
	TotalAmount   float64 `json:"totalAmount"`
	PaymentStatus string  `json:"paymentStatus"`
	BookingStatus string  `json:"bookingStatus"`
	TransactionID string  `json:"transactionId"`
	GatewayRefID  *string `json:"gatewayRefId,omitempty"`
	Notes         string  `json:"notes,omitempty"`
	WithInsurance bool    `json:"withInsurance"`
	CreatedAt     string  `json:"createdAt"`
}

func toBookingResponse(b *domain.Booking) *bookingResponse {
	return &bookingResponse{
		ID:            b.ID.String(),
		RequesterID:   b.RequesterID,
		ResourceID:    b.ResourceID,
		StartDate:     b.StartDate.Format("2006-01-02"),
		EndDate:       b.EndDate.Format("2006-01-02"),
		TotalDays:     b.TotalDays,
		UnitPrice:     b.UnitPrice,
		TotalAmount:   b.TotalAmount,
		PaymentStatus: string(b.PaymentStatus),
		BookingStatus: string(b.BookingStatus),
		TransactionID: b.TransactionID,
		GatewayRefID:  b.GatewayRefID,
		Notes:         b.Notes,
		WithInsurance: b.WithInsurance,
		CreatedAt:     b.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

type listBookingsResponse struct {
	Bookings []*bookingResponse `json:"bookings"`
}

// ListBookings answers GET /bookings?requesterId=...
func (h *Handlers) ListBookings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	requesterID := q.Get("requesterId")
	if requesterID == "" {
		rest.WriteError(w, application.NewInvalidInputError("requesterId is required"), h.logger)
		return
	}

	limit := parseIntParam(q.Get("limit"), 0)
	offset := parseIntParam(q.Get("offset"), 0)

	bookings, err := h.query.ListByRequester(r.Context(), requesterID, limit, offset)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	out := make([]*bookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, toBookingResponse(b))
	}
	rest.WriteJSON(w, http.StatusOK, listBookingsResponse{Bookings: out})
}

func parseIntParam(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
