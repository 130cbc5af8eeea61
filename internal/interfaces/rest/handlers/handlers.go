// Package handlers exposes the service's HTTP surface. Booking creation has
// no public endpoint for gateway flows: bookings only come into existence via
// the callback/reconciliation path.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/suyogshakya/rentwheels/internal/application/services"
)

type Handlers struct {
	availability *services.AvailabilityService
	initiation   *services.InitiationService
	callback     *services.CallbackService
	reconcile    *services.ReconciliationService
	query        *services.QueryService
	logger       *slog.Logger
}

func NewHandlers(
	availability *services.AvailabilityService,
	initiation *services.InitiationService,
	callback *services.CallbackService,
	reconcile *services.ReconciliationService,
	query *services.QueryService,
	logger *slog.Logger,
) *Handlers {
	return &Handlers{
		availability: availability,
		initiation:   initiation,
		callback:     callback,
		reconcile:    reconcile,
		query:        query,
		logger:       logger,
	}
}

// Register wires the routes. The callback routes accept GET and POST because
// the gateway delivers both.
func (h *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /bookings/check-availability", h.CheckAvailability)
	mux.HandleFunc("GET /bookings", h.ListBookings)
	mux.HandleFunc("POST /payments/initiate", h.InitiatePayment)
	mux.HandleFunc("/payments/callback", h.PaymentCallback)
	mux.HandleFunc("/payments/callback/failure", h.PaymentCallback)
	mux.HandleFunc("GET /payments/status", h.PaymentStatus)
	mux.HandleFunc("GET /healthz", h.Health)
	mux.Handle("GET /metrics", promhttp.Handler())
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
