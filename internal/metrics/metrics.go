// Package metrics exposes the service's Prometheus instrumentation.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	callbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rentwheels",
			Name:      "payment_callbacks_total",
			Help:      "Count of gateway callbacks by terminal outcome.",
		},
		[]string{"outcome"},
	)

	bookingsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rentwheels",
			Name:      "bookings_created_total",
			Help:      "Count of bookings promoted from pending intents, by entry path.",
		},
		[]string{"source"},
	)

	intentsSwept = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "rentwheels",
			Name:      "pending_intents_swept_total",
			Help:      "Count of stale pending intents discarded by the sweeper.",
		},
	)

	gatewayStatusChecks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rentwheels",
			Name:      "gateway_status_checks_total",
			Help:      "Count of status endpoint queries by reported status.",
		},
		[]string{"status"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(callbacksTotal, bookingsCreated, intentsSwept, gatewayStatusChecks)
	})
}

func IncCallback(outcome string) {
	callbacksTotal.WithLabelValues(outcome).Inc()
}

func IncBookingCreated(source string) {
	bookingsCreated.WithLabelValues(source).Inc()
}

func IncIntentSwept() {
	intentsSwept.Inc()
}

func IncGatewayStatusCheck(status string) {
	gatewayStatusChecks.WithLabelValues(status).Inc()
}
