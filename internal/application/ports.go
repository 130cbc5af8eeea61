// Package application holds the orchestration layer: the ports its services
// drive, service-level errors, and their HTTP mapping.
package application

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/suyogshakya/rentwheels/internal/domain"
	"github.com/suyogshakya/rentwheels/internal/infrastructure/esewa"
)

// BookingRepository persists bookings. The bookings table is the single
// source of truth for the overlap invariant; the pending store never gates
// availability.
type BookingRepository interface {
	// CreateConfirmed inserts a booking while re-validating the overlap
	// invariant inside one transaction. It returns a DomainError with code
	// BOOKING_CONFLICT_AT_COMMIT when a competing booking won the slot.
	CreateConfirmed(ctx context.Context, booking *domain.Booking) error

	FindByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	FindByTransactionID(ctx context.Context, transactionID string) (*domain.Booking, error)

	// FindOverlapping returns bookings for the resource whose date ranges
	// conflict with r and whose status still occupies the resource.
	FindOverlapping(ctx context.Context, resourceID string, r domain.DateRange) ([]*domain.Booking, error)

	FindByRequester(ctx context.Context, requesterID string, limit, offset int) ([]*domain.Booking, error)
}

// ResourceRepository reads rentable vehicles and spare parts.
type ResourceRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Resource, error)
}

// LicenseRepository answers credential checks for category-gated vehicles.
type LicenseRepository interface {
	HasValidLicense(ctx context.Context, requesterID, category string) (bool, error)
}

// PendingStore keeps in-flight booking intents keyed by transaction UUID.
// Implementations: in-process map (restart loses entries, accepted) and
// Redis with per-entry TTL.
type PendingStore interface {
	Put(ctx context.Context, intent *domain.BookingIntent) error

	// Get returns the intent, or a DomainError with code UNKNOWN_TRANSACTION
	// when the entry was already consumed, expired, or never existed.
	Get(ctx context.Context, transactionID string) (*domain.BookingIntent, error)

	Delete(ctx context.Context, transactionID string) error

	// FindByAmount is the degraded fallback path for callbacks arriving
	// without a transaction identifier: exact-amount matching within the
	// tolerance. Ambiguous under concurrent equal-amount transactions.
	FindByAmount(ctx context.Context, amount, tolerance float64) ([]*domain.BookingIntent, error)

	// Sweep removes and returns intents older than the cutoff so the
	// caller can reconcile them against the gateway before discarding.
	// Backends with native expiry may return nothing.
	Sweep(ctx context.Context, olderThan time.Duration) ([]*domain.BookingIntent, error)
}

// GatewayClient queries the payment gateway's transaction status endpoint.
type GatewayClient interface {
	CheckStatus(ctx context.Context, transactionID string, totalAmount float64) (*esewa.StatusResponse, error)
}

// Notifier publishes booking lifecycle events for the notification service.
// Publish failures must never fail or roll back a booking.
type Notifier interface {
	BookingConfirmed(ctx context.Context, booking *domain.Booking) error
}
