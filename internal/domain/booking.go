// Package domain defines the rental marketplace's core entities: bookings,
// booking intents, rentable resources, and their business rules.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// PaymentStatus tracks what happened to the money for a booking.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// BookingStatus tracks the rental lifecycle of a booking.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingActive    BookingStatus = "active"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

// Booking is a persisted, paid-for (or deferred-payment) rental reservation.
// Bookings are never deleted; cancellation is a status change.
type Booking struct {
	ID          uuid.UUID
	RequesterID string
	ResourceID  string

	StartDate   time.Time
	EndDate     time.Time
	TotalDays   int
	UnitPrice   float64
	TotalAmount float64

	PaymentStatus PaymentStatus
	BookingStatus BookingStatus

	TransactionID          string
	GatewayRefID           *string
	GatewayTransactionCode *string

	Notes           string
	WithInsurance   bool
	DeferredPayment bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Occupies reports whether the booking counts toward the overlap invariant.
// Completed and cancelled bookings never conflict with new ones.
func (b *Booking) Occupies() bool {
	switch b.BookingStatus {
	case BookingPending, BookingConfirmed, BookingActive:
		return true
	default:
		return false
	}
}

// Range returns the booking's rental window.
func (b *Booking) Range() DateRange {
	return DateRange{Start: b.StartDate, End: b.EndDate}
}

// IsTerminal reports whether no further lifecycle transitions are allowed.
func (b *Booking) IsTerminal() bool {
	return b.BookingStatus == BookingCompleted || b.BookingStatus == BookingCancelled
}

// CanTransitionTo validates a lifecycle transition. Valid transitions are:
//   - pending → confirmed, cancelled
//   - confirmed → active, cancelled
//   - active → completed, cancelled
//
// Terminal states (completed, cancelled) allow none.
func (b *Booking) CanTransitionTo(target BookingStatus) error {
	switch b.BookingStatus {
	case BookingPending:
		if target == BookingConfirmed || target == BookingCancelled {
			return nil
		}
	case BookingConfirmed:
		if target == BookingActive || target == BookingCancelled {
			return nil
		}
	case BookingActive:
		if target == BookingCompleted || target == BookingCancelled {
			return nil
		}
	}
	return NewInvalidTransitionError(b.BookingStatus, target)
}
