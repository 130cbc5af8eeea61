package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/suyogshakya/rentwheels/internal/domain"
)

func TestBooking_Occupies(t *testing.T) {
	occupying := []domain.BookingStatus{
		domain.BookingPending,
		domain.BookingConfirmed,
		domain.BookingActive,
	}
	for _, st := range occupying {
		b := &domain.Booking{BookingStatus: st}
		assert.True(t, b.Occupies(), "status %s must occupy", st)
	}

	free := []domain.BookingStatus{domain.BookingCompleted, domain.BookingCancelled}
	for _, st := range free {
		b := &domain.Booking{BookingStatus: st}
		assert.False(t, b.Occupies(), "status %s must not occupy", st)
	}
}

func TestBooking_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from    domain.BookingStatus
		to      domain.BookingStatus
		allowed bool
	}{
		{domain.BookingPending, domain.BookingConfirmed, true},
		{domain.BookingPending, domain.BookingCancelled, true},
		{domain.BookingPending, domain.BookingActive, false},
		{domain.BookingConfirmed, domain.BookingActive, true},
		{domain.BookingConfirmed, domain.BookingCancelled, true},
		{domain.BookingConfirmed, domain.BookingCompleted, false},
		{domain.BookingActive, domain.BookingCompleted, true},
		{domain.BookingActive, domain.BookingCancelled, true},
		{domain.BookingActive, domain.BookingConfirmed, false},
		{domain.BookingCompleted, domain.BookingCancelled, false},
		{domain.BookingCancelled, domain.BookingPending, false},
	}

	for _, tt := range tests {
		b := &domain.Booking{BookingStatus: tt.from}
		err := b.CanTransitionTo(tt.to)
		if tt.allowed {
			assert.NoError(t, err, "%s -> %s", tt.from, tt.to)
		} else {
			assert.Error(t, err, "%s -> %s", tt.from, tt.to)
			assert.True(t, domain.HasCode(err, domain.ErrCodeInvalidTransition))
		}
	}
}

func TestBooking_IsTerminal(t *testing.T) {
	assert.True(t, (&domain.Booking{BookingStatus: domain.BookingCompleted}).IsTerminal())
	assert.True(t, (&domain.Booking{BookingStatus: domain.BookingCancelled}).IsTerminal())
	assert.False(t, (&domain.Booking{BookingStatus: domain.BookingConfirmed}).IsTerminal())
}
