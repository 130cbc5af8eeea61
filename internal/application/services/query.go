package services

import (
	"context"

	"github.com/suyogshakya/rentwheels/internal/application"
	"github.com/suyogshakya/rentwheels/internal/domain"
)

const defaultListLimit = 50

// QueryService serves read-only booking lookups.
type QueryService struct {
	bookings application.BookingRepository
}

func NewQueryService(bookings application.BookingRepository) *QueryService {
	return &QueryService{bookings: bookings}
}

// ListByRequester returns the renter's own bookings, deferred-payment ones
// included, so failed or pending payments stay visible and resumable.
func (s *QueryService) ListByRequester(ctx context.Context, requesterID string, limit, offset int) ([]*domain.Booking, error) {
	if limit <= 0 || limit > 200 {
		limit = defaultListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.bookings.FindByRequester(ctx, requesterID, limit, offset)
}
