// Package services implements the booking/payment orchestration: availability
// checks, payment initiation, gateway callback handling, and status
// reconciliation.
package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/suyogshakya/rentwheels/internal/application"
	"github.com/suyogshakya/rentwheels/internal/domain"
)

// AvailabilityResult answers a date-range availability query.
type AvailabilityResult struct {
	Available    bool
	BookedRanges []domain.DateRange
}

// AvailabilityService runs the read-only overlap check against persisted
// bookings. Only the bookings table gates availability; pending intents are
// advisory and never counted here.
type AvailabilityService struct {
	bookings  application.BookingRepository
	resources application.ResourceRepository
	now       func() time.Time
	logger    *slog.Logger
}

func NewAvailabilityService(
	bookings application.BookingRepository,
	resources application.ResourceRepository,
	logger *slog.Logger,
) *AvailabilityService {
	return &AvailabilityService{
		bookings:  bookings,
		resources: resources,
		now:       time.Now,
		logger:    logger,
	}
}

// Check reports whether the resource can take one more booking over the
// requested window. For finite-stock parts, available means the count of
// overlapping occupying bookings is strictly below stock; vehicles are the
// stock=1 case of the same rule.
func (s *AvailabilityService) Check(ctx context.Context, resourceID string, startDate, endDate time.Time) (*AvailabilityResult, error) {
	r, err := domain.NewDateRange(startDate, endDate)
	if err != nil {
		return nil, err
	}
	if err := r.ValidateNotPast(s.now()); err != nil {
		return nil, err
	}

	resource, err := s.resources.FindByID(ctx, resourceID)
	if err != nil {
		return nil, err
	}

	overlapping, err := s.bookings.FindOverlapping(ctx, resourceID, r)
	if err != nil {
		return nil, application.NewInternalError(err)
	}

	result := &AvailabilityResult{
		Available:    len(overlapping) < resource.Stock,
		BookedRanges: make([]domain.DateRange, 0, len(overlapping)),
	}
	for _, b := range overlapping {
		result.BookedRanges = append(result.BookedRanges, b.Range())
	}
	return result, nil
}
