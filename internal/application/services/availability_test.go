package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suyogshakya/rentwheels/internal/application"
	"github.com/suyogshakya/rentwheels/internal/application/services"
	"github.com/suyogshakya/rentwheels/internal/domain"
)

func newAvailabilityFixture() (*services.AvailabilityService, *application.MockBookingRepository, *application.MockResourceRepository) {
	bookings := application.NewMockBookingRepository()
	resources := application.NewMockResourceRepository()
	svc := services.NewAvailabilityService(bookings, resources, testLogger())
	return svc, bookings, resources
}

func TestAvailability_FreeVehicle(t *testing.T) {
	svc, _, resources := newAvailabilityFixture()
	vehicle := testVehicle()
	resources.Seed(vehicle)

	result, err := svc.Check(context.Background(), vehicle.ID, futureDate(10), futureDate(13))
	require.NoError(t, err)
	assert.True(t, result.Available)
	assert.Empty(t, result.BookedRanges)
}

func TestAvailability_OverlappingVehicleBooking(t *testing.T) {
	svc, bookings, resources := newAvailabilityFixture()
	vehicle := testVehicle()
	resources.Seed(vehicle)
	existing := seedBooking(bookings, vehicle.ID, futureDate(10), futureDate(13), domain.BookingConfirmed)

	result, err := svc.Check(context.Background(), vehicle.ID, futureDate(12), futureDate(15))
	require.NoError(t, err)
	assert.False(t, result.Available)
	require.Len(t, result.BookedRanges, 1)
	assert.Equal(t, existing.StartDate, result.BookedRanges[0].Start)
	assert.Equal(t, existing.EndDate, result.BookedRanges[0].End)
}

func TestAvailability_TouchingBoundariesConflict(t *testing.T) {
	// A rental ending on the 13th still occupies the 13th: same-day handover
	// of a physical vehicle is not possible.
	svc, bookings, resources := newAvailabilityFixture()
	vehicle := testVehicle()
	resources.Seed(vehicle)
	seedBooking(bookings, vehicle.ID, futureDate(10), futureDate(13), domain.BookingActive)

	result, err := svc.Check(context.Background(), vehicle.ID, futureDate(13), futureDate(16))
	require.NoError(t, err)
	assert.False(t, result.Available)
}

func TestAvailability_CancelledBookingDoesNotBlock(t *testing.T) {
	svc, bookings, resources := newAvailabilityFixture()
	vehicle := testVehicle()
	resources.Seed(vehicle)
	seedBooking(bookings, vehicle.ID, futureDate(10), futureDate(13), domain.BookingCancelled)

	result, err := svc.Check(context.Background(), vehicle.ID, futureDate(10), futureDate(13))
	require.NoError(t, err)
	assert.True(t, result.Available)
}

func TestAvailability_PartStockRule(t *testing.T) {
	svc, bookings, resources := newAvailabilityFixture()
	part := testPart(2)
	resources.Seed(part)
	seedBooking(bookings, part.ID, futureDate(10), futureDate(13), domain.BookingConfirmed)

	// One of two units taken: still available.
	result, err := svc.Check(context.Background(), part.ID, futureDate(11), futureDate(14))
	require.NoError(t, err)
	assert.True(t, result.Available)

	seedBooking(bookings, part.ID, futureDate(11), futureDate(14), domain.BookingConfirmed)

	// Both units overlap the window now.
	result, err = svc.Check(context.Background(), part.ID, futureDate(12), futureDate(15))
	require.NoError(t, err)
	assert.False(t, result.Available)
	assert.Len(t, result.BookedRanges, 2)
}

func TestAvailability_InvalidRange(t *testing.T) {
	svc, _, resources := newAvailabilityFixture()
	vehicle := testVehicle()
	resources.Seed(vehicle)

	_, err := svc.Check(context.Background(), vehicle.ID, futureDate(13), futureDate(10))
	require.Error(t, err)
	assert.True(t, domain.HasCode(err, domain.ErrCodeInvalidDateRange))

	// Zero-length windows are rejected too.
	_, err = svc.Check(context.Background(), vehicle.ID, futureDate(10), futureDate(10))
	require.Error(t, err)
	assert.True(t, domain.HasCode(err, domain.ErrCodeInvalidDateRange))
}

func TestAvailability_PastRange(t *testing.T) {
	svc, _, resources := newAvailabilityFixture()
	vehicle := testVehicle()
	resources.Seed(vehicle)

	_, err := svc.Check(context.Background(), vehicle.ID, futureDate(-5), futureDate(-2))
	require.Error(t, err)
	assert.True(t, domain.HasCode(err, domain.ErrCodeInvalidDateRange))
}

func TestAvailability_UnknownResource(t *testing.T) {
	svc, _, _ := newAvailabilityFixture()

	_, err := svc.Check(context.Background(), "missing", futureDate(10), futureDate(13))
	require.Error(t, err)
	assert.True(t, domain.HasCode(err, domain.ErrCodeResourceUnavailable))
}
