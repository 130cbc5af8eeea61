package application

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/suyogshakya/rentwheels/internal/domain"
	"github.com/suyogshakya/rentwheels/internal/infrastructure/esewa"
)

// Hand-written mocks for the ports above, map-backed with optional per-call
// overrides. Used by the service and handler tests.

// MockBookingRepository
type MockBookingRepository struct {
	mu       sync.RWMutex
	bookings map[string]*domain.Booking

	CreateConfirmedFn     func(ctx context.Context, booking *domain.Booking) error
	FindByIDFn            func(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	FindByTransactionIDFn func(ctx context.Context, transactionID string) (*domain.Booking, error)
	FindOverlappingFn     func(ctx context.Context, resourceID string, r domain.DateRange) ([]*domain.Booking, error)
}

func NewMockBookingRepository() *MockBookingRepository {
	return &MockBookingRepository{bookings: make(map[string]*domain.Booking)}
}

func (m *MockBookingRepository) CreateConfirmed(ctx context.Context, booking *domain.Booking) error {
	if m.CreateConfirmedFn != nil {
		return m.CreateConfirmedFn(ctx, booking)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Mirror the commit-time invariant the real repository enforces.
	occupied := 0
	for _, b := range m.bookings {
		if b.ResourceID == booking.ResourceID && b.Occupies() && b.Range().Overlaps(booking.Range()) {
			occupied++
		}
	}
	if occupied > 0 {
		return domain.NewBookingConflictError(booking.ResourceID)
	}
	m.bookings[booking.ID.String()] = booking
	return nil
}

func (m *MockBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	if m.FindByIDFn != nil {
		return m.FindByIDFn(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if b, ok := m.bookings[id.String()]; ok {
		return b, nil
	}
	return nil, domain.NewBookingNotFoundError(id.String())
}

func (m *MockBookingRepository) FindByTransactionID(ctx context.Context, transactionID string) (*domain.Booking, error) {
	if m.FindByTransactionIDFn != nil {
		return m.FindByTransactionIDFn(ctx, transactionID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, b := range m.bookings {
		if b.TransactionID == transactionID {
			return b, nil
		}
	}
	return nil, domain.NewBookingNotFoundError(transactionID)
}

func (m *MockBookingRepository) FindOverlapping(ctx context.Context, resourceID string, r domain.DateRange) ([]*domain.Booking, error) {
	if m.FindOverlappingFn != nil {
		return m.FindOverlappingFn(ctx, resourceID, r)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Booking
	for _, b := range m.bookings {
		if b.ResourceID == resourceID && b.Occupies() && b.Range().Overlaps(r) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *MockBookingRepository) FindByRequester(ctx context.Context, requesterID string, limit, offset int) ([]*domain.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Booking
	for _, b := range m.bookings {
		if b.RequesterID == requesterID {
			out = append(out, b)
		}
	}
	return out, nil
}

// Seed inserts a booking bypassing the commit-time check.
func (m *MockBookingRepository) Seed(booking *domain.Booking) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings[booking.ID.String()] = booking
}

// Count returns the number of stored bookings.
func (m *MockBookingRepository) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.bookings)
}

// MockResourceRepository
type MockResourceRepository struct {
	mu        sync.RWMutex
	resources map[string]*domain.Resource

	FindByIDFn func(ctx context.Context, id string) (*domain.Resource, error)
}

func NewMockResourceRepository() *MockResourceRepository {
	return &MockResourceRepository{resources: make(map[string]*domain.Resource)}
}

func (m *MockResourceRepository) FindByID(ctx context.Context, id string) (*domain.Resource, error) {
	if m.FindByIDFn != nil {
		return m.FindByIDFn(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.resources[id]; ok {
		return r, nil
	}
	return nil, domain.NewResourceUnavailableError(id)
}

func (m *MockResourceRepository) Seed(r *domain.Resource) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resources[r.ID] = r
}

// MockLicenseRepository
type MockLicenseRepository struct {
	mu       sync.RWMutex
	licenses map[string]map[string]bool // requesterID -> category -> held

	HasValidLicenseFn func(ctx context.Context, requesterID, category string) (bool, error)
}

func NewMockLicenseRepository() *MockLicenseRepository {
	return &MockLicenseRepository{licenses: make(map[string]map[string]bool)}
}

func (m *MockLicenseRepository) HasValidLicense(ctx context.Context, requesterID, category string) (bool, error) {
	if m.HasValidLicenseFn != nil {
		return m.HasValidLicenseFn(ctx, requesterID, category)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.licenses[requesterID][category], nil
}

func (m *MockLicenseRepository) Grant(requesterID, category string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.licenses[requesterID] == nil {
		m.licenses[requesterID] = make(map[string]bool)
	}
	m.licenses[requesterID][category] = true
}

// MockGatewayClient
type MockGatewayClient struct {
	mu    sync.Mutex
	calls int

	CheckStatusFn func(ctx context.Context, transactionID string, totalAmount float64) (*esewa.StatusResponse, error)
}

func (m *MockGatewayClient) CheckStatus(ctx context.Context, transactionID string, totalAmount float64) (*esewa.StatusResponse, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.CheckStatusFn != nil {
		return m.CheckStatusFn(ctx, transactionID, totalAmount)
	}
	return &esewa.StatusResponse{Status: esewa.StatusNotFound}, nil
}

func (m *MockGatewayClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MockNotifier
type MockNotifier struct {
	mu        sync.Mutex
	confirmed []*domain.Booking

	BookingConfirmedFn func(ctx context.Context, booking *domain.Booking) error
}

func (m *MockNotifier) BookingConfirmed(ctx context.Context, booking *domain.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.BookingConfirmedFn != nil {
		return m.BookingConfirmedFn(ctx, booking)
	}
	m.confirmed = append(m.confirmed, booking)
	return nil
}

func (m *MockNotifier) Confirmed() []*domain.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Booking, len(m.confirmed))
	copy(out, m.confirmed)
	return out
}
