package postgres

import (
	"time"

	"github.com/google/uuid"

	"github.com/suyogshakya/rentwheels/internal/domain"
)

// BookingModel mirrors the bookings table row.
type BookingModel struct {
	ID                     uuid.UUID
	RequesterID            string
	ResourceID             string
	StartDate              time.Time
	EndDate                time.Time
	TotalDays              int
	UnitPrice              float64
	TotalAmount            float64
	PaymentStatus          string
	BookingStatus          string
	TransactionID          string
	GatewayRefID           *string
	GatewayTransactionCode *string
	Notes                  string
	WithInsurance          bool
	DeferredPayment        bool
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

func toBookingModel(b *domain.Booking) BookingModel {
	return BookingModel{
		ID:                     b.ID,
		RequesterID:            b.RequesterID,
		ResourceID:             b.ResourceID,
		StartDate:              b.StartDate,
		EndDate:                b.EndDate,
		TotalDays:              b.TotalDays,
		UnitPrice:              b.UnitPrice,
		TotalAmount:            b.TotalAmount,
		PaymentStatus:          string(b.PaymentStatus),
		BookingStatus:          string(b.BookingStatus),
		TransactionID:          b.TransactionID,
		GatewayRefID:           b.GatewayRefID,
		GatewayTransactionCode: b.GatewayTransactionCode,
		Notes:                  b.Notes,
		WithInsurance:          b.WithInsurance,
		DeferredPayment:        b.DeferredPayment,
		CreatedAt:              b.CreatedAt,
		UpdatedAt:              b.UpdatedAt,
	}
}

func toDomainBooking(m BookingModel) *domain.Booking {
	return &domain.Booking{
		ID:                     m.ID,
		RequesterID:            m.RequesterID,
		ResourceID:             m.ResourceID,
		StartDate:              domain.TruncateToDay(m.StartDate),
		EndDate:                domain.TruncateToDay(m.EndDate),
		TotalDays:              m.TotalDays,
		UnitPrice:              m.UnitPrice,
		TotalAmount:            m.TotalAmount,
		PaymentStatus:          domain.PaymentStatus(m.PaymentStatus),
		BookingStatus:          domain.BookingStatus(m.BookingStatus),
		TransactionID:          m.TransactionID,
		GatewayRefID:           m.GatewayRefID,
		GatewayTransactionCode: m.GatewayTransactionCode,
		Notes:                  m.Notes,
		WithInsurance:          m.WithInsurance,
		DeferredPayment:        m.DeferredPayment,
		CreatedAt:              m.CreatedAt,
		UpdatedAt:              m.UpdatedAt,
	}
}
