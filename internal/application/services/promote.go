package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/suyogshakya/rentwheels/internal/application"
	"github.com/suyogshakya/rentwheels/internal/domain"
	"github.com/suyogshakya/rentwheels/internal/metrics"
)

// GatewayConfirmation carries the gateway's reference identifiers for a
// completed payment.
type GatewayConfirmation struct {
	RefID           string
	TransactionCode string
}

// Promoter turns a pending BookingIntent into a persisted Booking. The
// callback handler, the reconciliation service, and the sweeper all share this
// one implementation so the overlap invariant is enforced identically on
// every entry path.
type Promoter struct {
	bookings application.BookingRepository
	pending  application.PendingStore
	notifier application.Notifier
	logger   *slog.Logger
}

func NewPromoter(
	bookings application.BookingRepository,
	pending application.PendingStore,
	notifier application.Notifier,
	logger *slog.Logger,
) *Promoter {
	return &Promoter{
		bookings: bookings,
		pending:  pending,
		notifier: notifier,
		logger:   logger,
	}
}

// Promote persists the intent as a confirmed, paid booking. The repository
// re-validates the overlap invariant inside its transaction, which is the
// true linearization point: a competing booking that landed between
// initiation and payment completion fails the commit here. On conflict the
// intent is removed (terminal rejection, no booking created) and the
// BOOKING_CONFLICT_AT_COMMIT error is returned. The source label names the
// entry path for instrumentation.
func (p *Promoter) Promote(ctx context.Context, intent *domain.BookingIntent, conf GatewayConfirmation, source string) (*domain.Booking, error) {
	now := time.Now()
	booking := &domain.Booking{
		ID:            uuid.New(),
		RequesterID:   intent.RequesterID,
		ResourceID:    intent.ResourceID,
		StartDate:     intent.StartDate,
		EndDate:       intent.EndDate,
		TotalDays:     intent.TotalDays,
		UnitPrice:     intent.UnitPrice,
		TotalAmount:   intent.TotalAmount,
		PaymentStatus: domain.PaymentPaid,
		BookingStatus: domain.BookingConfirmed,
		TransactionID: intent.TransactionID,
		Notes:         intent.Notes,
		WithInsurance: intent.WithInsurance,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if conf.RefID != "" {
		booking.GatewayRefID = &conf.RefID
	}
	if conf.TransactionCode != "" {
		booking.GatewayTransactionCode = &conf.TransactionCode
	}

	if err := p.bookings.CreateConfirmed(ctx, booking); err != nil {
		if domain.HasCode(err, domain.ErrCodeBookingConflictAtCommit) {
			p.logger.Warn("commit-time overlap check rejected paid booking",
				"transaction_id", intent.TransactionID,
				"resource_id", intent.ResourceID,
			)
			if delErr := p.pending.Delete(ctx, intent.TransactionID); delErr != nil {
				p.logger.Error("failed to drop rejected intent", "transaction_id", intent.TransactionID, "error", delErr)
			}
		}
		return nil, err
	}

	if err := p.pending.Delete(ctx, intent.TransactionID); err != nil {
		// Booking exists; a dangling intent is cleaned up by the sweeper.
		p.logger.Warn("failed to delete consumed intent", "transaction_id", intent.TransactionID, "error", err)
	}

	metrics.IncBookingCreated(source)
	p.logger.Info("booking created",
		"booking_id", booking.ID,
		"transaction_id", booking.TransactionID,
		"resource_id", booking.ResourceID,
		"source", source,
	)

	p.notifyAsync(booking)
	return booking, nil
}

// notifyAsync publishes the confirmation event off the request path.
// Notification failure never fails or rolls back the booking.
func (p *Promoter) notifyAsync(booking *domain.Booking) {
	if p.notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := p.notifier.BookingConfirmed(ctx, booking); err != nil {
			p.logger.Error("failed to publish booking confirmation",
				"booking_id", booking.ID,
				"error", err,
			)
		}
	}()
}
