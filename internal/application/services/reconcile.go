package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/suyogshakya/rentwheels/internal/application"
	"github.com/suyogshakya/rentwheels/internal/domain"
	"github.com/suyogshakya/rentwheels/internal/infrastructure/esewa"
	"github.com/suyogshakya/rentwheels/internal/metrics"
)

// StatusResult reports a transaction's converged state.
type StatusResult struct {
	GatewayStatus string
	Booking       *domain.Booking
}

// ReconciliationService is the safety net for missed or ambiguous callbacks:
// it converges local state to gateway truth. Promotion goes through the same
// Promoter as the callback path, so the overlap invariant cannot diverge, and
// the booking-already-exists check makes repeated calls safe.
type ReconciliationService struct {
	bookings application.BookingRepository
	pending  application.PendingStore
	gateway  application.GatewayClient
	promoter *Promoter
	logger   *slog.Logger
}

func NewReconciliationService(
	bookings application.BookingRepository,
	pending application.PendingStore,
	gateway application.GatewayClient,
	promoter *Promoter,
	logger *slog.Logger,
) *ReconciliationService {
	return &ReconciliationService{
		bookings: bookings,
		pending:  pending,
		gateway:  gateway,
		promoter: promoter,
		logger:   logger,
	}
}

// CheckByTransaction resolves the authoritative state of a transaction. A
// persisted booking in a terminal payment state answers without a gateway
// round trip; otherwise the gateway is queried and, on COMPLETE, the pending
// intent is promoted exactly as the callback would have.
func (s *ReconciliationService) CheckByTransaction(ctx context.Context, transactionID string) (*StatusResult, error) {
	booking, err := s.bookings.FindByTransactionID(ctx, transactionID)
	if err == nil {
		return s.resolveExisting(ctx, booking)
	}
	if !domain.HasCode(err, domain.ErrCodeBookingNotFound) {
		return nil, application.NewInternalError(err)
	}

	intent, err := s.pending.Get(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	status, err := s.checkGateway(ctx, transactionID, intent.TotalAmount)
	if err != nil {
		return nil, err
	}

	switch status.Status {
	case esewa.StatusComplete:
		promoted, err := s.promoter.Promote(ctx, intent, GatewayConfirmation{RefID: status.RefID}, "reconcile")
		if err != nil {
			return nil, err
		}
		return &StatusResult{GatewayStatus: status.Status, Booking: promoted}, nil

	case esewa.StatusNotFound, esewa.StatusCanceled:
		// Gateway word is authoritative: the intent is garbage.
		if err := s.pending.Delete(ctx, transactionID); err != nil {
			s.logger.Error("failed to drop dead intent", "transaction_id", transactionID, "error", err)
		}
		return &StatusResult{GatewayStatus: status.Status}, nil

	default:
		return &StatusResult{GatewayStatus: status.Status}, nil
	}
}

// CheckByBooking reports status for an already-persisted booking, e.g. a
// deferred-payment reservation the renter resumes from their booking list.
func (s *ReconciliationService) CheckByBooking(ctx context.Context, bookingID uuid.UUID) (*StatusResult, error) {
	booking, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return s.resolveExisting(ctx, booking)
}

// resolveExisting maps a persisted booking to a gateway status, calling the
// gateway only when the local state is still ambiguous.
func (s *ReconciliationService) resolveExisting(ctx context.Context, booking *domain.Booking) (*StatusResult, error) {
	switch {
	case booking.PaymentStatus == domain.PaymentRefunded:
		return &StatusResult{GatewayStatus: esewa.StatusFullRefund, Booking: booking}, nil
	case booking.BookingStatus == domain.BookingCancelled:
		return &StatusResult{GatewayStatus: esewa.StatusCanceled, Booking: booking}, nil
	case booking.PaymentStatus == domain.PaymentPaid:
		return &StatusResult{GatewayStatus: esewa.StatusComplete, Booking: booking}, nil
	}

	// Deferred-payment or otherwise unsettled: ask the gateway.
	status, err := s.checkGateway(ctx, booking.TransactionID, booking.TotalAmount)
	if err != nil {
		return nil, err
	}
	return &StatusResult{GatewayStatus: status.Status, Booking: booking}, nil
}

func (s *ReconciliationService) checkGateway(ctx context.Context, transactionID string, amount float64) (*esewa.StatusResponse, error) {
	status, err := s.gateway.CheckStatus(ctx, transactionID, amount)
	if err != nil {
		// GATEWAY_UNREACHABLE propagates; the client polls again.
		return nil, err
	}
	metrics.IncGatewayStatusCheck(status.Status)
	return status, nil
}
