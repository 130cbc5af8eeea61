package services

import (
	"context"
	"log/slog"
	"math"
	"net/url"

	"github.com/suyogshakya/rentwheels/internal/application"
	"github.com/suyogshakya/rentwheels/internal/config"
	"github.com/suyogshakya/rentwheels/internal/domain"
	"github.com/suyogshakya/rentwheels/internal/infrastructure/esewa"
	"github.com/suyogshakya/rentwheels/internal/metrics"
)

// amountTolerance bounds the accepted drift between the gateway-reported
// total and the intent's amount. Beyond it the callback is treated as a
// tamper signal.
const amountTolerance = 0.01

// Callback outcome labels, also used as metric values.
const (
	OutcomeSuccess   = "success"
	OutcomeFailure   = "failure"
	OutcomeCancelled = "cancelled"
	OutcomePending   = "pending"
)

// CallbackResult is what the HTTP layer does with a processed callback: a
// redirect to one of the four terminal outcome pages. The handler never
// answers the gateway caller (the renter's browser) with a raw error.
type CallbackResult struct {
	Outcome     string
	RedirectURL string
	Booking     *domain.Booking
}

// CallbackService drives the per-transaction state machine
// PENDING_INTENT → {BOOKED, REJECTED, EXPIRED}. The second delivery of a
// callback finds its intent already consumed and resolves without touching
// the bookings table, which is what makes the handler idempotent.
type CallbackService struct {
	pending             application.PendingStore
	promoter            *Promoter
	signer              *esewa.Signer
	pages               config.PagesConfig
	allowAmountFallback bool
	logger              *slog.Logger
}

func NewCallbackService(
	pending application.PendingStore,
	promoter *Promoter,
	signer *esewa.Signer,
	pages config.PagesConfig,
	allowAmountFallback bool,
	logger *slog.Logger,
) *CallbackService {
	return &CallbackService{
		pending:             pending,
		promoter:            promoter,
		signer:              signer,
		pages:               pages,
		allowAmountFallback: allowAmountFallback,
		logger:              logger,
	}
}

// Handle processes one normalized gateway callback. The step order matters:
// resolve the transaction, load the intent, verify the signature, branch on
// gateway status, cross-check the amount, then promote. Every exit is a
// redirect to a terminal outcome page.
func (s *CallbackService) Handle(ctx context.Context, data *esewa.CallbackData) *CallbackResult {
	transactionID, err := s.resolveTransactionID(ctx, data)
	if err != nil {
		s.logger.Warn("callback without resolvable transaction", "error", err)
		return s.fail(domain.ErrCodeMissingTransactionID, "")
	}

	intent, err := s.pending.Get(ctx, transactionID)
	if err != nil {
		// Already consumed (duplicate delivery), expired, or never existed.
		s.logger.Warn("callback for unknown transaction", "transaction_id", transactionID)
		return s.fail(domain.ErrCodeUnknownTransaction, transactionID)
	}

	signatureValid := s.verifySignature(data)

	switch data.Status {
	case esewa.StatusComplete:
		if !signatureValid {
			s.logger.Warn("rejecting COMPLETE callback with invalid signature",
				"transaction_id", transactionID)
			// The intent stays: a forged callback must not destroy the
			// renter's ability to reconcile the genuine payment later.
			return s.fail(domain.ErrCodeSignatureInvalid, transactionID)
		}
		return s.settle(ctx, intent, data)

	case esewa.StatusCanceled, esewa.StatusFailure:
		if err := s.pending.Delete(ctx, transactionID); err != nil {
			s.logger.Error("failed to drop cancelled intent", "transaction_id", transactionID, "error", err)
		}
		s.logger.Info("payment cancelled at gateway", "transaction_id", transactionID, "status", data.Status)
		metrics.IncCallback(OutcomeCancelled)
		return &CallbackResult{
			Outcome:     OutcomeCancelled,
			RedirectURL: buildRedirect(s.pages.Cancelled, url.Values{"transaction_id": {transactionID}}),
		}

	default:
		// Ambiguous or still pending at the gateway: keep the intent so
		// the reconciliation path can converge later.
		s.logger.Info("payment still pending at gateway", "transaction_id", transactionID, "status", data.Status)
		metrics.IncCallback(OutcomePending)
		return &CallbackResult{
			Outcome:     OutcomePending,
			RedirectURL: buildRedirect(s.pages.Pending, url.Values{"transaction_id": {transactionID}}),
		}
	}
}

// settle runs the amount cross-check and promotes the intent.
func (s *CallbackService) settle(ctx context.Context, intent *domain.BookingIntent, data *esewa.CallbackData) *CallbackResult {
	if !data.HasAmount() || math.Abs(data.TotalAmount-intent.TotalAmount) > amountTolerance {
		// Treated as a potential tamper signal: the intent is discarded.
		s.logger.Error("amount mismatch on COMPLETE callback",
			"transaction_id", intent.TransactionID,
			"reported", data.TotalAmountRaw,
			"expected", intent.TotalAmount,
		)
		if err := s.pending.Delete(ctx, intent.TransactionID); err != nil {
			s.logger.Error("failed to drop mismatched intent", "transaction_id", intent.TransactionID, "error", err)
		}
		return s.fail(domain.ErrCodeAmountMismatch, intent.TransactionID)
	}

	booking, err := s.promoter.Promote(ctx, intent, GatewayConfirmation{
		RefID:           data.RefID,
		TransactionCode: data.TransactionCode,
	}, "callback")
	if err != nil {
		if domain.HasCode(err, domain.ErrCodeBookingConflictAtCommit) {
			return s.fail(domain.ErrCodeBookingConflictAtCommit, intent.TransactionID)
		}
		s.logger.Error("failed to persist booking from callback",
			"transaction_id", intent.TransactionID, "error", err)
		// The intent survives a storage failure; reconciliation retries.
		return s.fail(application.ErrCodeInternal, intent.TransactionID)
	}

	metrics.IncCallback(OutcomeSuccess)
	return &CallbackResult{
		Outcome: OutcomeSuccess,
		RedirectURL: buildRedirect(s.pages.Success, url.Values{
			"booking_id":     {booking.ID.String()},
			"transaction_id": {booking.TransactionID},
		}),
		Booking: booking,
	}
}

// resolveTransactionID prefers the explicit field; when it is absent and the
// operator enabled the fallback, a single exact-amount match against pending
// intents is accepted. The fallback is a documented degraded path, ambiguous
// under concurrent equal-amount transactions, hence the loud logging.
func (s *CallbackService) resolveTransactionID(ctx context.Context, data *esewa.CallbackData) (string, error) {
	if data.TransactionUUID != "" {
		return data.TransactionUUID, nil
	}

	if !s.allowAmountFallback || !data.HasAmount() {
		return "", domain.NewMissingTransactionIDError()
	}

	matches, err := s.pending.FindByAmount(ctx, data.TotalAmount, amountTolerance)
	if err != nil {
		return "", err
	}
	if len(matches) != 1 {
		s.logger.Warn("amount fallback found no unique intent",
			"amount", data.TotalAmountRaw,
			"matches", len(matches),
		)
		return "", domain.NewMissingTransactionIDError()
	}

	s.logger.Warn("resolved callback via amount fallback; fix the integration so transaction_uuid is always present",
		"transaction_id", matches[0].TransactionID,
		"amount", data.TotalAmountRaw,
	)
	return matches[0].TransactionID, nil
}

// verifySignature recomputes the HMAC over the fields the gateway itself
// says it signed, pulling values from the callback payload, never from local
// state. A payload without a signature is treated as unsigned (invalid).
func (s *CallbackService) verifySignature(data *esewa.CallbackData) bool {
	return s.signer.Verify(data.SignedFieldNames, data.Signature, func(name string) (string, bool) {
		v, ok := data.Fields[name]
		return v, ok
	})
}

// DecodeFailure is the terminal outcome for a callback whose payload could
// not be parsed at all. It still redirects rather than erroring at the
// renter's browser.
func (s *CallbackService) DecodeFailure() *CallbackResult {
	return s.fail(domain.ErrCodeMissingTransactionID, "")
}

func (s *CallbackService) fail(reason, transactionID string) *CallbackResult {
	metrics.IncCallback(OutcomeFailure)
	params := url.Values{"reason": {reason}}
	if transactionID != "" {
		params.Set("transaction_id", transactionID)
	}
	return &CallbackResult{
		Outcome:     OutcomeFailure,
		RedirectURL: buildRedirect(s.pages.Failure, params),
	}
}

func buildRedirect(page string, params url.Values) string {
	if len(params) == 0 {
		return page
	}
	return page + "?" + params.Encode()
}
