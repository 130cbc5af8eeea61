package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suyogshakya/rentwheels/internal/application"
	"github.com/suyogshakya/rentwheels/internal/application/services"
	"github.com/suyogshakya/rentwheels/internal/domain"
	"github.com/suyogshakya/rentwheels/internal/infrastructure/esewa"
	"github.com/suyogshakya/rentwheels/internal/infrastructure/pending"
)

type callbackFixture struct {
	svc      *services.CallbackService
	bookings *application.MockBookingRepository
	store    *pending.MemoryStore
	notifier *application.MockNotifier
}

func newCallbackFixture(allowAmountFallback bool) *callbackFixture {
	bookings := application.NewMockBookingRepository()
	store := pending.NewMemoryStore()
	notifier := &application.MockNotifier{}
	promoter := services.NewPromoter(bookings, store, notifier, testLogger())
	svc := services.NewCallbackService(
		store,
		promoter,
		esewa.NewSigner(testSecret),
		testPages,
		allowAmountFallback,
		testLogger(),
	)
	return &callbackFixture{svc: svc, bookings: bookings, store: store, notifier: notifier}
}

func TestCallback_CompleteCreatesBooking(t *testing.T) {
	f := newCallbackFixture(false)
	vehicle := testVehicle()
	intent := testIntent(vehicle.ID, futureDate(10), futureDate(13), 4500)
	mustPut(t, f.store, intent)

	result := f.svc.Handle(context.Background(), signedCallback(t, intent, "COMPLETE"))

	assert.Equal(t, services.OutcomeSuccess, result.Outcome)
	require.NotNil(t, result.Booking)
	assert.Equal(t, domain.PaymentPaid, result.Booking.PaymentStatus)
	assert.Equal(t, domain.BookingConfirmed, result.Booking.BookingStatus)
	assert.Equal(t, intent.TransactionID, result.Booking.TransactionID)
	require.NotNil(t, result.Booking.GatewayRefID)

	assert.True(t, strings.HasPrefix(result.RedirectURL, testPages.Success))
	q := redirectQuery(t, result.RedirectURL)
	assert.Equal(t, result.Booking.ID.String(), q.Get("booking_id"))
	assert.Equal(t, intent.TransactionID, q.Get("transaction_id"))

	// The intent is consumed and the booking is durable.
	assert.Equal(t, 0, f.store.Len())
	assert.Equal(t, 1, f.bookings.Count())

	// The confirmation event goes out off the request path.
	require.Eventually(t, func() bool {
		return len(f.notifier.Confirmed()) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestCallback_DuplicateDeliveryIsIdempotent(t *testing.T) {
	f := newCallbackFixture(false)
	vehicle := testVehicle()
	intent := testIntent(vehicle.ID, futureDate(10), futureDate(13), 4500)
	mustPut(t, f.store, intent)
	data := signedCallback(t, intent, "COMPLETE")

	first := f.svc.Handle(context.Background(), data)
	second := f.svc.Handle(context.Background(), data)

	assert.Equal(t, services.OutcomeSuccess, first.Outcome)
	assert.Equal(t, services.OutcomeFailure, second.Outcome)
	q := redirectQuery(t, second.RedirectURL)
	assert.Equal(t, domain.ErrCodeUnknownTransaction, q.Get("reason"))

	// One booking, no matter how many times the gateway retries.
	assert.Equal(t, 1, f.bookings.Count())
}

func TestCallback_InvalidSignatureRejectsButKeepsIntent(t *testing.T) {
	f := newCallbackFixture(false)
	vehicle := testVehicle()
	intent := testIntent(vehicle.ID, futureDate(10), futureDate(13), 4500)
	mustPut(t, f.store, intent)

	data := signedCallback(t, intent, "COMPLETE")
	data.Fields["total_amount"] = "1.00" // tamper after signing
	data.TotalAmount = 1.00

	result := f.svc.Handle(context.Background(), data)

	assert.Equal(t, services.OutcomeFailure, result.Outcome)
	q := redirectQuery(t, result.RedirectURL)
	assert.Equal(t, domain.ErrCodeSignatureInvalid, q.Get("reason"))
	assert.Equal(t, 0, f.bookings.Count())

	// The intent survives so the genuine payment can still reconcile.
	assert.Equal(t, 1, f.store.Len())
}

func TestCallback_MissingSignatureIsInvalid(t *testing.T) {
	f := newCallbackFixture(false)
	vehicle := testVehicle()
	intent := testIntent(vehicle.ID, futureDate(10), futureDate(13), 4500)
	mustPut(t, f.store, intent)

	data := signedCallback(t, intent, "COMPLETE")
	data.Signature = ""

	result := f.svc.Handle(context.Background(), data)
	assert.Equal(t, services.OutcomeFailure, result.Outcome)
	assert.Equal(t, 0, f.bookings.Count())
}

func TestCallback_AmountMismatchDiscardsIntent(t *testing.T) {
	f := newCallbackFixture(false)
	vehicle := testVehicle()
	intent := testIntent(vehicle.ID, futureDate(10), futureDate(13), 4500)
	mustPut(t, f.store, intent)

	// The gateway reports a validly-signed total that does not match what we
	// quoted. Signed or not, the money is wrong.
	tampered := *intent
	tampered.TotalAmount = 4400
	data := signedCallback(t, &tampered, "COMPLETE")

	result := f.svc.Handle(context.Background(), data)

	assert.Equal(t, services.OutcomeFailure, result.Outcome)
	q := redirectQuery(t, result.RedirectURL)
	assert.Equal(t, domain.ErrCodeAmountMismatch, q.Get("reason"))
	assert.Equal(t, 0, f.bookings.Count())
	assert.Equal(t, 0, f.store.Len())
}

func TestCallback_AmountWithinTolerance(t *testing.T) {
	f := newCallbackFixture(false)
	vehicle := testVehicle()
	intent := testIntent(vehicle.ID, futureDate(10), futureDate(13), 4500)
	mustPut(t, f.store, intent)

	// Parsed-amount drift below the tolerance must not reject the payment.
	// The signature covers the raw string fields, so it stays valid.
	data := signedCallback(t, intent, "COMPLETE")
	data.TotalAmount = intent.TotalAmount + 0.009

	result := f.svc.Handle(context.Background(), data)
	assert.Equal(t, services.OutcomeSuccess, result.Outcome)
}

func TestCallback_CancelledDropsIntent(t *testing.T) {
	f := newCallbackFixture(false)
	vehicle := testVehicle()
	intent := testIntent(vehicle.ID, futureDate(10), futureDate(13), 4500)
	mustPut(t, f.store, intent)

	result := f.svc.Handle(context.Background(), signedCallback(t, intent, "CANCELED"))

	assert.Equal(t, services.OutcomeCancelled, result.Outcome)
	assert.True(t, strings.HasPrefix(result.RedirectURL, testPages.Cancelled))
	assert.Equal(t, 0, f.store.Len())
	assert.Equal(t, 0, f.bookings.Count())
}

func TestCallback_PendingKeepsIntent(t *testing.T) {
	f := newCallbackFixture(false)
	vehicle := testVehicle()
	intent := testIntent(vehicle.ID, futureDate(10), futureDate(13), 4500)
	mustPut(t, f.store, intent)

	result := f.svc.Handle(context.Background(), signedCallback(t, intent, "PENDING"))

	assert.Equal(t, services.OutcomePending, result.Outcome)
	assert.True(t, strings.HasPrefix(result.RedirectURL, testPages.Pending))
	assert.Equal(t, 1, f.store.Len())
}

func TestCallback_UnknownTransaction(t *testing.T) {
	f := newCallbackFixture(false)
	intent := testIntent("veh-x", futureDate(10), futureDate(13), 4500)
	// Never Put: simulates TTL expiry or a process restart.

	result := f.svc.Handle(context.Background(), signedCallback(t, intent, "COMPLETE"))

	assert.Equal(t, services.OutcomeFailure, result.Outcome)
	q := redirectQuery(t, result.RedirectURL)
	assert.Equal(t, domain.ErrCodeUnknownTransaction, q.Get("reason"))
}

func TestCallback_MissingTransactionID(t *testing.T) {
	f := newCallbackFixture(false)
	vehicle := testVehicle()
	intent := testIntent(vehicle.ID, futureDate(10), futureDate(13), 4500)
	mustPut(t, f.store, intent)

	data := signedCallback(t, intent, "COMPLETE")
	data.TransactionUUID = ""

	result := f.svc.Handle(context.Background(), data)

	assert.Equal(t, services.OutcomeFailure, result.Outcome)
	q := redirectQuery(t, result.RedirectURL)
	assert.Equal(t, domain.ErrCodeMissingTransactionID, q.Get("reason"))
	assert.Equal(t, 1, f.store.Len())
}

func TestCallback_AmountFallbackResolvesUniqueIntent(t *testing.T) {
	f := newCallbackFixture(true)
	vehicle := testVehicle()
	intent := testIntent(vehicle.ID, futureDate(10), futureDate(13), 4500)
	mustPut(t, f.store, intent)

	data := signedCallback(t, intent, "COMPLETE")
	data.TransactionUUID = ""

	result := f.svc.Handle(context.Background(), data)

	assert.Equal(t, services.OutcomeSuccess, result.Outcome)
	require.NotNil(t, result.Booking)
	assert.Equal(t, intent.TransactionID, result.Booking.TransactionID)
}

func TestCallback_AmountFallbackRefusesAmbiguousMatch(t *testing.T) {
	f := newCallbackFixture(true)
	intent1 := testIntent("veh-1", futureDate(10), futureDate(13), 4500)
	intent2 := testIntent("veh-2", futureDate(20), futureDate(23), 4500)
	mustPut(t, f.store, intent1)
	mustPut(t, f.store, intent2)

	data := signedCallback(t, intent1, "COMPLETE")
	data.TransactionUUID = ""

	result := f.svc.Handle(context.Background(), data)

	assert.Equal(t, services.OutcomeFailure, result.Outcome)
	assert.Equal(t, 0, f.bookings.Count())
	assert.Equal(t, 2, f.store.Len())
}

func TestCallback_CommitTimeConflict(t *testing.T) {
	// Two renters both passed the availability check and initiated payment
	// for the same vehicle window. The first payment wins at commit; the
	// second is rejected even though its money cleared at the gateway.
	f := newCallbackFixture(false)
	vehicle := testVehicle()

	intent1 := testIntent(vehicle.ID, futureDate(10), futureDate(13), 4500)
	intent2 := testIntent(vehicle.ID, futureDate(11), futureDate(14), 4500)
	mustPut(t, f.store, intent1)
	mustPut(t, f.store, intent2)

	first := f.svc.Handle(context.Background(), signedCallback(t, intent1, "COMPLETE"))
	second := f.svc.Handle(context.Background(), signedCallback(t, intent2, "COMPLETE"))

	assert.Equal(t, services.OutcomeSuccess, first.Outcome)
	assert.Equal(t, services.OutcomeFailure, second.Outcome)
	q := redirectQuery(t, second.RedirectURL)
	assert.Equal(t, domain.ErrCodeBookingConflictAtCommit, q.Get("reason"))

	assert.Equal(t, 1, f.bookings.Count())
	assert.Equal(t, 0, f.store.Len(), "the losing intent is terminally rejected")
}

func TestCallback_StorageFailureKeepsIntent(t *testing.T) {
	f := newCallbackFixture(false)
	vehicle := testVehicle()
	intent := testIntent(vehicle.ID, futureDate(10), futureDate(13), 4500)
	mustPut(t, f.store, intent)

	f.bookings.CreateConfirmedFn = func(ctx context.Context, b *domain.Booking) error {
		return errors.New("connection reset")
	}

	result := f.svc.Handle(context.Background(), signedCallback(t, intent, "COMPLETE"))

	assert.Equal(t, services.OutcomeFailure, result.Outcome)
	q := redirectQuery(t, result.RedirectURL)
	assert.Equal(t, application.ErrCodeInternal, q.Get("reason"))

	// The intent survives transient storage failures so reconciliation can
	// finish the job.
	assert.Equal(t, 1, f.store.Len())
}
