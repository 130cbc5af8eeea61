package services_test

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/suyogshakya/rentwheels/internal/application"
	"github.com/suyogshakya/rentwheels/internal/config"
	"github.com/suyogshakya/rentwheels/internal/domain"
	"github.com/suyogshakya/rentwheels/internal/infrastructure/esewa"
	"github.com/suyogshakya/rentwheels/internal/infrastructure/pending"
)

const testSecret = "8gBm/:&EnhH.1/q"

var testPages = config.PagesConfig{
	Success:   "https://app.example.com/pay/success",
	Failure:   "https://app.example.com/pay/failure",
	Cancelled: "https://app.example.com/pay/cancelled",
	Pending:   "https://app.example.com/pay/pending",
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// futureDate returns a UTC midnight date the given number of days from now.
func futureDate(days int) time.Time {
	return time.Now().UTC().AddDate(0, 0, days).Truncate(24 * time.Hour)
}

func testVehicle() *domain.Resource {
	return &domain.Resource{
		ID:        "veh-" + uuid.New().String(),
		Kind:      domain.ResourceVehicle,
		Name:      "Honda Shine 125",
		UnitPrice: 1500,
		Stock:     1,
		Approved:  true,
	}
}

func testPart(stock int) *domain.Resource {
	return &domain.Resource{
		ID:        "part-" + uuid.New().String(),
		Kind:      domain.ResourcePart,
		Name:      "Roof carrier",
		UnitPrice: 300,
		Stock:     stock,
		Approved:  true,
	}
}

func testIntent(resourceID string, start, end time.Time, totalAmount float64) *domain.BookingIntent {
	return &domain.BookingIntent{
		TransactionID: uuid.New().String(),
		RequesterID:   "user-1",
		ResourceID:    resourceID,
		StartDate:     start,
		EndDate:       end,
		TotalDays:     int(end.Sub(start).Hours() / 24),
		UnitPrice:     totalAmount / (end.Sub(start).Hours() / 24),
		TotalAmount:   totalAmount,
		CreatedAt:     time.Now(),
	}
}

func seedBooking(repo *application.MockBookingRepository, resourceID string, start, end time.Time, status domain.BookingStatus) *domain.Booking {
	b := &domain.Booking{
		ID:            uuid.New(),
		RequesterID:   "other-user",
		ResourceID:    resourceID,
		StartDate:     start,
		EndDate:       end,
		TotalDays:     int(end.Sub(start).Hours() / 24),
		UnitPrice:     1500,
		TotalAmount:   1500 * end.Sub(start).Hours() / 24,
		PaymentStatus: domain.PaymentPaid,
		BookingStatus: status,
		TransactionID: uuid.New().String(),
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	repo.Seed(b)
	return b
}

// signedCallback builds a COMPLETE callback payload carrying a genuine
// gateway signature over the delivered fields.
func signedCallback(t *testing.T, intent *domain.BookingIntent, status string) *esewa.CallbackData {
	t.Helper()
	fields := map[string]string{
		"transaction_code":   "000AWEO",
		"status":             status,
		"total_amount":       esewa.FormatAmount(intent.TotalAmount),
		"transaction_uuid":   intent.TransactionID,
		"product_code":       "EPAYTEST",
		"ref_id":             "REF-" + intent.TransactionID[:8],
		"signed_field_names": "transaction_code,status,total_amount,transaction_uuid,product_code,signed_field_names",
	}
	signer := esewa.NewSigner(testSecret)
	sig, err := signer.SignFields(
		strings.Split(fields["signed_field_names"], ","),
		func(name string) (string, bool) {
			v, ok := fields[name]
			return v, ok
		},
	)
	require.NoError(t, err)
	fields["signature"] = sig

	values := url.Values{}
	for k, v := range fields {
		values.Set(k, v)
	}
	data, err := esewa.DecodeValues(values)
	require.NoError(t, err)
	return data
}

func mustPut(t *testing.T, store *pending.MemoryStore, intent *domain.BookingIntent) {
	t.Helper()
	require.NoError(t, store.Put(context.Background(), intent))
}

func redirectQuery(t *testing.T, rawURL string) url.Values {
	t.Helper()
	u, err := url.Parse(rawURL)
	require.NoError(t, err)
	return u.Query()
}
