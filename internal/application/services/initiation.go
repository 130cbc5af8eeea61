package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/suyogshakya/rentwheels/internal/application"
	"github.com/suyogshakya/rentwheels/internal/config"
	"github.com/suyogshakya/rentwheels/internal/domain"
	"github.com/suyogshakya/rentwheels/internal/infrastructure/esewa"
)

// InitiateCommand is a renter's booking request.
type InitiateCommand struct {
	ResourceID    string
	StartDate     time.Time
	EndDate       time.Time
	Notes         string
	WithInsurance bool
}

// InitiationResult is everything the client needs to redirect the renter to
// the gateway: the form endpoint and the signed field set.
type InitiationResult struct {
	TransactionID string
	GatewayURL    string
	FormFields    map[string]string
}

// InitiationService validates a booking request, reserves a transaction UUID,
// parks the intent in the pending store, and computes the signed gateway
// redirect payload. Nothing is written to durable storage here: a Booking
// only comes into existence once the gateway confirms payment.
type InitiationService struct {
	availability *AvailabilityService
	resources    application.ResourceRepository
	licenses     application.LicenseRepository
	pending      application.PendingStore
	signer       *esewa.Signer
	esewaCfg     config.EsewaConfig
	bookingCfg   config.BookingConfig
	logger       *slog.Logger
}

func NewInitiationService(
	availability *AvailabilityService,
	resources application.ResourceRepository,
	licenses application.LicenseRepository,
	pending application.PendingStore,
	signer *esewa.Signer,
	esewaCfg config.EsewaConfig,
	bookingCfg config.BookingConfig,
	logger *slog.Logger,
) *InitiationService {
	return &InitiationService{
		availability: availability,
		resources:    resources,
		licenses:     licenses,
		pending:      pending,
		signer:       signer,
		esewaCfg:     esewaCfg,
		bookingCfg:   bookingCfg,
		logger:       logger,
	}
}

// Initiate runs the full pre-payment validation chain and returns the
// gateway redirect payload.
func (s *InitiationService) Initiate(ctx context.Context, cmd InitiateCommand, requesterID string) (*InitiationResult, error) {
	resource, err := s.resources.FindByID(ctx, cmd.ResourceID)
	if err != nil {
		return nil, err
	}
	if !resource.Bookable() {
		return nil, domain.NewResourceUnavailableError(resource.ID)
	}

	if resource.LicenseCategory != "" {
		held, err := s.licenses.HasValidLicense(ctx, requesterID, resource.LicenseCategory)
		if err != nil {
			return nil, application.NewInternalError(err)
		}
		if !held {
			return nil, domain.NewCredentialMissingError(resource.LicenseCategory)
		}
	}

	check, err := s.availability.Check(ctx, cmd.ResourceID, cmd.StartDate, cmd.EndDate)
	if err != nil {
		return nil, err
	}
	if !check.Available {
		return nil, domain.NewDateConflictError(resource.ID, check.BookedRanges)
	}

	r, err := domain.NewDateRange(cmd.StartDate, cmd.EndDate)
	if err != nil {
		return nil, err
	}

	totalDays := r.Days()
	totalAmount := resource.UnitPrice * float64(totalDays)
	if cmd.WithInsurance {
		totalAmount += s.bookingCfg.InsuranceFee
	}
	if totalAmount < s.esewaCfg.MinAmount {
		return nil, domain.NewInvalidAmountError(
			fmt.Sprintf("total %.2f is below the gateway minimum of %.2f", totalAmount, s.esewaCfg.MinAmount))
	}

	intent := &domain.BookingIntent{
		TransactionID: uuid.New().String(),
		RequesterID:   requesterID,
		ResourceID:    resource.ID,
		StartDate:     r.Start,
		EndDate:       r.End,
		TotalDays:     totalDays,
		UnitPrice:     resource.UnitPrice,
		TotalAmount:   totalAmount,
		Notes:         cmd.Notes,
		WithInsurance: cmd.WithInsurance,
		CreatedAt:     time.Now(),
	}
	if err := s.pending.Put(ctx, intent); err != nil {
		return nil, application.NewInternalError(err)
	}

	fields, err := s.buildFormFields(intent)
	if err != nil {
		// Roll the reservation back so a retry starts clean.
		_ = s.pending.Delete(ctx, intent.TransactionID)
		return nil, application.NewInternalError(err)
	}

	s.logger.Info("payment initiated",
		"transaction_id", intent.TransactionID,
		"resource_id", intent.ResourceID,
		"requester_id", requesterID,
		"total_amount", intent.TotalAmount,
	)

	return &InitiationResult{
		TransactionID: intent.TransactionID,
		GatewayURL:    s.esewaCfg.FormURL,
		FormFields:    fields,
	}, nil
}

// buildFormFields assembles the gateway form payload. The signature covers
// {total_amount, transaction_uuid, product_code} in exactly that order; the
// order is part of the gateway contract.
func (s *InitiationService) buildFormFields(intent *domain.BookingIntent) (map[string]string, error) {
	total := esewa.FormatAmount(intent.TotalAmount)

	fields := map[string]string{
		"amount":                  total,
		"tax_amount":              "0",
		"total_amount":            total,
		"transaction_uuid":        intent.TransactionID,
		"product_code":            s.esewaCfg.ProductCode,
		"product_service_charge":  "0",
		"product_delivery_charge": "0",
		"success_url":             s.esewaCfg.SuccessURL,
		"failure_url":             s.esewaCfg.FailureURL,
		"signed_field_names":      "total_amount,transaction_uuid,product_code",
	}

	signature, err := s.signer.SignFields(esewa.SignedFieldOrder, func(name string) (string, bool) {
		v, ok := fields[name]
		return v, ok
	})
	if err != nil {
		return nil, err
	}
	fields["signature"] = signature
	return fields, nil
}
