package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a business rule violation.
type DomainError struct {
	Code    string
	Message string
	Err     error

	// ConflictingRanges is populated on DATE_CONFLICT so callers can show
	// the renter which windows are taken.
	ConflictingRanges []DateRange
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *DomainError) Unwrap() error {
	return e.Err
}

const (
	ErrCodeInvalidDateRange        = "INVALID_DATE_RANGE"
	ErrCodeDateConflict            = "DATE_CONFLICT"
	ErrCodeResourceUnavailable     = "RESOURCE_UNAVAILABLE"
	ErrCodeCredentialMissing       = "CREDENTIAL_MISSING"
	ErrCodeInvalidAmount           = "INVALID_AMOUNT"
	ErrCodeMissingTransactionID    = "MISSING_TRANSACTION_ID"
	ErrCodeUnknownTransaction      = "UNKNOWN_TRANSACTION"
	ErrCodeSignatureInvalid        = "SIGNATURE_INVALID"
	ErrCodeAmountMismatch          = "AMOUNT_MISMATCH"
	ErrCodeBookingConflictAtCommit = "BOOKING_CONFLICT_AT_COMMIT"
	ErrCodeGatewayUnreachable      = "GATEWAY_UNREACHABLE"
	ErrCodeBookingNotFound         = "BOOKING_NOT_FOUND"
	ErrCodeInvalidTransition       = "INVALID_TRANSITION"
)

// AsDomainError unwraps err into a DomainError if one is in the chain.
func AsDomainError(err error) (*DomainError, bool) {
	var e *DomainError
	ok := errors.As(err, &e)
	return e, ok
}

// HasCode reports whether err is a DomainError carrying the given code.
func HasCode(err error, code string) bool {
	e, ok := AsDomainError(err)
	return ok && e.Code == code
}

func NewInvalidDateRangeError(msg string) *DomainError {
	return &DomainError{Code: ErrCodeInvalidDateRange, Message: msg}
}

func NewDateConflictError(resourceID string, conflicts []DateRange) *DomainError {
	return &DomainError{
		Code:              ErrCodeDateConflict,
		Message:           fmt.Sprintf("resource %s is already booked for the requested dates", resourceID),
		ConflictingRanges: conflicts,
	}
}

func NewResourceUnavailableError(resourceID string) *DomainError {
	return &DomainError{
		Code:    ErrCodeResourceUnavailable,
		Message: fmt.Sprintf("resource %s is not available for booking", resourceID),
	}
}

func NewCredentialMissingError(category string) *DomainError {
	return &DomainError{
		Code:    ErrCodeCredentialMissing,
		Message: fmt.Sprintf("a valid %s license is required for this booking", category),
	}
}

func NewInvalidAmountError(msg string) *DomainError {
	return &DomainError{Code: ErrCodeInvalidAmount, Message: msg}
}

func NewMissingTransactionIDError() *DomainError {
	return &DomainError{
		Code:    ErrCodeMissingTransactionID,
		Message: "callback payload carries no transaction identifier",
	}
}

func NewUnknownTransactionError(transactionID string) *DomainError {
	return &DomainError{
		Code:    ErrCodeUnknownTransaction,
		Message: fmt.Sprintf("no pending intent for transaction %s", transactionID),
	}
}

func NewSignatureInvalidError() *DomainError {
	return &DomainError{Code: ErrCodeSignatureInvalid, Message: "gateway signature verification failed"}
}

func NewAmountMismatchError(reported, expected float64) *DomainError {
	return &DomainError{
		Code:    ErrCodeAmountMismatch,
		Message: fmt.Sprintf("gateway reported %.2f but intent holds %.2f", reported, expected),
	}
}

func NewBookingConflictError(resourceID string) *DomainError {
	return &DomainError{
		Code:    ErrCodeBookingConflictAtCommit,
		Message: fmt.Sprintf("resource %s was booked by a competing transaction", resourceID),
	}
}

func NewGatewayUnreachableError(err error) *DomainError {
	return &DomainError{
		Code:    ErrCodeGatewayUnreachable,
		Message: "payment gateway could not be reached",
		Err:     err,
	}
}

func NewBookingNotFoundError(id string) *DomainError {
	return &DomainError{
		Code:    ErrCodeBookingNotFound,
		Message: fmt.Sprintf("booking %s not found", id),
	}
}

func NewInvalidTransitionError(from, to BookingStatus) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidTransition,
		Message: fmt.Sprintf("cannot transition from %s to %s", from, to),
	}
}
