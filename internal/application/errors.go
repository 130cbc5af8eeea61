package application

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/suyogshakya/rentwheels/internal/domain"
)

// ServiceError is an orchestration-level failure with an HTTP mapping.
type ServiceError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

const (
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeInvalidInput = "INVALID_INPUT"
)

func NewInternalError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeInternal,
		Message:    "An internal error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func NewInvalidInputError(msg string) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeInvalidInput,
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
	}
}

func IsServiceError(err error) (*ServiceError, bool) {
	var svcErr *ServiceError
	ok := errors.As(err, &svcErr)
	return svcErr, ok
}

// ToHTTPStatus maps an error to the status code the REST layer answers with.
func ToHTTPStatus(err error) int {
	if svcErr, ok := IsServiceError(err); ok {
		return svcErr.HTTPStatus
	}

	if domErr, ok := domain.AsDomainError(err); ok {
		switch domErr.Code {
		case domain.ErrCodeInvalidDateRange,
			domain.ErrCodeInvalidAmount,
			domain.ErrCodeMissingTransactionID:
			return http.StatusBadRequest
		case domain.ErrCodeCredentialMissing:
			return http.StatusForbidden
		case domain.ErrCodeResourceUnavailable,
			domain.ErrCodeUnknownTransaction,
			domain.ErrCodeBookingNotFound:
			return http.StatusNotFound
		case domain.ErrCodeDateConflict,
			domain.ErrCodeBookingConflictAtCommit,
			domain.ErrCodeInvalidTransition:
			return http.StatusConflict
		case domain.ErrCodeSignatureInvalid,
			domain.ErrCodeAmountMismatch:
			return http.StatusUnprocessableEntity
		case domain.ErrCodeGatewayUnreachable:
			return http.StatusBadGateway
		}
	}

	return http.StatusInternalServerError
}

// ToErrorCode extracts the machine-readable code carried by the error.
func ToErrorCode(err error) string {
	if svcErr, ok := IsServiceError(err); ok {
		return svcErr.Code
	}
	if domErr, ok := domain.AsDomainError(err); ok {
		return domErr.Code
	}
	return ErrCodeInternal
}
