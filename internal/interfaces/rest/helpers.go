// Package rest holds the HTTP response envelope shared by handlers and
// middleware.
package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/suyogshakya/rentwheels/internal/application"
	"github.com/suyogshakya/rentwheels/internal/domain"
)

type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// WriteJSON writes a success payload.
func WriteJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

// WriteError maps application and domain errors to HTTP responses.
func WriteError(w http.ResponseWriter, err error, logger *slog.Logger) {
	statusCode := application.ToHTTPStatus(err)
	errorCode := application.ToErrorCode(err)

	if statusCode >= http.StatusInternalServerError {
		logger.Error("request failed", "code", errorCode, "error", err)
	}

	detail := ErrorDetail{
		Code:    errorCode,
		Message: err.Error(),
	}
	if domErr, ok := domain.AsDomainError(err); ok && len(domErr.ConflictingRanges) > 0 {
		detail.Details = map[string]any{"bookedRanges": RangesToAPI(domErr.ConflictingRanges)}
	}

	WriteJSON(w, statusCode, ErrorResponse{Success: false, Error: detail})
}

// APIRange is a date range rendered for clients.
type APIRange struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// RangesToAPI formats date ranges as yyyy-mm-dd pairs.
func RangesToAPI(ranges []domain.DateRange) []APIRange {
	out := make([]APIRange, 0, len(ranges))
	for _, r := range ranges {
		out = append(out, APIRange{
			StartDate: r.Start.Format("2006-01-02"),
			EndDate:   r.End.Format("2006-01-02"),
		})
	}
	return out
}
