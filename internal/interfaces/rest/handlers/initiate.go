package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/suyogshakya/rentwheels/internal/application"
	"github.com/suyogshakya/rentwheels/internal/application/services"
	"github.com/suyogshakya/rentwheels/internal/interfaces/rest"
)

type initiateRequest struct {
	ResourceID    string `json:"resourceId"`
	StartDate     string `json:"startDate"`
	EndDate       string `json:"endDate"`
	Notes         string `json:"notes,omitempty"`
	WithInsurance bool   `json:"withInsurance,omitempty"`
}

type initiateResponse struct {
	TransactionID string            `json:"transactionId"`
	GatewayURL    string            `json:"gatewayUrl"`
	FormFields    map[string]string `json:"formFields"`
}

// InitiatePayment answers POST /payments/initiate. The caller's identity
// arrives in the X-Requester-ID header; production deployments put an auth
// proxy in front that sets it.
func (h *Handlers) InitiatePayment(w http.ResponseWriter, r *http.Request) {
	requesterID := r.Header.Get("X-Requester-ID")
	if requesterID == "" {
		rest.WriteError(w, application.NewInvalidInputError("X-Requester-ID header is required"), h.logger)
		return
	}

	var req initiateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rest.WriteError(w, application.NewInvalidInputError("invalid JSON body"), h.logger)
		return
	}
	if req.ResourceID == "" {
		rest.WriteError(w, application.NewInvalidInputError("resourceId is required"), h.logger)
		return
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		rest.WriteError(w, application.NewInvalidInputError("startDate must be yyyy-mm-dd"), h.logger)
		return
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		rest.WriteError(w, application.NewInvalidInputError("endDate must be yyyy-mm-dd"), h.logger)
		return
	}

	result, err := h.initiation.Initiate(r.Context(), services.InitiateCommand{
		ResourceID:    req.ResourceID,
		StartDate:     startDate,
		EndDate:       endDate,
		Notes:         req.Notes,
		WithInsurance: req.WithInsurance,
	}, requesterID)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusOK, initiateResponse{
		TransactionID: result.TransactionID,
		GatewayURL:    result.GatewayURL,
		FormFields:    result.FormFields,
	})
}
