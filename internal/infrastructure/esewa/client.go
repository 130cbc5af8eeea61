package esewa

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/suyogshakya/rentwheels/internal/config"
	"github.com/suyogshakya/rentwheels/internal/domain"
)

// Gateway status values returned by the transaction status endpoint.
const (
	StatusComplete      = "COMPLETE"
	StatusPending       = "PENDING"
	StatusCanceled      = "CANCELED"
	StatusFailure       = "FAILURE"
	StatusFullRefund    = "FULL_REFUND"
	StatusPartialRefund = "PARTIAL_REFUND"
	StatusNotFound      = "NOT_FOUND"
)

// StatusResponse is the gateway's answer to a status query.
type StatusResponse struct {
	Status string `json:"status"`
	RefID  string `json:"ref_id"`
}

// Client queries the eSewa transaction status endpoint.
type Client struct {
	statusURL   string
	productCode string
	httpClient  *http.Client
}

func NewClient(cfg config.EsewaConfig) *Client {
	return &Client{
		statusURL:   cfg.StatusURL,
		productCode: cfg.ProductCode,
		httpClient: &http.Client{
			Timeout: cfg.ConnTimeout,
		},
	}
}

// CheckStatus asks the gateway for the authoritative state of a transaction.
// Transport failures surface as GATEWAY_UNREACHABLE; the caller is expected
// to retry by polling again.
func (c *Client) CheckStatus(ctx context.Context, transactionID string, totalAmount float64) (*StatusResponse, error) {
	query := url.Values{}
	query.Set("product_code", c.productCode)
	query.Set("total_amount", FormatAmount(totalAmount))
	query.Set("transaction_uuid", transactionID)

	reqURL := c.statusURL + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build status request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.NewGatewayUnreachableError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, domain.NewGatewayUnreachableError(
			fmt.Errorf("status endpoint returned %d: %s", resp.StatusCode, string(body)))
	}

	var statusResp StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&statusResp); err != nil {
		return nil, domain.NewGatewayUnreachableError(fmt.Errorf("decode status response: %w", err))
	}

	return &statusResp, nil
}
