package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ocanamx/salud-rural/backend/internal/config"
	"github.com/ocanamx/salud-rural/backend/internal/service/tools"
)

// Client posts charges to the configured pharmacy payment endpoint.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

// NewClient builds the payment client. The HTTP timeout bounds the whole
// charge round trip.
func NewClient(cfg config.PaymentConfig) *Client {
	return &Client{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		http:     &http.Client{Timeout: 15 * time.Second},
	}
}

type chargePayload struct {
	PatientID     string  `json:"patient_id"`
	Medication    string  `json:"medication"`
	Amount        float64 `json:"amount"`
	PaymentMethod string  `json:"payment_method"`
}

type chargeConfirmation struct {
	TransactionID string `json:"transaction_id"`
}

// Charge sends the payment request and returns the confirmation reference.
func (c *Client) Charge(ctx context.Context, req tools.ChargeRequest) (string, error) {
	if c.endpoint == "" {
		return "", fmt.Errorf("payment endpoint not configured")
	}

	body, err := json.Marshal(chargePayload{
		PatientID:     req.PatientID,
		Medication:    req.Medication,
		Amount:        req.Amount,
		PaymentMethod: "PayRetailers",
	})
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("payment request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("payment endpoint returned status %d", resp.StatusCode)
	}

	var confirmation chargeConfirmation
	if err := json.NewDecoder(resp.Body).Decode(&confirmation); err != nil {
		return "", fmt.Errorf("failed to decode payment confirmation: %w", err)
	}
	if confirmation.TransactionID == "" {
		return "", fmt.Errorf("payment confirmation missing transaction id")
	}
	return confirmation.TransactionID, nil
}
