package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/trovekart/storefront/pkg/httpclient"
)

// PaymentSession is the token pair handed to the client for the external
// payment redirect.
type PaymentSession struct {
	SessionToken string `json:"session_token"`
	PublicKey    string `json:"public_key"`
}

// PaymentClient calls the payment service.
type PaymentClient struct {
	http    Doer
	baseURL string
}

// NewPaymentClient creates a payment client against the given base URL.
func NewPaymentClient(http Doer, baseURL string) *PaymentClient {
	return &PaymentClient{http: http, baseURL: baseURL}
}

// CreateSession requests a payment session for the given order.
func (c *PaymentClient) CreateSession(ctx context.Context, orderID string) (*PaymentSession, error) {
	body, err := json.Marshal(map[string]string{"order_id": orderID})
	if err != nil {
		return nil, fmt.Errorf("marshal payment session request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/payment-sessions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create payment session request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("call payment service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, httpclient.ParseResponseError(resp, "payment")
	}

	var envelope struct {
		Data *PaymentSession `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode payment session response: %w", err)
	}
	if envelope.Data == nil || envelope.Data.SessionToken == "" {
		return nil, fmt.Errorf("payment service returned an empty session")
	}

	return envelope.Data, nil
}
