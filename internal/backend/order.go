package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/trovekart/storefront/internal/domain"
	"github.com/trovekart/storefront/pkg/httpclient"
)

// CreateOrderInput carries everything the order service needs to create an
// order: the item snapshot, the shipping address, the payment method, and the
// four computed price fields.
type CreateOrderInput struct {
	UserID          string            `json:"user_id"`
	Items           []domain.LineItem `json:"items"`
	ShippingAddress domain.Address    `json:"shipping_address"`
	PaymentMethod   string            `json:"payment_method"`
	Subtotal        int64             `json:"subtotal"`
	ShippingFee     int64             `json:"shipping_fee"`
	Tax             int64             `json:"tax"`
	GrandTotal      int64             `json:"grand_total"`
}

// OrderClient calls the order service.
type OrderClient struct {
	http    Doer
	baseURL string
}

// NewOrderClient creates an order client against the given base URL.
func NewOrderClient(http Doer, baseURL string) *OrderClient {
	return &OrderClient{http: http, baseURL: baseURL}
}

// CreateOrder submits the order and returns the created order ID.
func (c *OrderClient) CreateOrder(ctx context.Context, input CreateOrderInput) (string, error) {
	body, err := json.Marshal(input)
	if err != nil {
		return "", fmt.Errorf("marshal create order request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/orders", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return "", fmt.Errorf("call order service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", httpclient.ParseResponseError(resp, "order")
	}

	var envelope struct {
		Data struct {
			OrderID string `json:"order_id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return "", fmt.Errorf("decode order response: %w", err)
	}
	if envelope.Data.OrderID == "" {
		return "", fmt.Errorf("order service returned an empty order id")
	}

	return envelope.Data.OrderID, nil
}
