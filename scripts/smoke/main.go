// Package main implements a standalone smoke script that walks a complete
// shopper journey through a running storefront stack: add to cart, review
// totals, submit the shipping address and payment method, and place a
// cash-on-delivery order. It exits non-zero on the first failed step, which
// makes it usable as a deploy gate.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"
)

// --------------------------------------------------------------------------
// Configuration helpers
// --------------------------------------------------------------------------

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// --------------------------------------------------------------------------
// HTTP helpers
// --------------------------------------------------------------------------

var client = &http.Client{Timeout: 10 * time.Second}

func doJSON(method, url, userID string, body any) (int, map[string]any, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("marshal body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", userID)

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	var result map[string]any
	if len(respBody) > 0 {
		if err := json.Unmarshal(respBody, &result); err != nil {
			return resp.StatusCode, nil, fmt.Errorf("unmarshal response %q: %w", respBody, err)
		}
	}
	return resp.StatusCode, result, nil
}

func mustStep(name string, wantStatus, gotStatus int, body map[string]any, err error) map[string]any {
	if err != nil {
		log.Fatalf("%s: %v", name, err)
	}
	if gotStatus != wantStatus {
		log.Fatalf("%s: expected status %d, got %d (body: %v)", name, wantStatus, gotStatus, body)
	}
	log.Printf("%s: ok", name)
	return body
}

func data(body map[string]any, field string) any {
	if d, ok := body["data"].(map[string]any); ok {
		return d[field]
	}
	return nil
}

// --------------------------------------------------------------------------
// Shopper journey
// --------------------------------------------------------------------------

func main() {
	base := getEnv("STOREFRONT_URL", "http://localhost:8010")
	productID := getEnv("SEED_PRODUCT_ID", "prod-1")
	userID := fmt.Sprintf("smoke-%d", time.Now().UnixNano())

	log.Printf("smoke run against %s as %s", base, userID)

	resp, err := client.Get(base + "/health/ready")
	if err != nil {
		log.Fatalf("storefront not reachable: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Fatalf("storefront not ready: status %d", resp.StatusCode)
	}

	status, body, err := doJSON(http.MethodPost, base+"/api/v1/cart/items", userID,
		map[string]any{"product_id": productID, "quantity": 2})
	mustStep("add to cart", http.StatusOK, status, body, err)

	status, body, err = doJSON(http.MethodGet, base+"/api/v1/cart", userID, nil)
	body = mustStep("view cart", http.StatusOK, status, body, err)
	if totals, ok := data(body, "totals").(map[string]any); ok {
		log.Printf("cart grand total: %v", totals["grand_total"])
	}

	status, body, err = doJSON(http.MethodPost, base+"/api/v1/checkout/shipping", userID, map[string]any{
		"name":         "Smoke Tester",
		"email":        "smoke@test.example.com",
		"phone":        "+911234567890",
		"address_line": "1 Smoke Lane",
		"city":         "Bengaluru",
		"postal_code":  "560001",
		"country":      "India",
	})
	mustStep("submit shipping", http.StatusOK, status, body, err)

	status, body, err = doJSON(http.MethodPost, base+"/api/v1/checkout/payment", userID,
		map[string]any{"payment_method": "cash_on_delivery"})
	mustStep("submit payment", http.StatusOK, status, body, err)

	status, body, err = doJSON(http.MethodPost, base+"/api/v1/checkout/order", userID, nil)
	body = mustStep("place order", http.StatusCreated, status, body, err)
	log.Printf("order placed: %v (%v)", data(body, "order_id"), data(body, "status"))

	status, body, err = doJSON(http.MethodGet, base+"/api/v1/cart", userID, nil)
	body = mustStep("verify cart cleared", http.StatusOK, status, body, err)
	if cart, ok := data(body, "cart").(map[string]any); ok {
		if items, _ := cart["items"].([]any); len(items) != 0 {
			log.Fatalf("cart not cleared after order: %v", items)
		}
	}

	log.Print("smoke run passed")
}
