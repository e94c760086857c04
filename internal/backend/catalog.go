package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/trovekart/storefront/pkg/httpclient"
)

// Product is the catalog's view of a product: the authoritative price and
// stock snapshot taken whenever an item is added to a cart or staged for
// buy-now.
type Product struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Price  int64    `json:"price"`
	Stock  int      `json:"stock"`
	Images []string `json:"images"`
}

// CatalogClient calls the product catalog service.
type CatalogClient struct {
	http    Doer
	baseURL string
}

// NewCatalogClient creates a catalog client against the given base URL.
func NewCatalogClient(http Doer, baseURL string) *CatalogClient {
	return &CatalogClient{http: http, baseURL: baseURL}
}

// GetProduct fetches a product by ID.
func (c *CatalogClient) GetProduct(ctx context.Context, productID string) (*Product, error) {
	reqURL := c.baseURL + "/api/v1/products/" + url.PathEscape(productID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create product request: %w", err)
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("call catalog service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, httpclient.ParseResponseError(resp, "catalog")
	}

	var envelope struct {
		Data *Product `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode product response: %w", err)
	}
	if envelope.Data == nil {
		return nil, fmt.Errorf("catalog returned an empty product body")
	}

	return envelope.Data, nil
}
