// Package backend holds the REST clients for the storefront's upstream
// services: the product catalog, the order service, and the payment service.
// All calls go through the shared retrying HTTP client, usually wrapped in a
// circuit breaker.
package backend

import (
	"context"
	"net/http"
)

// Doer executes HTTP requests. Both httpclient.Client and
// httpclient.BreakerClient satisfy this.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}
