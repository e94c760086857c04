package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"testing"
	"time"
)

// storefrontURL returns the base URL of the storefront service under test.
// Override with STOREFRONT_URL when the stack runs somewhere other than
// localhost.
func storefrontURL() string {
	if v := os.Getenv("STOREFRONT_URL"); v != "" {
		return v
	}
	return "http://localhost:8010"
}

// uniqueUserID generates a unique user id to avoid collisions between runs.
func uniqueUserID(prefix string) string {
	return fmt.Sprintf("%s-%d-%d", prefix, time.Now().UnixNano(), rand.Intn(100000))
}

// skipIfNotRunning performs a quick health check against the storefront.
// If the service is unreachable, the test is skipped (not failed).
func skipIfNotRunning(t *testing.T) {
	t.Helper()
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(storefrontURL() + "/health/live")
	if err != nil {
		t.Skipf("storefront not reachable (Docker not running?): %v", err)
	}
	resp.Body.Close()
}

// doJSON performs an HTTP request with the X-User-ID header set, marshaling
// body as JSON when non-nil, and returns the status code and the decoded
// response body.
func doJSON(t *testing.T, method, path, userID string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, storefrontURL()+path, reader)
	if err != nil {
		t.Fatalf("create %s %s request: %v", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read %s %s response: %v", method, path, err)
	}

	var decoded map[string]any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			t.Fatalf("decode %s %s response %q: %v", method, path, raw, err)
		}
	}
	return resp.StatusCode, decoded
}

// requireStatus fails the test when the status code does not match.
func requireStatus(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Fatalf("expected status %d, got %d", want, got)
	}
}

// dataField extracts a field from the response's data envelope.
func dataField(t *testing.T, body map[string]any, field string) any {
	t.Helper()
	data, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatalf("response has no data object: %v", body)
	}
	return data[field]
}

// errorField extracts a field from the response's error fields map.
func errorField(t *testing.T, body map[string]any, field string) any {
	t.Helper()
	errObj, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("response has no error object: %v", body)
	}
	fields, ok := errObj["fields"].(map[string]any)
	if !ok {
		t.Fatalf("error has no fields map: %v", errObj)
	}
	return fields[field]
}
