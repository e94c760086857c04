package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/trovekart/storefront/pkg/errors"
)

// backendErrorBody mirrors the standard error envelope returned by the
// storefront's backend services.
type backendErrorBody struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ParseResponseError reads the body of a non-2xx response and translates it
// into an AppError, preserving the backend's code and message when the body
// matches the standard envelope. The body is fully consumed and closed.
func ParseResponseError(resp *http.Response, backendName string) error {
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s returned status %d (failed to read body: %w)", backendName, resp.StatusCode, err)
	}

	var backend backendErrorBody
	if json.Unmarshal(bodyBytes, &backend) == nil && backend.Error != nil {
		return mapBackendError(resp.StatusCode, backend.Error.Code, backend.Error.Message, backendName)
	}

	return fmt.Errorf("%s returned status %d: %s", backendName, resp.StatusCode, string(bodyBytes))
}

func mapBackendError(status int, code, message, backendName string) error {
	qualified := fmt.Sprintf("%s: %s", backendName, message)

	switch {
	case status == http.StatusNotFound:
		return apperrors.NotFound(backendName, message)
	case status == http.StatusBadRequest:
		return apperrors.InvalidInput(qualified)
	case status == http.StatusConflict:
		return apperrors.Conflict(qualified)
	case status == http.StatusServiceUnavailable:
		return apperrors.ServiceUnavailable(qualified)
	case status >= 500:
		return fmt.Errorf("%s server error (%d/%s): %s", backendName, status, code, message)
	default:
		return &apperrors.AppError{
			Code:    code,
			Message: qualified,
			Status:  status,
		}
	}
}
