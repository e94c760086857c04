package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for the common failure classes.
var (
	ErrNotFound            = errors.New("resource not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrConflict            = errors.New("conflict")
	ErrStockExceeded       = errors.New("stock exceeded")
	ErrPrerequisiteMissing = errors.New("prerequisite missing")
	ErrPaymentRedirect     = errors.New("payment redirect failed")
	ErrServiceUnavail      = errors.New("service unavailable")
	ErrInternal            = errors.New("internal error")
)

// AppError is a structured application error with an HTTP status mapping.
// Fields carries machine-readable detail (e.g. the step to redirect to when a
// checkout prerequisite is missing).
type AppError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	Status  int               `json:"-"`
	Err     error             `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound creates a 404 error.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s with id %s not found", resource, id),
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// InvalidInput creates a 400 error.
func InvalidInput(message string) *AppError {
	return &AppError{
		Code:    "INVALID_INPUT",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// Conflict creates a 409 error.
func Conflict(message string) *AppError {
	return &AppError{
		Code:    "CONFLICT",
		Message: message,
		Status:  http.StatusConflict,
		Err:     ErrConflict,
	}
}

// StockExceeded creates a 409 error for a quantity above the available stock
// snapshot. The cart state is guaranteed unchanged when this is returned.
func StockExceeded(productID string, requested, available int) *AppError {
	return &AppError{
		Code:    "STOCK_EXCEEDED",
		Message: fmt.Sprintf("requested quantity %d exceeds available stock %d for product %s", requested, available, productID),
		Fields: map[string]string{
			"product_id": productID,
		},
		Status: http.StatusConflict,
		Err:    ErrStockExceeded,
	}
}

// PrerequisiteMissing creates a 412 error for entering a checkout step without
// the required prior state. redirectTo names the step (or "catalog") the
// client should navigate back to.
func PrerequisiteMissing(redirectTo, message string) *AppError {
	return &AppError{
		Code:    "PREREQUISITE_MISSING",
		Message: message,
		Fields: map[string]string{
			"redirect_to": redirectTo,
		},
		Status: http.StatusPreconditionFailed,
		Err:    ErrPrerequisiteMissing,
	}
}

// PaymentRedirectFailed creates a 502 error for a payment handoff that could
// not be initiated. The order already exists server-side in an unpaid state,
// so the order id is included for the client to resume from.
func PaymentRedirectFailed(orderID string, err error) *AppError {
	return &AppError{
		Code:    "PAYMENT_REDIRECT_FAILED",
		Message: fmt.Sprintf("order %s was created but the payment session could not be started", orderID),
		Fields: map[string]string{
			"order_id": orderID,
		},
		Status: http.StatusBadGateway,
		Err:    fmt.Errorf("%w: %w", ErrPaymentRedirect, err),
	}
}

// ServiceUnavailable creates a 503 error.
func ServiceUnavailable(message string) *AppError {
	return &AppError{
		Code:    "SERVICE_UNAVAILABLE",
		Message: message,
		Status:  http.StatusServiceUnavailable,
		Err:     ErrServiceUnavail,
	}
}

// Internal creates a 500 error.
func Internal(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// HTTPStatus returns the HTTP status code for the given error.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrConflict), errors.Is(err, ErrStockExceeded):
		return http.StatusConflict
	case errors.Is(err, ErrPrerequisiteMissing):
		return http.StatusPreconditionFailed
	case errors.Is(err, ErrPaymentRedirect):
		return http.StatusBadGateway
	case errors.Is(err, ErrServiceUnavail):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
