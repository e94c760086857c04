package http

import (
	"log/slog"
	"net/http"

	"github.com/trovekart/storefront/internal/service"
	"github.com/trovekart/storefront/pkg/httputil"
)

// OrderHandler handles HTTP requests for order placement.
type OrderHandler struct {
	service *service.OrderService
	logger  *slog.Logger
}

// NewOrderHandler creates a new order HTTP handler.
func NewOrderHandler(svc *service.OrderService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		service: svc,
		logger:  logger,
	}
}

// PlaceOrder handles POST /api/v1/checkout/order
//
// The request carries no body. Everything the order needs is read from the
// persisted checkout state and re-validated server-side.
func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		httputil.WriteJSON(w, http.StatusUnauthorized, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "UNAUTHORIZED", Message: "authentication required"},
		})
		return
	}

	result, err := h.service.PlaceOrder(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: result})
}
