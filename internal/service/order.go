package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/trovekart/storefront/internal/backend"
	"github.com/trovekart/storefront/internal/domain"
	"github.com/trovekart/storefront/internal/event"
	"github.com/trovekart/storefront/internal/pricing"
	apperrors "github.com/trovekart/storefront/pkg/errors"
)

// Order result statuses.
const (
	OrderStatusConfirmed      = "confirmed"
	OrderStatusPaymentPending = "payment_pending"
)

var ordersPlacedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "storefront_orders_placed_total",
		Help: "Total number of orders successfully created, by payment method",
	},
	[]string{"payment_method"},
)

// OrderCreator submits orders to the order backend. Satisfied by
// backend.OrderClient.
type OrderCreator interface {
	CreateOrder(ctx context.Context, input backend.CreateOrderInput) (string, error)
}

// PaymentSessionCreator obtains payment sessions from the payment backend.
// Satisfied by backend.PaymentClient.
type PaymentSessionCreator interface {
	CreateSession(ctx context.Context, orderID string) (*backend.PaymentSession, error)
}

// OrderEvents publishes order domain events. Satisfied by event.Producer.
type OrderEvents interface {
	OrderPlaced(ctx context.Context, data event.OrderPlacedData) error
}

// OrderResult is the outcome of a successful order placement. PaymentSession
// is set only for the online-card method; the client uses it to hand off to
// the external payment redirect.
type OrderResult struct {
	OrderID        string                  `json:"order_id"`
	Status         string                  `json:"status"`
	Totals         domain.Totals           `json:"totals"`
	PaymentSession *backend.PaymentSession `json:"payment_session,omitempty"`
}

// OrderService orchestrates the final order submission: it re-validates the
// checkout prerequisites, creates the order on the backend, and branches on
// the payment method.
type OrderService struct {
	checkout *CheckoutService
	cart     *CartService
	orders   OrderCreator
	payments PaymentSessionCreator
	events   OrderEvents
	calc     pricing.Calculator
	logger   *slog.Logger
}

// NewOrderService creates an order service.
func NewOrderService(
	checkout *CheckoutService,
	cart *CartService,
	orders OrderCreator,
	payments PaymentSessionCreator,
	events OrderEvents,
	calc pricing.Calculator,
	logger *slog.Logger,
) *OrderService {
	return &OrderService{
		checkout: checkout,
		cart:     cart,
		orders:   orders,
		payments: payments,
		events:   events,
		calc:     calc,
		logger:   logger,
	}
}

// PlaceOrder submits the order built from the user's checkout state.
//
// Preconditions (staged items, shipping address, payment method) are checked
// locally first; a violation redirects to the missing step without calling
// the backend. Order creation failure aborts before any payment-session
// request and leaves cart and checkout state untouched so the user can retry
// without re-entering data.
//
// On success the branches differ: cash-on-delivery clears the cart (or the
// buy-now item) immediately; online-card keeps the cart until payment
// completion is confirmed externally, and a payment-session failure after
// order creation is surfaced as a distinct error since the order already
// exists unpaid server-side.
func (s *OrderService) PlaceOrder(ctx context.Context, userID string) (*OrderResult, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}

	state, err := s.checkout.State(ctx, userID)
	if err != nil {
		return nil, err
	}

	items, buyNow, err := s.checkout.OrderItems(ctx, state)
	if err != nil {
		return nil, err
	}

	if len(items) == 0 {
		return nil, apperrors.PrerequisiteMissing(domain.RedirectCatalog, "nothing is staged for checkout")
	}
	if state.ShippingAddress == nil {
		return nil, apperrors.PrerequisiteMissing(string(domain.StepShipping), "shipping address must be provided first")
	}
	if state.PaymentMethod == "" {
		return nil, apperrors.PrerequisiteMissing(string(domain.StepPayment), "payment method must be chosen first")
	}

	totals := s.calc.Compute(items)

	orderID, err := s.orders.CreateOrder(ctx, backend.CreateOrderInput{
		UserID:          userID,
		Items:           items,
		ShippingAddress: *state.ShippingAddress,
		PaymentMethod:   state.PaymentMethod,
		Subtotal:        totals.Subtotal,
		ShippingFee:     totals.ShippingFee,
		Tax:             totals.Tax,
		GrandTotal:      totals.GrandTotal,
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	ordersPlacedTotal.WithLabelValues(state.PaymentMethod).Inc()

	s.logger.InfoContext(ctx, "order created",
		slog.String("user_id", userID),
		slog.String("order_id", orderID),
		slog.String("payment_method", state.PaymentMethod),
		slog.Int64("grand_total", totals.GrandTotal),
	)

	result := &OrderResult{
		OrderID: orderID,
		Totals:  totals,
	}

	switch state.PaymentMethod {
	case domain.PaymentMethodCashOnDelivery:
		s.clearAfterPlacement(ctx, userID, buyNow)
		result.Status = OrderStatusConfirmed

	case domain.PaymentMethodOnlineCard:
		session, err := s.payments.CreateSession(ctx, orderID)
		if err != nil {
			// The order exists unpaid server-side; no rollback is attempted.
			s.logger.ErrorContext(ctx, "payment session could not be started",
				slog.String("user_id", userID),
				slog.String("order_id", orderID),
				slog.String("error", err.Error()),
			)
			return nil, apperrors.PaymentRedirectFailed(orderID, err)
		}
		// The cart survives until payment completion is confirmed externally.
		result.Status = OrderStatusPaymentPending
		result.PaymentSession = session

	default:
		return nil, apperrors.InvalidInput(fmt.Sprintf("unsupported payment method %q", state.PaymentMethod))
	}

	if err := s.events.OrderPlaced(ctx, event.OrderPlacedData{
		UserID:        userID,
		OrderID:       orderID,
		PaymentMethod: state.PaymentMethod,
		GrandTotal:    totals.GrandTotal,
		Status:        result.Status,
	}); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.placed event",
			slog.String("order_id", orderID),
			slog.String("error", err.Error()),
		)
	}

	return result, nil
}

// clearAfterPlacement clears local state after a confirmed placement: the
// buy-now item always, the cart only when checkout originated from it. The
// shipping address and payment method survive so the confirmation view can
// still read the session. Failures are logged, not returned; the order is
// already placed.
func (s *OrderService) clearAfterPlacement(ctx context.Context, userID string, buyNow bool) {
	if err := s.checkout.ClearBuyNow(ctx, userID); err != nil {
		s.logger.ErrorContext(ctx, "failed to clear buy-now item after placement",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	if buyNow {
		return
	}

	if err := s.cart.Clear(ctx, userID); err != nil {
		s.logger.ErrorContext(ctx, "failed to clear cart after placement",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}
}
