package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/trovekart/storefront/internal/domain"
	"github.com/trovekart/storefront/internal/pricing"
	"github.com/trovekart/storefront/internal/repository"
	apperrors "github.com/trovekart/storefront/pkg/errors"
)

// CheckoutService implements the checkout step controller: a linear
// Shipping -> Payment -> PlaceOrder flow where every step re-validates its own
// prerequisites on entry and redirects backward when one is missing. The step
// itself is derived from field presence, so reloads and deep links are safe
// without a persisted step pointer.
type CheckoutService struct {
	repo     repository.CheckoutRepository
	cartRepo repository.CartRepository
	catalog  ProductFetcher
	calc     pricing.Calculator
	logger   *slog.Logger
}

// NewCheckoutService creates a checkout service.
func NewCheckoutService(
	repo repository.CheckoutRepository,
	cartRepo repository.CartRepository,
	catalog ProductFetcher,
	calc pricing.Calculator,
	logger *slog.Logger,
) *CheckoutService {
	return &CheckoutService{
		repo:     repo,
		cartRepo: cartRepo,
		catalog:  catalog,
		calc:     calc,
		logger:   logger,
	}
}

// GetSession assembles the derived checkout session for a user: the order
// items (buy-now item if staged, else the cart items), recomputed totals, and
// the derived step. With nothing staged for checkout the caller is redirected
// to the catalog.
func (s *CheckoutService) GetSession(ctx context.Context, userID string) (*domain.CheckoutSession, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}

	state, err := s.getOrCreateState(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.buildSession(ctx, state)
}

// StartBuyNow stages a single-item checkout that bypasses the cart. The item
// is snapshotted from the catalog with the same stock gate as a cart add.
func (s *CheckoutService) StartBuyNow(ctx context.Context, userID, productID string, quantity int) (*domain.CheckoutSession, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	if productID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}
	if quantity < 1 {
		return nil, apperrors.InvalidInput("quantity must be at least 1")
	}
	if quantity > MaxQuantityPerItem {
		return nil, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerItem))
	}

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("fetch product snapshot: %w", err)
	}

	if quantity > product.Stock {
		return nil, apperrors.StockExceeded(productID, quantity, product.Stock)
	}

	state, err := s.getOrCreateState(ctx, userID)
	if err != nil {
		return nil, err
	}

	item := domain.LineItem{
		ProductID:      product.ID,
		Name:           product.Name,
		UnitPrice:      product.Price,
		Quantity:       quantity,
		AvailableStock: product.Stock,
	}
	if len(product.Images) > 0 {
		item.ImageURL = product.Images[0]
	}

	state.BuyNowItem = &item

	if err := s.saveState(ctx, state); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "buy-now checkout staged",
		slog.String("user_id", userID),
		slog.String("product_id", productID),
		slog.Int("quantity", quantity),
	)

	return s.buildSession(ctx, state)
}

// SubmitShipping records the shipping address and advances the flow to the
// payment step. Entering the shipping step requires something staged for
// checkout.
func (s *CheckoutService) SubmitShipping(ctx context.Context, userID string, addr domain.Address) (*domain.CheckoutSession, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	if err := validateAddress(addr); err != nil {
		return nil, err
	}

	state, err := s.getOrCreateState(ctx, userID)
	if err != nil {
		return nil, err
	}

	items, _, err := s.orderItems(ctx, state)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, apperrors.PrerequisiteMissing(domain.RedirectCatalog, "nothing is staged for checkout")
	}

	state.ShippingAddress = &addr

	if err := s.saveState(ctx, state); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "shipping address saved",
		slog.String("user_id", userID),
	)

	return s.buildSession(ctx, state)
}

// SubmitPayment records the payment method and advances the flow to the
// place-order step. Prerequisites are re-validated on entry: staged items
// first, then the shipping address.
func (s *CheckoutService) SubmitPayment(ctx context.Context, userID, method string) (*domain.CheckoutSession, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	if !domain.IsValidPaymentMethod(method) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("payment method must be %q or %q",
			domain.PaymentMethodOnlineCard, domain.PaymentMethodCashOnDelivery))
	}

	state, err := s.getOrCreateState(ctx, userID)
	if err != nil {
		return nil, err
	}

	items, _, err := s.orderItems(ctx, state)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, apperrors.PrerequisiteMissing(domain.RedirectCatalog, "nothing is staged for checkout")
	}
	if state.ShippingAddress == nil {
		return nil, apperrors.PrerequisiteMissing(string(domain.StepShipping), "shipping address must be provided first")
	}

	state.PaymentMethod = method

	if err := s.saveState(ctx, state); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "payment method saved",
		slog.String("user_id", userID),
		slog.String("payment_method", method),
	)

	return s.buildSession(ctx, state)
}

// ClearBuyNow drops the staged buy-now item, keeping address and payment
// method. Used after a confirmed order placement.
func (s *CheckoutService) ClearBuyNow(ctx context.Context, userID string) error {
	state, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("get checkout state: %w", err)
	}

	if state.BuyNowItem == nil {
		return nil
	}

	state.BuyNowItem = nil
	return s.saveState(ctx, state)
}

// State returns the raw persisted checkout state for the user, creating an
// empty one if none exists. Used by the order flow, which needs the state's
// fields rather than the derived session view.
func (s *CheckoutService) State(ctx context.Context, userID string) (*domain.CheckoutState, error) {
	return s.getOrCreateState(ctx, userID)
}

// OrderItems resolves the items staged for checkout: the buy-now item when
// one is staged, otherwise the cart items. The bool reports the buy-now case.
func (s *CheckoutService) OrderItems(ctx context.Context, state *domain.CheckoutState) ([]domain.LineItem, bool, error) {
	return s.orderItems(ctx, state)
}

func (s *CheckoutService) orderItems(ctx context.Context, state *domain.CheckoutState) ([]domain.LineItem, bool, error) {
	if state.BuyNowItem != nil {
		return []domain.LineItem{*state.BuyNowItem}, true, nil
	}

	cart, err := s.cartRepo.Get(ctx, state.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get cart for checkout: %w", err)
	}

	return cart.Items, false, nil
}

func (s *CheckoutService) buildSession(ctx context.Context, state *domain.CheckoutState) (*domain.CheckoutSession, error) {
	items, buyNow, err := s.orderItems(ctx, state)
	if err != nil {
		return nil, err
	}

	if len(items) == 0 {
		return nil, apperrors.PrerequisiteMissing(domain.RedirectCatalog, "nothing is staged for checkout")
	}

	return &domain.CheckoutSession{
		UserID:          state.UserID,
		OrderItems:      items,
		ShippingAddress: state.ShippingAddress,
		PaymentMethod:   state.PaymentMethod,
		Totals:          s.calc.Compute(items),
		Step:            state.DeriveStep(),
		BuyNow:          buyNow,
	}, nil
}

func (s *CheckoutService) getOrCreateState(ctx context.Context, userID string) (*domain.CheckoutState, error) {
	state, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.NewCheckoutState(userID), nil
		}
		return nil, fmt.Errorf("get checkout state: %w", err)
	}
	return state, nil
}

func (s *CheckoutService) saveState(ctx context.Context, state *domain.CheckoutState) error {
	state.UpdatedAt = time.Now().UTC()
	if err := s.repo.Save(ctx, state); err != nil {
		return fmt.Errorf("save checkout state: %w", err)
	}
	return nil
}

func validateAddress(addr domain.Address) error {
	switch {
	case addr.Name == "":
		return apperrors.InvalidInput("name is required")
	case addr.Email == "":
		return apperrors.InvalidInput("email is required")
	case addr.Phone == "":
		return apperrors.InvalidInput("phone is required")
	case addr.AddressLine == "":
		return apperrors.InvalidInput("address_line is required")
	case addr.City == "":
		return apperrors.InvalidInput("city is required")
	case addr.PostalCode == "":
		return apperrors.InvalidInput("postal_code is required")
	case addr.Country == "":
		return apperrors.InvalidInput("country is required")
	}
	return nil
}
