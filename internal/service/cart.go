package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/trovekart/storefront/internal/backend"
	"github.com/trovekart/storefront/internal/domain"
	"github.com/trovekart/storefront/internal/pricing"
	"github.com/trovekart/storefront/internal/repository"
	apperrors "github.com/trovekart/storefront/pkg/errors"
)

// Cart operation upper-bound limits to prevent abuse.
const (
	// MaxQuantityPerItem is the maximum quantity allowed for a single line item.
	MaxQuantityPerItem = 100
	// MaxItemsPerCart is the maximum number of distinct line items in a cart.
	MaxItemsPerCart = 50
)

// ProductFetcher fetches a product snapshot from the catalog. Satisfied by
// backend.CatalogClient.
type ProductFetcher interface {
	GetProduct(ctx context.Context, productID string) (*backend.Product, error)
}

// CartEvents publishes cart domain events. Satisfied by event.Producer.
type CartEvents interface {
	CartUpdated(ctx context.Context, cart *domain.Cart, totals domain.Totals) error
	CartCleared(ctx context.Context, userID string) error
}

// CartView pairs a cart with its freshly derived totals. Totals are computed
// on every read and never trusted from storage.
type CartView struct {
	Cart   *domain.Cart  `json:"cart"`
	Totals domain.Totals `json:"totals"`
}

// CartService implements the business logic for cart operations.
type CartService struct {
	repo    repository.CartRepository
	catalog ProductFetcher
	events  CartEvents
	calc    pricing.Calculator
	logger  *slog.Logger
}

// NewCartService creates a cart service.
func NewCartService(
	repo repository.CartRepository,
	catalog ProductFetcher,
	events CartEvents,
	calc pricing.Calculator,
	logger *slog.Logger,
) *CartService {
	return &CartService{
		repo:    repo,
		catalog: catalog,
		events:  events,
		calc:    calc,
		logger:  logger,
	}
}

// GetCart retrieves the user's cart, returning an empty cart if none exists.
func (s *CartService) GetCart(ctx context.Context, userID string) (*CartView, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}

	cart, err := s.getOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.view(cart), nil
}

// AddItem adds a product to the cart, snapshotting price and stock from the
// catalog at the time of add. Re-adding a product that is already in the cart
// replaces the whole line item with the new snapshot and quantity; quantities
// are not merged, so the last add wins.
func (s *CartService) AddItem(ctx context.Context, userID, productID string, quantity int) (*CartView, error) {
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

	cart, err := s.getOrCreateCart(ctx, userID)
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

	if idx := cart.FindItemIndex(productID); idx >= 0 {
		cart.Items[idx] = item
	} else {
		if len(cart.Items) >= MaxItemsPerCart {
			return nil, apperrors.InvalidInput(fmt.Sprintf("cart must not contain more than %d items", MaxItemsPerCart))
		}
		cart.Items = append(cart.Items, item)
	}

	if err := s.persist(ctx, cart); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "item added to cart",
		slog.String("user_id", userID),
		slog.String("product_id", productID),
		slog.Int("quantity", quantity),
	)

	return s.view(cart), nil
}

// SetQuantity updates the quantity of a line item in place. A quantity below
// 1 removes the item; a quantity above the stock snapshot is rejected with a
// StockExceeded error and the cart is left unchanged.
func (s *CartService) SetQuantity(ctx context.Context, userID, productID string, quantity int) (*CartView, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	if productID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}
	if quantity > MaxQuantityPerItem {
		return nil, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerItem))
	}

	if quantity < 1 {
		return s.RemoveItem(ctx, userID, productID)
	}

	cart, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("cart item", productID)
		}
		return nil, fmt.Errorf("get cart for quantity update: %w", err)
	}

	idx := cart.FindItemIndex(productID)
	if idx < 0 {
		return nil, apperrors.NotFound("cart item", productID)
	}

	if quantity > cart.Items[idx].AvailableStock {
		return nil, apperrors.StockExceeded(productID, quantity, cart.Items[idx].AvailableStock)
	}

	cart.Items[idx].Quantity = quantity

	if err := s.persist(ctx, cart); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "cart item quantity updated",
		slog.String("user_id", userID),
		slog.String("product_id", productID),
		slog.Int("quantity", quantity),
	)

	return s.view(cart), nil
}

// RemoveItem removes a line item. Removing an item that is not in the cart is
// a no-op, not an error.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID string) (*CartView, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	if productID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}

	cart, err := s.getOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	idx := cart.FindItemIndex(productID)
	if idx < 0 {
		return s.view(cart), nil
	}

	cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)

	if err := s.persist(ctx, cart); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "item removed from cart",
		slog.String("user_id", userID),
		slog.String("product_id", productID),
	)

	return s.view(cart), nil
}

// Clear removes the entire cart. Used by the user directly and by the order
// flow after a confirmed placement.
func (s *CartService) Clear(ctx context.Context, userID string) error {
	if userID == "" {
		return apperrors.InvalidInput("user id is required")
	}

	if err := s.repo.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}

	if err := s.events.CartCleared(ctx, userID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.cleared event",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "cart cleared",
		slog.String("user_id", userID),
	)

	return nil
}

// persist saves the cart and publishes cart.updated. Publish failures are
// logged, not returned: the cart mutation has already been made durable.
func (s *CartService) persist(ctx context.Context, cart *domain.Cart) error {
	cart.UpdatedAt = time.Now().UTC()

	if err := s.repo.Save(ctx, cart); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}

	if err := s.events.CartUpdated(ctx, cart, s.calc.Compute(cart.Items)); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.updated event",
			slog.String("user_id", cart.UserID),
			slog.String("error", err.Error()),
		)
	}

	return nil
}

func (s *CartService) getOrCreateCart(ctx context.Context, userID string) (*domain.Cart, error) {
	cart, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.NewCart(userID), nil
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}
	return cart, nil
}

func (s *CartService) view(cart *domain.Cart) *CartView {
	return &CartView{
		Cart:   cart,
		Totals: s.calc.Compute(cart.Items),
	}
}
