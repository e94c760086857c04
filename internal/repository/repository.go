package repository

import (
	"context"

	"github.com/trovekart/storefront/internal/domain"
)

// CartRepository defines durable persistence for carts. Implementations must
// return apperrors.ErrNotFound (wrapped) when no cart exists for the user.
type CartRepository interface {
	// Get retrieves the cart for a user.
	Get(ctx context.Context, userID string) (*domain.Cart, error)

	// Save persists the cart, overwriting any existing cart for the user.
	Save(ctx context.Context, cart *domain.Cart) error

	// Delete removes the cart for a user. Deleting an absent cart is not an
	// error.
	Delete(ctx context.Context, userID string) error
}

// CheckoutRepository defines durable persistence for checkout state.
type CheckoutRepository interface {
	// Get retrieves the checkout state for a user.
	Get(ctx context.Context, userID string) (*domain.CheckoutState, error)

	// Save persists the checkout state for a user.
	Save(ctx context.Context, state *domain.CheckoutState) error

	// Delete removes the checkout state for a user.
	Delete(ctx context.Context, userID string) error
}
