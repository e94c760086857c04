package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/trovekart/storefront/internal/domain"
	apperrors "github.com/trovekart/storefront/pkg/errors"
)

const checkoutKeyPrefix = "checkout:"

// CheckoutRepository implements repository.CheckoutRepository on Redis.
// Checkout state is shorter-lived than the cart: it carries the in-progress
// shipping/payment fields and the optional buy-now item.
type CheckoutRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCheckoutRepository creates a Redis-backed checkout repository.
func NewCheckoutRepository(client *redis.Client, ttl time.Duration) *CheckoutRepository {
	return &CheckoutRepository{
		client: client,
		ttl:    ttl,
	}
}

// Get retrieves the checkout state for a user. Unknown schema versions are
// treated as absent.
func (r *CheckoutRepository) Get(ctx context.Context, userID string) (*domain.CheckoutState, error) {
	data, err := r.client.Get(ctx, checkoutKeyPrefix+userID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, apperrors.NotFound("checkout state", userID)
		}
		return nil, fmt.Errorf("redis get checkout state: %w", err)
	}

	var state domain.CheckoutState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("unmarshal checkout state: %w", err)
	}

	if state.SchemaVersion != domain.CheckoutSchemaVersion {
		return nil, apperrors.NotFound("checkout state", userID)
	}

	return &state, nil
}

// Save persists the checkout state with the configured TTL.
func (r *CheckoutRepository) Save(ctx context.Context, state *domain.CheckoutState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal checkout state: %w", err)
	}

	if err := r.client.Set(ctx, checkoutKeyPrefix+state.UserID, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set checkout state: %w", err)
	}

	return nil
}

// Delete removes the checkout state for a user.
func (r *CheckoutRepository) Delete(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, checkoutKeyPrefix+userID).Err(); err != nil {
		return fmt.Errorf("redis del checkout state: %w", err)
	}
	return nil
}
