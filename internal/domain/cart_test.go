package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCart(t *testing.T) {
	cart := NewCart("user-1")

	assert.Equal(t, CartSchemaVersion, cart.SchemaVersion)
	assert.Equal(t, "user-1", cart.UserID)
	assert.NotNil(t, cart.Items)
	assert.True(t, cart.IsEmpty())
	assert.NotZero(t, cart.CreatedAt)
	assert.NotZero(t, cart.UpdatedAt)
}

func TestFindItemIndex(t *testing.T) {
	cart := &Cart{
		Items: []LineItem{
			{ProductID: "prod-1"},
			{ProductID: "prod-2"},
		},
	}

	assert.Equal(t, 0, cart.FindItemIndex("prod-1"))
	assert.Equal(t, 1, cart.FindItemIndex("prod-2"))
	assert.Equal(t, -1, cart.FindItemIndex("prod-3"))
}

func TestItemCount(t *testing.T) {
	cart := &Cart{
		Items: []LineItem{
			{ProductID: "prod-1", Quantity: 2},
			{ProductID: "prod-2", Quantity: 3},
		},
	}

	assert.Equal(t, 5, cart.ItemCount())
	assert.False(t, cart.IsEmpty())
}

func TestItemCount_Empty(t *testing.T) {
	cart := NewCart("user-1")

	assert.Equal(t, 0, cart.ItemCount())
}
