package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveStep(t *testing.T) {
	addr := &Address{Name: "Priya Sharma", City: "Bengaluru"}

	tests := []struct {
		name     string
		address  *Address
		method   string
		expected Step
	}{
		{name: "nothing collected", address: nil, method: "", expected: StepShipping},
		{name: "address only", address: addr, method: "", expected: StepPayment},
		{name: "address and method", address: addr, method: PaymentMethodCashOnDelivery, expected: StepPlaceOrder},
		// A stored method without an address still lands on shipping; the
		// address check comes first.
		{name: "method without address", address: nil, method: PaymentMethodOnlineCard, expected: StepShipping},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := NewCheckoutState("user-1")
			state.ShippingAddress = tt.address
			state.PaymentMethod = tt.method

			assert.Equal(t, tt.expected, state.DeriveStep())
		})
	}
}

func TestIsValidPaymentMethod(t *testing.T) {
	assert.True(t, IsValidPaymentMethod(PaymentMethodOnlineCard))
	assert.True(t, IsValidPaymentMethod(PaymentMethodCashOnDelivery))
	assert.False(t, IsValidPaymentMethod(""))
	assert.False(t, IsValidPaymentMethod("crypto"))
	assert.False(t, IsValidPaymentMethod("ONLINE_CARD"))
}

func TestNewCheckoutState(t *testing.T) {
	state := NewCheckoutState("user-1")

	assert.Equal(t, CheckoutSchemaVersion, state.SchemaVersion)
	assert.Equal(t, "user-1", state.UserID)
	assert.Nil(t, state.BuyNowItem)
	assert.Nil(t, state.ShippingAddress)
	assert.Empty(t, state.PaymentMethod)
	assert.NotZero(t, state.CreatedAt)
}
