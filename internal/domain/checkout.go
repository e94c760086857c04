package domain

import "time"

// CheckoutSchemaVersion tags persisted checkout state blobs.
const CheckoutSchemaVersion = 1

// Payment method constants. The set is closed: an order is either paid by
// card through an external redirect or settled in cash on delivery.
const (
	PaymentMethodOnlineCard     = "online_card"
	PaymentMethodCashOnDelivery = "cash_on_delivery"
)

// IsValidPaymentMethod reports whether the given method is in the closed set.
func IsValidPaymentMethod(method string) bool {
	return method == PaymentMethodOnlineCard || method == PaymentMethodCashOnDelivery
}

// Step identifies a position in the linear checkout flow.
type Step string

const (
	StepShipping   Step = "shipping"
	StepPayment    Step = "payment"
	StepPlaceOrder Step = "place_order"
)

// RedirectCatalog is the redirect target when nothing is staged for checkout;
// it is not a checkout step.
const RedirectCatalog = "catalog"

// Address is a shipping address collected during the shipping step.
type Address struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	AddressLine string `json:"address_line"`
	City        string `json:"city"`
	PostalCode  string `json:"postal_code"`
	Country     string `json:"country"`
}

// CheckoutState is the persisted portion of a checkout: the staged buy-now
// item (if the flow started from a product page rather than the cart), the
// shipping address, and the chosen payment method. The current step is never
// stored; it is derived from field presence so a reload or deep link lands on
// the right step without a separate pointer to keep consistent.
type CheckoutState struct {
	SchemaVersion   int       `json:"schema_version"`
	UserID          string    `json:"user_id"`
	BuyNowItem      *LineItem `json:"buy_now_item,omitempty"`
	ShippingAddress *Address  `json:"shipping_address,omitempty"`
	PaymentMethod   string    `json:"payment_method,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewCheckoutState creates an empty checkout state for the given user.
func NewCheckoutState(userID string) *CheckoutState {
	now := time.Now().UTC()
	return &CheckoutState{
		SchemaVersion: CheckoutSchemaVersion,
		UserID:        userID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// DeriveStep computes the current checkout step from field presence:
// no address means shipping, address without payment method means payment,
// both present means place_order.
func (s *CheckoutState) DeriveStep() Step {
	if s.ShippingAddress == nil {
		return StepShipping
	}
	if s.PaymentMethod == "" {
		return StepPayment
	}
	return StepPlaceOrder
}

// CheckoutSession is the derived, non-persisted view of a checkout handed to
// callers: the order items (buy-now item if staged, otherwise the cart
// items), the collected fields, recomputed totals, and the derived step.
type CheckoutSession struct {
	UserID          string     `json:"user_id"`
	OrderItems      []LineItem `json:"order_items"`
	ShippingAddress *Address   `json:"shipping_address,omitempty"`
	PaymentMethod   string     `json:"payment_method,omitempty"`
	Totals          Totals     `json:"totals"`
	Step            Step       `json:"step"`
	BuyNow          bool       `json:"buy_now"`
}
