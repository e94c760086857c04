package domain

import "time"

// CartSchemaVersion tags persisted cart blobs so a future format change can
// be detected on load instead of breaking deserialization silently.
const CartSchemaVersion = 1

// LineItem is one product-and-quantity record in a cart or order.
// UnitPrice and AvailableStock are snapshots taken from the catalog at the
// time the item was added; stock can change server-side afterwards.
type LineItem struct {
	ProductID      string `json:"product_id"`
	Name           string `json:"name"`
	UnitPrice      int64  `json:"unit_price"`
	Quantity       int    `json:"quantity"`
	ImageURL       string `json:"image_url,omitempty"`
	AvailableStock int    `json:"available_stock"`
}

// Cart is the durable per-user shopping cart. Totals are never stored on the
// cart: they are always recomputed from Items by the pricing calculator.
type Cart struct {
	SchemaVersion int        `json:"schema_version"`
	UserID        string     `json:"user_id"`
	Items         []LineItem `json:"items"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// NewCart creates an empty cart for the given user.
func NewCart(userID string) *Cart {
	now := time.Now().UTC()
	return &Cart{
		SchemaVersion: CartSchemaVersion,
		UserID:        userID,
		Items:         []LineItem{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// FindItemIndex returns the index of the line item with the given product ID,
// or -1 if the cart does not contain it.
func (c *Cart) FindItemIndex(productID string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// IsEmpty reports whether the cart has no line items.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// ItemCount returns the total quantity across all line items.
func (c *Cart) ItemCount() int {
	var count int
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}
