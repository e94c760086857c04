package domain

// Totals is the monetary breakdown derived from a list of line items.
// All amounts are integer minor units (paise); GrandTotal is always the exact
// sum of the other three fields, with rounding deferred to presentation.
type Totals struct {
	Subtotal    int64 `json:"subtotal"`
	ShippingFee int64 `json:"shipping_fee"`
	Tax         int64 `json:"tax"`
	GrandTotal  int64 `json:"grand_total"`
}
