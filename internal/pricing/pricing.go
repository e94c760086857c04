// Package pricing derives monetary totals from cart line items.
//
// The calculator is pure: same items and policy always produce the same
// totals, with no side effects. All arithmetic is on integer minor units so
// the grand total is the exact sum of its parts; formatting to rupees happens
// only at presentation time.
package pricing

import "github.com/trovekart/storefront/internal/domain"

// Calculator computes totals under a configured pricing policy.
type Calculator struct {
	// TaxRateBps is the tax rate in basis points (1800 = 18%).
	TaxRateBps int64

	// ShippingFee is the flat fee in minor units charged when the subtotal
	// is below FreeShippingThreshold.
	ShippingFee int64

	// FreeShippingThreshold is the subtotal in minor units at or above which
	// shipping is free.
	FreeShippingThreshold int64
}

// Compute derives the totals for the given line items. An empty item list
// yields all-zero totals, including the shipping fee.
func (c Calculator) Compute(items []domain.LineItem) domain.Totals {
	if len(items) == 0 {
		return domain.Totals{}
	}

	var subtotal int64
	for _, item := range items {
		subtotal += item.UnitPrice * int64(item.Quantity)
	}

	var shipping int64
	if subtotal < c.FreeShippingThreshold {
		shipping = c.ShippingFee
	}

	tax := roundHalfUp(subtotal*c.TaxRateBps, 10_000)

	return domain.Totals{
		Subtotal:    subtotal,
		ShippingFee: shipping,
		Tax:         tax,
		GrandTotal:  subtotal + shipping + tax,
	}
}

// roundHalfUp divides num by den rounding half away from zero.
// num is non-negative here (prices and rates are non-negative).
func roundHalfUp(num, den int64) int64 {
	return (num + den/2) / den
}
