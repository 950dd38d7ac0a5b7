// Package money centralizes currency arithmetic for the storefront. Amounts
// are decimals, not floats: the free-shipping boundary sits at an exact
// currency value and binary floats would misclassify totals like 999.99.
package money

import "github.com/shopspring/decimal"

func init() {
	// Storefront clients expect price fields as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Schedule is the flat-rate shipping schedule applied to every cart.
type Schedule struct {
	FreeThreshold decimal.Decimal
	FlatFee       decimal.Decimal
}

// DefaultSchedule matches the storefront constants: orders of 1000 currency
// units or more ship free, everything else pays a flat 60.
var DefaultSchedule = Schedule{
	FreeThreshold: decimal.NewFromInt(1000),
	FlatFee:       decimal.NewFromInt(60),
}

// NewSchedule builds a schedule from whole-currency-unit configuration values.
func NewSchedule(freeThreshold, flatFee int) Schedule {
	return Schedule{
		FreeThreshold: decimal.NewFromInt(int64(freeThreshold)),
		FlatFee:       decimal.NewFromInt(int64(flatFee)),
	}
}

// Fee returns the shipping fee owed for the given subtotal.
func (s Schedule) Fee(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(s.FreeThreshold) {
		return decimal.Zero
	}
	return s.FlatFee
}

// LineTotal multiplies a unit price by a quantity.
func LineTotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}
