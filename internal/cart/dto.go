package cart

import (
	"github.com/autocare/autocare-backend/internal/storefront"
	"github.com/shopspring/decimal"
)

// AddItemInput is the payload for adding one product to the cart.
type AddItemInput struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=1"`
}

// UpdateItemInput carries a quantity change for an existing line. Any value,
// zero included, decodes; the service clamps it to [1, stock].
type UpdateItemInput struct {
	Quantity int `json:"quantity"`
}

// MergeInput is the guest cart submitted at sign-in.
type MergeInput struct {
	Items []storefront.LineItem `json:"items" validate:"required"`
}

// CartDTO is the cart plus its derived totals, recomputed on every read.
type CartDTO struct {
	Items       []storefront.LineItem `json:"items"`
	Subtotal    decimal.Decimal       `json:"subtotal"`
	ShippingFee decimal.Decimal       `json:"shippingFee"`
	Total       decimal.Decimal       `json:"total"`
}

type cartSnapshot struct {
	Items []storefront.LineItem `json:"items"`
}
