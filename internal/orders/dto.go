package orders

import (
	"time"

	"github.com/autocare/autocare-backend/pkg/db/models"
	"github.com/autocare/autocare-backend/pkg/enums"
	"github.com/autocare/autocare-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PlaceOrderInput is the checkout payload. Totals are recomputed server-side
// from the account cart; the client never supplies them.
type PlaceOrderInput struct {
	ShippingAddress types.Address `json:"shippingAddress" validate:"required"`
	PaymentMethod   string        `json:"paymentMethod" validate:"required,oneof=cod bank_transfer"`
}

// TrackOrderInput identifies an order for the public tracking endpoint.
type TrackOrderInput struct {
	OrderNumber string `json:"orderNumber" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
}

// UpdateStatusInput carries an admin status change.
type UpdateStatusInput struct {
	Status string `json:"status" validate:"required"`
}

// OrderItemDTO is one purchased line at the price paid.
type OrderItemDTO struct {
	ProductID uuid.UUID       `json:"productId"`
	Slug      string          `json:"slug"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Image     string          `json:"image"`
}

// OrderDTO is the transport shape for one order.
type OrderDTO struct {
	ID              uuid.UUID         `json:"id"`
	OrderNumber     string            `json:"orderNumber"`
	Subtotal        decimal.Decimal   `json:"subtotal"`
	ShippingFee     decimal.Decimal   `json:"shippingFee"`
	Total           decimal.Decimal   `json:"total"`
	ShippingAddress types.Address     `json:"shippingAddress"`
	PaymentMethod   string            `json:"paymentMethod"`
	Status          enums.OrderStatus `json:"status"`
	Items           []OrderItemDTO    `json:"items"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

func FromModel(o *models.Order) *OrderDTO {
	if o == nil {
		return nil
	}
	items := make([]OrderItemDTO, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemDTO{
			ProductID: item.ProductID,
			Slug:      item.Slug,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
			Image:     item.Image,
		})
	}
	return &OrderDTO{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		Subtotal:        o.Subtotal,
		ShippingFee:     o.ShippingFee,
		Total:           o.Total,
		ShippingAddress: o.ShippingAddress,
		PaymentMethod:   o.PaymentMethod,
		Status:          o.Status,
		Items:           items,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}
