package models

import (
	"time"

	"github.com/autocare/autocare-backend/pkg/enums"
	"github.com/autocare/autocare-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is a placed order with its totals frozen at checkout time.
type Order struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	OrderNumber     string            `gorm:"column:order_number;not null;uniqueIndex"`
	UserID          uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index"`
	Subtotal        decimal.Decimal   `gorm:"column:subtotal;type:numeric(12,2);not null"`
	ShippingFee     decimal.Decimal   `gorm:"column:shipping_fee;type:numeric(12,2);not null"`
	Total           decimal.Decimal   `gorm:"column:total;type:numeric(12,2);not null"`
	ShippingAddress types.Address     `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	PaymentMethod   string            `gorm:"column:payment_method;not null"`
	Status          enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pending';index"`
	Items           []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderItem snapshots one purchased line at the price paid.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OrderID   uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Slug      string          `gorm:"column:slug;not null"`
	Name      string          `gorm:"column:name;not null"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Quantity  int             `gorm:"column:quantity;not null"`
	Image     string          `gorm:"column:image"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}
