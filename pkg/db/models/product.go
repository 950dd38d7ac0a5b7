package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductImage is one gallery entry stored inside the product document.
type ProductImage struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	Alt       string `json:"alt"`
	IsPrimary bool   `json:"isPrimary"`
}

// CompatibilityTag declares one vehicle range a part fits.
type CompatibilityTag struct {
	CarBrand string `json:"carBrand"`
	CarModel string `json:"carModel"`
	YearFrom int    `json:"yearFrom"`
	YearTo   int    `json:"yearTo"`
}

// Product represents a catalog listing for one automotive part.
type Product struct {
	ID             uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	Slug           string             `gorm:"column:slug;not null;uniqueIndex"`
	SKU            string             `gorm:"column:sku;not null;uniqueIndex"`
	Name           string             `gorm:"column:name;not null"`
	Description    string             `gorm:"column:description;not null"`
	Price          decimal.Decimal    `gorm:"column:price;type:numeric(12,2);not null"`
	CompareAtPrice *decimal.Decimal   `gorm:"column:compare_at_price;type:numeric(12,2)"`
	Stock          int                `gorm:"column:stock;not null;default:0"`
	Category       string             `gorm:"column:category;not null;index"`
	Brand          string             `gorm:"column:brand;not null;index"`
	Images         []ProductImage     `gorm:"column:images;type:jsonb;serializer:json"`
	Compatibility  []CompatibilityTag `gorm:"column:compatibility;type:jsonb;serializer:json"`
	CreatedAt      time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// PrimaryImageURL returns the primary gallery image, falling back to the first.
func (p Product) PrimaryImageURL() string {
	for _, img := range p.Images {
		if img.IsPrimary {
			return img.URL
		}
	}
	if len(p.Images) > 0 {
		return p.Images[0].URL
	}
	return ""
}
