package products

import (
	"time"

	"github.com/autocare/autocare-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductDTO is the storefront transport shape for one catalog listing.
type ProductDTO struct {
	ID             uuid.UUID                 `json:"id"`
	Slug           string                    `json:"slug"`
	SKU            string                    `json:"sku"`
	Name           string                    `json:"name"`
	Description    string                    `json:"description"`
	Price          decimal.Decimal           `json:"price"`
	CompareAtPrice *decimal.Decimal          `json:"compareAtPrice,omitempty"`
	Stock          int                       `json:"stock"`
	InStock        bool                      `json:"inStock"`
	Category       string                    `json:"category"`
	Brand          string                    `json:"brand"`
	Image          string                    `json:"image"`
	Images         []models.ProductImage     `json:"images"`
	Compatibility  []models.CompatibilityTag `json:"compatibility"`
	CreatedAt      time.Time                 `json:"createdAt"`
	UpdatedAt      time.Time                 `json:"updatedAt"`
}

// ListResponse is one page of products plus the cursor for the next page.
type ListResponse struct {
	Products   []ProductDTO `json:"products"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

func FromModel(p *models.Product) *ProductDTO {
	if p == nil {
		return nil
	}
	return &ProductDTO{
		ID:             p.ID,
		Slug:           p.Slug,
		SKU:            p.SKU,
		Name:           p.Name,
		Description:    p.Description,
		Price:          p.Price,
		CompareAtPrice: p.CompareAtPrice,
		Stock:          p.Stock,
		InStock:        p.Stock > 0,
		Category:       p.Category,
		Brand:          p.Brand,
		Image:          p.PrimaryImageURL(),
		Images:         p.Images,
		Compatibility:  p.Compatibility,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

// CreateProductInput is the admin payload for a new listing.
type CreateProductInput struct {
	Slug           string                    `json:"slug" validate:"required"`
	SKU            string                    `json:"sku" validate:"required"`
	Name           string                    `json:"name" validate:"required"`
	Description    string                    `json:"description"`
	Price          decimal.Decimal           `json:"price" validate:"required"`
	CompareAtPrice *decimal.Decimal          `json:"compareAtPrice,omitempty"`
	Stock          int                       `json:"stock" validate:"gte=0"`
	Category       string                    `json:"category" validate:"required"`
	Brand          string                    `json:"brand" validate:"required"`
	Images         []models.ProductImage     `json:"images"`
	Compatibility  []models.CompatibilityTag `json:"compatibility"`
}

// UpdateProductInput carries partial updates for an existing listing. Nil
// fields are left unchanged.
type UpdateProductInput struct {
	Name           *string                    `json:"name,omitempty"`
	Description    *string                    `json:"description,omitempty"`
	Price          *decimal.Decimal           `json:"price,omitempty"`
	CompareAtPrice *decimal.Decimal           `json:"compareAtPrice,omitempty"`
	Stock          *int                       `json:"stock,omitempty" validate:"omitempty,gte=0"`
	Category       *string                    `json:"category,omitempty"`
	Brand          *string                    `json:"brand,omitempty"`
	Images         *[]models.ProductImage     `json:"images,omitempty"`
	Compatibility  *[]models.CompatibilityTag `json:"compatibility,omitempty"`
}
