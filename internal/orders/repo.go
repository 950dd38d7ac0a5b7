package orders

import (
	"context"
	"fmt"

	"github.com/autocare/autocare-backend/internal/products"
	"github.com/autocare/autocare-backend/pkg/db"
	"github.com/autocare/autocare-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists orders. Placement runs in one transaction so stock
// decrements and the order rows commit or roll back together.
type Repository struct {
	client *db.Client
}

// NewRepository binds the repo to the database client.
func NewRepository(client *db.Client) (*Repository, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &Repository{client: client}, nil
}

// Place inserts the order and its items after decrementing stock for every
// line under row locks. Insufficient stock aborts the whole transaction.
func (r *Repository) Place(ctx context.Context, order *models.Order) error {
	return r.client.WithTx(ctx, func(tx *gorm.DB) error {
		productRepo := products.NewRepository(tx)

		for _, item := range order.Items {
			product, err := productRepo.FindByIDForUpdate(ctx, item.ProductID)
			if err != nil {
				return err
			}
			if product.Stock < item.Quantity {
				return ErrInsufficientStock{Slug: product.Slug, Available: product.Stock}
			}
			if err := productRepo.DecrementStock(ctx, product.ID, item.Quantity); err != nil {
				return fmt.Errorf("decrement stock for %s: %w", product.Slug, err)
			}
		}

		return tx.WithContext(ctx).Create(order).Error
	})
}

// ListByUser returns the user's orders, newest first, items included.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	if err := r.client.DB().WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// FindByIDForUser loads one order owned by the user.
func (r *Repository) FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.client.DB().WithContext(ctx).
		Preload("Items").
		First(&order, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByID loads one order regardless of owner (admin paths).
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.client.DB().WithContext(ctx).
		Preload("Items").
		First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByNumberAndEmail resolves the public tracking lookup.
func (r *Repository) FindByNumberAndEmail(ctx context.Context, orderNumber, email string) (*models.Order, error) {
	var order models.Order
	if err := r.client.DB().WithContext(ctx).
		Preload("Items").
		Joins("JOIN users ON users.id = orders.user_id").
		Where("orders.order_number = ? AND users.email = ?", orderNumber, email).
		First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// ListAll returns orders for the admin panel, newest first, optionally
// narrowed to one status.
func (r *Repository) ListAll(ctx context.Context, status string) ([]models.Order, error) {
	query := r.client.DB().WithContext(ctx).
		Preload("Items").
		Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateStatus persists a status change.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return r.client.DB().WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		UpdateColumn("status", status).Error
}

// ErrInsufficientStock reports which product blocked placement.
type ErrInsufficientStock struct {
	Slug      string
	Available int
}

func (e ErrInsufficientStock) Error() string {
	return fmt.Sprintf("insufficient stock for %s (available %d)", e.Slug, e.Available)
}
