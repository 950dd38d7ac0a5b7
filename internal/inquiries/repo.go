package inquiries

import (
	"context"
	"fmt"

	"github.com/autocare/autocare-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists contact-form inquiries.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) (*Repository, error) {
	if db == nil {
		return nil, fmt.Errorf("db handle required")
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Create(ctx context.Context, inquiry *models.Inquiry) error {
	return r.db.WithContext(ctx).Create(inquiry).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Inquiry, error) {
	var inquiry models.Inquiry
	if err := r.db.WithContext(ctx).First(&inquiry, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &inquiry, nil
}

// List returns inquiries newest first, optionally filtered by status.
func (r *Repository) List(ctx context.Context, status string) ([]models.Inquiry, error) {
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var inquiries []models.Inquiry
	if err := query.Find(&inquiries).Error; err != nil {
		return nil, err
	}
	return inquiries, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return r.db.WithContext(ctx).
		Model(&models.Inquiry{}).
		Where("id = ?", id).
		UpdateColumn("status", status).Error
}
