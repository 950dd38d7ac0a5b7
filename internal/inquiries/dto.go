package inquiries

import (
	"time"

	"github.com/autocare/autocare-backend/pkg/db/models"
	"github.com/autocare/autocare-backend/pkg/enums"
	"github.com/google/uuid"
)

// CreateInquiryInput is the public contact-form payload.
type CreateInquiryInput struct {
	Name    string `json:"name" validate:"required,max=120"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required,max=200"`
	Message string `json:"message" validate:"required,max=4000"`
}

// UpdateStatusInput carries an admin triage change.
type UpdateStatusInput struct {
	Status string `json:"status" validate:"required"`
}

// InquiryDTO is the transport shape for one inquiry.
type InquiryDTO struct {
	ID        uuid.UUID           `json:"id"`
	Name      string              `json:"name"`
	Email     string              `json:"email"`
	Subject   string              `json:"subject"`
	Message   string              `json:"message"`
	Status    enums.InquiryStatus `json:"status"`
	CreatedAt time.Time           `json:"createdAt"`
	UpdatedAt time.Time           `json:"updatedAt"`
}

func FromModel(i *models.Inquiry) *InquiryDTO {
	if i == nil {
		return nil
	}
	return &InquiryDTO{
		ID:        i.ID,
		Name:      i.Name,
		Email:     i.Email,
		Subject:   i.Subject,
		Message:   i.Message,
		Status:    i.Status,
		CreatedAt: i.CreatedAt,
		UpdatedAt: i.UpdatedAt,
	}
}
