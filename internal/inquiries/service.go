package inquiries

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/autocare/autocare-backend/pkg/db/models"
	"github.com/autocare/autocare-backend/pkg/enums"
	pkgerrors "github.com/autocare/autocare-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service handles contact-form submissions and admin triage.
type Service interface {
	Create(ctx context.Context, input CreateInquiryInput) (*InquiryDTO, error)
	List(ctx context.Context, status string) ([]InquiryDTO, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, input UpdateStatusInput) (*InquiryDTO, error)
}

type inquiryRepository interface {
	Create(ctx context.Context, inquiry *models.Inquiry) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Inquiry, error)
	List(ctx context.Context, status string) ([]models.Inquiry, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

type service struct {
	repo inquiryRepository
}

// ServiceParams bundles the inquiry service dependencies.
type ServiceParams struct {
	InquiryRepo inquiryRepository
}

func NewService(params ServiceParams) (Service, error) {
	if params.InquiryRepo == nil {
		return nil, fmt.Errorf("inquiry repository required")
	}
	return &service{repo: params.InquiryRepo}, nil
}

// Create stores a public contact-form submission as a new inquiry.
func (s *service) Create(ctx context.Context, input CreateInquiryInput) (*InquiryDTO, error) {
	inquiry := &models.Inquiry{
		ID:      uuid.New(),
		Name:    strings.TrimSpace(input.Name),
		Email:   strings.ToLower(strings.TrimSpace(input.Email)),
		Subject: strings.TrimSpace(input.Subject),
		Message: strings.TrimSpace(input.Message),
		Status:  enums.InquiryStatusNew,
	}
	if inquiry.Name == "" || inquiry.Email == "" || inquiry.Subject == "" || inquiry.Message == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "all inquiry fields are required")
	}
	if err := s.repo.Create(ctx, inquiry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create inquiry")
	}
	return FromModel(inquiry), nil
}

// List returns inquiries for the admin panel. An empty status means all.
func (s *service) List(ctx context.Context, status string) ([]InquiryDTO, error) {
	filter := strings.ToLower(strings.TrimSpace(status))
	if filter != "" {
		parsed, err := enums.ParseInquiryStatus(filter)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
		}
		filter = string(parsed)
	}

	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list inquiries")
	}
	dtos := make([]InquiryDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *FromModel(&rows[i]))
	}
	return dtos, nil
}

// UpdateStatus applies an admin triage change.
func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, input UpdateStatusInput) (*InquiryDTO, error) {
	next, err := enums.ParseInquiryStatus(input.Status)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}

	inquiry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inquiry not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup inquiry")
	}

	if err := s.repo.UpdateStatus(ctx, id, string(next)); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update inquiry status")
	}
	inquiry.Status = next
	return FromModel(inquiry), nil
}
