package models

import (
	"time"

	"github.com/autocare/autocare-backend/pkg/enums"
	"github.com/google/uuid"
)

// Inquiry is a contact-form submission awaiting triage.
type Inquiry struct {
	ID        uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	Name      string              `gorm:"column:name;not null"`
	Email     string              `gorm:"column:email;not null"`
	Subject   string              `gorm:"column:subject;not null"`
	Message   string              `gorm:"column:message;not null"`
	Status    enums.InquiryStatus `gorm:"column:status;type:text;not null;default:'new';index"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
