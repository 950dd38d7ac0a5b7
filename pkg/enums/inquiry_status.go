package enums

import (
	"fmt"
	"strings"
)

// InquiryStatus tracks a contact-form inquiry through triage.
type InquiryStatus string

const (
	InquiryStatusNew     InquiryStatus = "new"
	InquiryStatusReplied InquiryStatus = "replied"
	InquiryStatusClosed  InquiryStatus = "closed"
)

func (s InquiryStatus) IsValid() bool {
	switch s {
	case InquiryStatusNew, InquiryStatusReplied, InquiryStatusClosed:
		return true
	}
	return false
}

func (s InquiryStatus) String() string {
	return string(s)
}

// ParseInquiryStatus normalizes and validates a status string.
func ParseInquiryStatus(value string) (InquiryStatus, error) {
	status := InquiryStatus(strings.ToLower(strings.TrimSpace(value)))
	if !status.IsValid() {
		return "", fmt.Errorf("invalid inquiry status %q", value)
	}
	return status, nil
}
