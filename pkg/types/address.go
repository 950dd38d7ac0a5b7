package types

import "strings"

// Address is the shipping address document captured at checkout. Stored as a
// jsonb snapshot on the order so later address edits never rewrite history.
type Address struct {
	FullName     string  `json:"fullName" validate:"required"`
	Phone        string  `json:"phone" validate:"required"`
	AddressLine1 string  `json:"addressLine1" validate:"required"`
	AddressLine2 *string `json:"addressLine2,omitempty"`
	District     string  `json:"district" validate:"required"`
	Province     string  `json:"province" validate:"required"`
	PostalCode   string  `json:"postalCode" validate:"required"`
}

// Complete reports whether every required field is present.
func (a Address) Complete() bool {
	required := []string{a.FullName, a.Phone, a.AddressLine1, a.District, a.Province, a.PostalCode}
	for _, field := range required {
		if strings.TrimSpace(field) == "" {
			return false
		}
	}
	return true
}
