package enums

import (
	"fmt"
	"strings"
)

// UserRole represents the account-level permission role.
type UserRole string

const (
	UserRoleUser  UserRole = "USER"
	UserRoleAdmin UserRole = "ADMIN"
)

func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleUser, UserRoleAdmin:
		return true
	}
	return false
}

func (r UserRole) String() string {
	return string(r)
}

// ParseUserRole normalizes and validates a role string.
func ParseUserRole(value string) (UserRole, error) {
	role := UserRole(strings.ToUpper(strings.TrimSpace(value)))
	if !role.IsValid() {
		return "", fmt.Errorf("invalid user role %q", value)
	}
	return role, nil
}
