package auth

import (
	"context"
	"fmt"

	"github.com/autocare/autocare-backend/internal/storefront"
)

// StorefrontAuthenticator adapts the login service to the storefront session
// manager's credential-exchange contract.
type StorefrontAuthenticator struct {
	svc Service
}

// NewStorefrontAuthenticator wraps a login service.
func NewStorefrontAuthenticator(svc Service) (*StorefrontAuthenticator, error) {
	if svc == nil {
		return nil, fmt.Errorf("auth service is required")
	}
	return &StorefrontAuthenticator{svc: svc}, nil
}

// Authenticate exchanges credentials for a storefront session.
func (a *StorefrontAuthenticator) Authenticate(ctx context.Context, email, password string) (*storefront.Session, error) {
	resp, err := a.svc.Login(ctx, LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	return &storefront.Session{
		AccessToken: resp.AccessToken,
		User: storefront.Identity{
			ID:        resp.User.ID.String(),
			Email:     resp.User.Email,
			Name:      resp.User.Name,
			Role:      resp.User.Role,
			CreatedAt: resp.User.CreatedAt,
		},
	}, nil
}
