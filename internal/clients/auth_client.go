package clients

import (
	"context"

	"github.com/tm-acme-shop/acme-shop-storefront/internal/models"
)

// AuthClient exchanges credentials for a bearer token.
type AuthClient interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error)
}

type HTTPAuthClient struct {
	api *APIClient
}

func NewHTTPAuthClient(api *APIClient) *HTTPAuthClient {
	return &HTTPAuthClient{api: api}
}

func (c *HTTPAuthClient) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := c.api.Post(ctx, "/auth/register", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPAuthClient) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := c.api.Post(ctx, "/auth/login", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
