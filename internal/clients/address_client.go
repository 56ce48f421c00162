package clients

import (
	"context"
	"fmt"
	"net/url"

	"github.com/tm-acme-shop/acme-shop-storefront/internal/models"
)

// AddressClient manages the logged-in user's address book.
type AddressClient interface {
	ListAddresses(ctx context.Context) ([]models.Address, error)
	GetAddress(ctx context.Context, id int64) (*models.Address, error)
	ListByType(ctx context.Context, t models.AddressType) ([]models.Address, error)
	CreateAddress(ctx context.Context, req *models.AddressRequest) (string, error)
	UpdateAddress(ctx context.Context, id int64, req *models.AddressRequest) (string, error)
	DeleteAddress(ctx context.Context, id int64) (string, error)
}

type HTTPAddressClient struct {
	api *APIClient
}

func NewHTTPAddressClient(api *APIClient) *HTTPAddressClient {
	return &HTTPAddressClient{api: api}
}

func (c *HTTPAddressClient) ListAddresses(ctx context.Context) ([]models.Address, error) {
	var addresses []models.Address
	if err := c.api.Get(ctx, "/address", nil, &addresses); err != nil {
		return nil, err
	}
	return addresses, nil
}

func (c *HTTPAddressClient) GetAddress(ctx context.Context, id int64) (*models.Address, error) {
	var address models.Address
	if err := c.api.Get(ctx, fmt.Sprintf("/address/%d", id), nil, &address); err != nil {
		return nil, err
	}
	return &address, nil
}

func (c *HTTPAddressClient) ListByType(ctx context.Context, t models.AddressType) ([]models.Address, error) {
	var addresses []models.Address
	if err := c.api.Get(ctx, "/address/type", url.Values{"type": {string(t)}}, &addresses); err != nil {
		return nil, err
	}
	return addresses, nil
}

func (c *HTTPAddressClient) CreateAddress(ctx context.Context, req *models.AddressRequest) (string, error) {
	var msg string
	err := c.api.Post(ctx, "/address", req, &msg)
	return msg, err
}

func (c *HTTPAddressClient) UpdateAddress(ctx context.Context, id int64, req *models.AddressRequest) (string, error) {
	var msg string
	err := c.api.Patch(ctx, fmt.Sprintf("/address/%d", id), req, &msg)
	return msg, err
}

func (c *HTTPAddressClient) DeleteAddress(ctx context.Context, id int64) (string, error) {
	var msg string
	err := c.api.Delete(ctx, fmt.Sprintf("/address/%d", id), &msg)
	return msg, err
}
