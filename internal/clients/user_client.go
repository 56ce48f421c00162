package clients

import (
	"context"
	"fmt"

	"github.com/tm-acme-shop/acme-shop-storefront/internal/models"
)

// UserClient provides the profile endpoints and the admin user directory.
type UserClient interface {
	GetProfile(ctx context.Context) (*models.User, error)
	UpdateProfile(ctx context.Context, req *models.UpdateUserRequest) (string, error)
	ChangePassword(ctx context.Context, req *models.ChangePasswordRequest) (string, error)
	DeletePersonalData(ctx context.Context) (string, error)
	DeleteAccount(ctx context.Context) (string, error)

	ListUsers(ctx context.Context, filter models.UserFilter, paging models.Paging) (*models.Page[models.User], error)
	GetUser(ctx context.Context, userID int64) (*models.User, error)
	DeleteUser(ctx context.Context, userID int64) (string, error)
	AddRole(ctx context.Context, userID, roleID int64) (string, error)
	RemoveRole(ctx context.Context, userID, roleID int64) (string, error)
}

// HTTPUserClient implements UserClient over the storefront API.
type HTTPUserClient struct {
	api *APIClient
}

// NewHTTPUserClient creates a new HTTP-based user client.
func NewHTTPUserClient(api *APIClient) *HTTPUserClient {
	return &HTTPUserClient{api: api}
}

// GetProfile retrieves the logged-in user.
func (c *HTTPUserClient) GetProfile(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.api.Get(ctx, "/users/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *HTTPUserClient) UpdateProfile(ctx context.Context, req *models.UpdateUserRequest) (string, error) {
	var msg string
	err := c.api.Patch(ctx, "/users/me/update", req, &msg)
	return msg, err
}

func (c *HTTPUserClient) ChangePassword(ctx context.Context, req *models.ChangePasswordRequest) (string, error) {
	var msg string
	err := c.api.Patch(ctx, "/users/me/change-password", req, &msg)
	return msg, err
}

func (c *HTTPUserClient) DeletePersonalData(ctx context.Context) (string, error) {
	var msg string
	err := c.api.Delete(ctx, "/users/me/delete-user-details", &msg)
	return msg, err
}

func (c *HTTPUserClient) DeleteAccount(ctx context.Context) (string, error) {
	var msg string
	err := c.api.Delete(ctx, "/users/me/delete", &msg)
	return msg, err
}

func (c *HTTPUserClient) ListUsers(ctx context.Context, filter models.UserFilter, paging models.Paging) (*models.Page[models.User], error) {
	var page models.Page[models.User]
	if err := c.api.Get(ctx, "/admin/users", UserFilterValues(filter, paging), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *HTTPUserClient) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	var user models.User
	if err := c.api.Get(ctx, fmt.Sprintf("/admin/users/%d", userID), nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *HTTPUserClient) DeleteUser(ctx context.Context, userID int64) (string, error) {
	var msg string
	err := c.api.Delete(ctx, fmt.Sprintf("/admin/users/%d", userID), &msg)
	return msg, err
}

func (c *HTTPUserClient) AddRole(ctx context.Context, userID, roleID int64) (string, error) {
	var msg string
	err := c.api.Post(ctx, fmt.Sprintf("/admin/users/%d/role/%d", userID, roleID), nil, &msg)
	return msg, err
}

func (c *HTTPUserClient) RemoveRole(ctx context.Context, userID, roleID int64) (string, error) {
	var msg string
	err := c.api.Delete(ctx, fmt.Sprintf("/admin/users/%d/role/%d", userID, roleID), &msg)
	return msg, err
}
