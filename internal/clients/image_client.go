package clients

import (
	"context"
	"fmt"

	"github.com/tm-acme-shop/acme-shop-storefront/internal/models"
)

type ImageClient interface {
	ListImages(ctx context.Context) ([]models.Image, error)
	GetImage(ctx context.Context, id int64) (*models.Image, error)
	ListByProduct(ctx context.Context, productID int64) ([]models.Image, error)
	CreateImage(ctx context.Context, req *models.ImageRequest) (string, error)
	AddToProduct(ctx context.Context, productID int64, reqs []models.ImageRequest) (string, error)
	UpdateImage(ctx context.Context, id int64, req *models.ImageRequest) (string, error)
	DeleteImage(ctx context.Context, id int64) (string, error)
	DeleteByProduct(ctx context.Context, productID int64) (string, error)
}

type HTTPImageClient struct {
	api *APIClient
}

func NewHTTPImageClient(api *APIClient) *HTTPImageClient {
	return &HTTPImageClient{api: api}
}

func (c *HTTPImageClient) ListImages(ctx context.Context) ([]models.Image, error) {
	var images []models.Image
	if err := c.api.Get(ctx, "/image", nil, &images); err != nil {
		return nil, err
	}
	return images, nil
}

func (c *HTTPImageClient) GetImage(ctx context.Context, id int64) (*models.Image, error) {
	var image models.Image
	if err := c.api.Get(ctx, fmt.Sprintf("/image/%d", id), nil, &image); err != nil {
		return nil, err
	}
	return &image, nil
}

func (c *HTTPImageClient) ListByProduct(ctx context.Context, productID int64) ([]models.Image, error) {
	var images []models.Image
	if err := c.api.Get(ctx, fmt.Sprintf("/image/products/%d", productID), nil, &images); err != nil {
		return nil, err
	}
	return images, nil
}

func (c *HTTPImageClient) CreateImage(ctx context.Context, req *models.ImageRequest) (string, error) {
	var msg string
	err := c.api.Post(ctx, "/admin/image", req, &msg)
	return msg, err
}

func (c *HTTPImageClient) AddToProduct(ctx context.Context, productID int64, reqs []models.ImageRequest) (string, error) {
	var msg string
	err := c.api.Post(ctx, fmt.Sprintf("/admin/images/product/%d", productID), reqs, &msg)
	return msg, err
}

func (c *HTTPImageClient) UpdateImage(ctx context.Context, id int64, req *models.ImageRequest) (string, error) {
	var msg string
	err := c.api.Patch(ctx, fmt.Sprintf("/admin/image/%d", id), req, &msg)
	return msg, err
}

func (c *HTTPImageClient) DeleteImage(ctx context.Context, id int64) (string, error) {
	var msg string
	err := c.api.Delete(ctx, fmt.Sprintf("/admin/image/%d", id), &msg)
	return msg, err
}

func (c *HTTPImageClient) DeleteByProduct(ctx context.Context, productID int64) (string, error) {
	var msg string
	err := c.api.Delete(ctx, fmt.Sprintf("/admin/image/products/%d", productID), &msg)
	return msg, err
}
