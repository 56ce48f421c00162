package clients

import (
	"context"
	"fmt"

	"github.com/tm-acme-shop/acme-shop-storefront/internal/models"
)

// CartClient accesses the server-side cart of the calling session.
type CartClient interface {
	GetCart(ctx context.Context) ([]models.CartItem, error)
	GetSummary(ctx context.Context) (*models.CartSummary, error)
	AddItem(ctx context.Context, productID int64, quantity int) (string, error)
	UpdateItem(ctx context.Context, itemID int64, quantity int) (string, error)
	DeleteItem(ctx context.Context, itemID int64) (string, error)
	Clear(ctx context.Context) (string, error)
}

type HTTPCartClient struct {
	api *APIClient
}

func NewHTTPCartClient(api *APIClient) *HTTPCartClient {
	return &HTTPCartClient{api: api}
}

// GetCart handles GET /cart
func (c *HTTPCartClient) GetCart(ctx context.Context) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := c.api.Get(ctx, "/cart", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *HTTPCartClient) GetSummary(ctx context.Context) (*models.CartSummary, error) {
	var summary models.CartSummary
	if err := c.api.Get(ctx, "/cart/summary", nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (c *HTTPCartClient) AddItem(ctx context.Context, productID int64, quantity int) (string, error) {
	var msg string
	err := c.api.Post(ctx, "/cart", models.AddToCartRequest{ProductID: productID, Quantity: quantity}, &msg)
	return msg, err
}

func (c *HTTPCartClient) UpdateItem(ctx context.Context, itemID int64, quantity int) (string, error) {
	var msg string
	err := c.api.Patch(ctx, fmt.Sprintf("/cart/%d", itemID), models.UpdateCartItemRequest{Quantity: quantity}, &msg)
	return msg, err
}

func (c *HTTPCartClient) DeleteItem(ctx context.Context, itemID int64) (string, error) {
	var msg string
	err := c.api.Delete(ctx, fmt.Sprintf("/cart/%d", itemID), &msg)
	return msg, err
}

func (c *HTTPCartClient) Clear(ctx context.Context) (string, error) {
	var msg string
	err := c.api.Delete(ctx, "/cart", &msg)
	return msg, err
}
