package clients

import (
	"context"
	"fmt"

	"github.com/tm-acme-shop/acme-shop-storefront/internal/models"
)

// OrderClient covers customer and admin order endpoints.
type OrderClient interface {
	CreateOrder(ctx context.Context, req *models.CreateOrderRequest) (*models.Order, error)
	ListMyOrders(ctx context.Context) ([]models.Order, error)
	GetMyOrder(ctx context.Context, orderID int64) (*models.Order, error)
	CancelOrder(ctx context.Context, orderID int64) (string, error)
	PayOrder(ctx context.Context, orderID int64) (string, error)
	AddShippingAddress(ctx context.Context, orderID int64, req *models.ShippingAddressRequest) (*models.Address, error)

	ListOrders(ctx context.Context, filter models.OrderFilter, paging models.Paging) (*models.Page[models.Order], error)
	GetOrder(ctx context.Context, orderID int64) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, status models.OrderStatus) (string, error)
}

type HTTPOrderClient struct {
	api *APIClient
}

func NewHTTPOrderClient(api *APIClient) *HTTPOrderClient {
	return &HTTPOrderClient{api: api}
}

// CreateOrder places an order for a guest or the logged-in user.
func (c *HTTPOrderClient) CreateOrder(ctx context.Context, req *models.CreateOrderRequest) (*models.Order, error) {
	var order models.Order
	if err := c.api.Post(ctx, "/orders/public", req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *HTTPOrderClient) ListMyOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := c.api.Get(ctx, "/orders/user", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// GetMyOrder fetches an order the session owns. Ownership is checked remotely.
func (c *HTTPOrderClient) GetMyOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	var order models.Order
	if err := c.api.Get(ctx, fmt.Sprintf("/orders/public/user/%d", orderID), nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *HTTPOrderClient) CancelOrder(ctx context.Context, orderID int64) (string, error) {
	var msg string
	err := c.api.Patch(ctx, fmt.Sprintf("/orders/%d/cancel", orderID), nil, &msg)
	return msg, err
}

func (c *HTTPOrderClient) PayOrder(ctx context.Context, orderID int64) (string, error) {
	var msg string
	err := c.api.Patch(ctx, fmt.Sprintf("/orders/public/%d/pay", orderID), nil, &msg)
	return msg, err
}

func (c *HTTPOrderClient) AddShippingAddress(ctx context.Context, orderID int64, req *models.ShippingAddressRequest) (*models.Address, error) {
	var address models.Address
	if err := c.api.Post(ctx, fmt.Sprintf("/shippingAddress/my_order/%d", orderID), req, &address); err != nil {
		return nil, err
	}
	return &address, nil
}

func (c *HTTPOrderClient) ListOrders(ctx context.Context, filter models.OrderFilter, paging models.Paging) (*models.Page[models.Order], error) {
	var page models.Page[models.Order]
	if err := c.api.Get(ctx, "/orders/admin", OrderFilterValues(filter, paging), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *HTTPOrderClient) GetOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	var order models.Order
	if err := c.api.Get(ctx, fmt.Sprintf("/orders/admin/%d", orderID), nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *HTTPOrderClient) UpdateOrderStatus(ctx context.Context, orderID int64, status models.OrderStatus) (string, error) {
	var msg string
	err := c.api.Patch(ctx, fmt.Sprintf("/orders/admin/%d/status", orderID), models.UpdateOrderStatusRequest{Status: status}, &msg)
	return msg, err
}
