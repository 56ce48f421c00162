package service

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/tm-acme-shop/acme-shop-storefront/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/clients"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/events"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/logging"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/metrics"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/models"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/repository"
)

const (
	msgOrdersLoadFailed = "Could not load your orders."
	msgNoOrders         = "You have no orders yet."
	msgCancelPrompt     = "Are you sure you want to cancel this order?"
	msgCancelled        = "Order cancelled."
	msgCancelFailed     = "Could not cancel the order."
	msgCancelNotAllowed = "This order can no longer be cancelled."
)

// OrderCard is one order on the order list.
type OrderCard struct {
	models.Order
	ComputedTotal decimal.Decimal `json:"computedTotal"`
	Actions       []Action        `json:"actions"`
}

// Confirmation asks the user to confirm a destructive action.
type Confirmation struct {
	OrderID int64  `json:"orderId"`
	Prompt  string `json:"prompt"`
}

// OrdersView is the customer's order list.
type OrdersView struct {
	Orders  []OrderCard   `json:"orders"`
	Empty   bool          `json:"empty"`
	Message string        `json:"message,omitempty"`
	Confirm *Confirmation `json:"confirm,omitempty"`
	Alerts  []Alert       `json:"alerts,omitempty"`
}

// OrderService handles the order list and customer cancellation. The list
// a session is looking at is kept in the orders view store, and a
// cancellation is written to it only after the API accepts it.
type OrderService struct {
	orders    clients.OrderClient
	views     repository.OrdersViewStore
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    *logging.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(orders clients.OrderClient, views repository.OrdersViewStore, publisher events.Publisher, m *metrics.Metrics) *OrderService {
	return &OrderService{
		orders:    orders,
		views:     views,
		publisher: publisher,
		metrics:   m,
		logger:    logging.New("order-service"),
	}
}

// List fetches the user's orders from the API.
func (s *OrderService) List(ctx context.Context) *OrdersView {
	orders, err := s.fetch(ctx)
	if err != nil {
		view := buildOrdersView(nil)
		view.Message = ""
		view.Alerts = append(view.Alerts, errorAlert(apperrors.UserMessage(err, msgOrdersLoadFailed)))
		return view
	}
	return buildOrdersView(orders)
}

// RequestCancel asks for confirmation before cancelling. Only CREATED
// orders can be cancelled.
func (s *OrderService) RequestCancel(ctx context.Context, orderID int64) *OrdersView {
	orders, err := s.current(ctx)
	if err != nil {
		view := buildOrdersView(nil)
		view.Alerts = append(view.Alerts, errorAlert(apperrors.UserMessage(err, msgOrdersLoadFailed)))
		return view
	}

	view := buildOrdersView(orders)
	order := findOrder(orders, orderID)
	if order == nil || !order.Cancellable() {
		view.Alerts = append(view.Alerts, errorAlert(msgCancelNotAllowed))
		return view
	}

	view.Confirm = &Confirmation{OrderID: orderID, Prompt: msgCancelPrompt}
	return view
}

// ConfirmCancel cancels the order. The shown status changes only after
// the API succeeds; on failure the list is refetched.
func (s *OrderService) ConfirmCancel(ctx context.Context, orderID int64) *OrdersView {
	orders, err := s.current(ctx)
	if err != nil {
		view := buildOrdersView(nil)
		view.Alerts = append(view.Alerts, errorAlert(apperrors.UserMessage(err, msgOrdersLoadFailed)))
		return view
	}

	order := findOrder(orders, orderID)
	if order == nil || !order.Cancellable() {
		view := buildOrdersView(orders)
		view.Alerts = append(view.Alerts, errorAlert(msgCancelNotAllowed))
		return view
	}

	s.logger.Info("Cancelling order", logging.Fields{"order_id": orderID})

	message, err := s.orders.CancelOrder(ctx, orderID)
	if err != nil {
		s.logger.Error("Failed to cancel order", logging.Fields{
			"order_id":    orderID,
			"status_code": apperrors.StatusCode(err),
			"error":       err.Error(),
		})
		view := s.List(ctx)
		view.Alerts = append(view.Alerts, errorAlert(apperrors.UserMessage(err, msgCancelFailed)))
		return view
	}

	order.Status = models.OrderStatusCancelled
	s.save(ctx, orders)
	s.metrics.OrderCancelled()

	if s.publisher != nil {
		if err := s.publisher.PublishOrderCancelled(ctx, sessionIDFrom(ctx), orderID); err != nil {
			s.logger.Error("Failed to publish order cancelled event", logging.Fields{
				"order_id": orderID,
				"error":    err.Error(),
			})
		}
	}

	if message == "" {
		message = msgCancelled
	}
	view := buildOrdersView(orders)
	view.Alerts = append(view.Alerts, successAlert(message))
	return view
}

// fetch loads the authoritative list and remembers it for the session.
func (s *OrderService) fetch(ctx context.Context) ([]models.Order, error) {
	orders, err := s.orders.ListMyOrders(ctx)
	if err != nil {
		s.logger.Error("Failed to load orders", logging.Fields{
			"status_code": apperrors.StatusCode(err),
			"error":       err.Error(),
		})
		return nil, err
	}
	s.save(ctx, orders)
	return orders, nil
}

// current returns the list the session is looking at, fetching it when
// nothing is stored.
func (s *OrderService) current(ctx context.Context) ([]models.Order, error) {
	sessionID := sessionIDFrom(ctx)
	if sessionID != "" {
		orders, err := s.views.GetOrdersView(ctx, sessionID)
		if err == nil {
			return orders, nil
		}
		if !errors.Is(err, repository.ErrCacheMiss) {
			s.logger.Error("Failed to read orders view", logging.Fields{
				"session_id": sessionID,
				"error":      err.Error(),
			})
		}
	}
	return s.fetch(ctx)
}

func (s *OrderService) save(ctx context.Context, orders []models.Order) {
	sessionID := sessionIDFrom(ctx)
	if sessionID == "" {
		return
	}
	if err := s.views.SaveOrdersView(ctx, sessionID, orders); err != nil {
		s.logger.Error("Failed to save orders view", logging.Fields{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	}
}

func findOrder(orders []models.Order, id int64) *models.Order {
	for i := range orders {
		if orders[i].ID == id {
			return &orders[i]
		}
	}
	return nil
}

// OrderActions lists what the customer may do with an order.
func OrderActions(order *models.Order) []Action {
	actions := []Action{}
	if order.Status == models.OrderStatusCreated && !order.IsPaid {
		actions = append(actions, ActionPay)
	}
	if order.Cancellable() {
		actions = append(actions, ActionCancel)
	}
	return actions
}

func buildOrdersView(orders []models.Order) *OrdersView {
	view := &OrdersView{Orders: make([]OrderCard, 0, len(orders))}
	for i := range orders {
		view.Orders = append(view.Orders, OrderCard{
			Order:         orders[i],
			ComputedTotal: orders[i].ItemsTotal(),
			Actions:       OrderActions(&orders[i]),
		})
	}
	if len(orders) == 0 {
		view.Empty = true
		view.Message = msgNoOrders
	}
	return view
}
