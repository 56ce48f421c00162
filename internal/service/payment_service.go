package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/tm-acme-shop/acme-shop-storefront/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/clients"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/events"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/logging"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/metrics"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/models"
)

const (
	msgOrderNotFound = "Order not found."
	msgPaymentDone   = "Payment completed"
	msgPaymentFailed = "There was a problem with the payment."
	msgShippingSaved = "Shipping address saved."
	msgShippingError = "Could not save the shipping address."
	homePath         = "/"
)

// PaymentView is the payment page of one order.
type PaymentView struct {
	OrderID  int64           `json:"orderId,omitempty"`
	Order    *models.Order   `json:"order,omitempty"`
	Amount   decimal.Decimal `json:"amount"`
	IsPaid   bool            `json:"isPaid"`
	Actions  []Action        `json:"actions"`
	Alerts   []Alert         `json:"alerts,omitempty"`
	Redirect *Redirect       `json:"redirect,omitempty"`
}

// PaymentService handles the payment step. Ownership of the order is
// enforced by the API; this service only reflects its errors.
type PaymentService struct {
	orders    clients.OrderClient
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    *logging.Logger
}

// NewPaymentService creates a new payment service.
func NewPaymentService(orders clients.OrderClient, publisher events.Publisher, m *metrics.Metrics) *PaymentService {
	return &PaymentService{
		orders:    orders,
		publisher: publisher,
		metrics:   m,
		logger:    logging.New("payment-service"),
	}
}

// Load fetches the order named by the route parameter.
func (s *PaymentService) Load(ctx context.Context, rawID string) *PaymentView {
	orderID, err := ParseOrderID(rawID)
	if err != nil {
		return invalidOrderView(err)
	}

	s.logger.Debug("Loading order for payment", logging.Fields{"order_id": orderID})

	order, err := s.orders.GetMyOrder(ctx, orderID)
	if err != nil {
		s.logger.Error("Failed to load order", logging.Fields{
			"order_id":    orderID,
			"status_code": apperrors.StatusCode(err),
			"error":       err.Error(),
		})
		return &PaymentView{
			OrderID: orderID,
			Actions: []Action{},
			Alerts:  []Alert{errorAlert(apperrors.UserMessage(err, msgOrderNotFound))},
		}
	}

	return buildPaymentView(order)
}

// PayNow marks the order paid and sends the user home.
func (s *PaymentService) PayNow(ctx context.Context, rawID string) *PaymentView {
	orderID, err := ParseOrderID(rawID)
	if err != nil {
		return invalidOrderView(err)
	}

	s.logger.Info("Paying order", logging.Fields{"order_id": orderID})

	message, err := s.orders.PayOrder(ctx, orderID)
	if err != nil {
		s.logger.Error("Payment failed", logging.Fields{
			"order_id":    orderID,
			"status_code": apperrors.StatusCode(err),
			"error":       err.Error(),
		})
		view := s.Load(ctx, rawID)
		view.Alerts = append(view.Alerts, errorAlert(apperrors.UserMessage(err, msgPaymentFailed)))
		return view
	}

	s.metrics.PaymentCompleted()
	if s.publisher != nil {
		if err := s.publisher.PublishOrderPaid(ctx, sessionIDFrom(ctx), orderID); err != nil {
			s.logger.Error("Failed to publish order paid event", logging.Fields{
				"order_id": orderID,
				"error":    err.Error(),
			})
		}
	}

	if message == "" {
		message = msgPaymentDone
	}
	return &PaymentView{
		OrderID:  orderID,
		IsPaid:   true,
		Actions:  []Action{},
		Alerts:   []Alert{successAlert(message)},
		Redirect: redirectTo(homePath, 0),
	}
}

// SetShippingAddress attaches a shipping address to the order and returns the
// reloaded payment view. Incomplete addresses never reach the API.
func (s *PaymentService) SetShippingAddress(ctx context.Context, rawID string, req *models.ShippingAddressRequest) *PaymentView {
	orderID, err := ParseOrderID(rawID)
	if err != nil {
		return invalidOrderView(err)
	}

	if err := validateStruct(req); err != nil {
		view := s.Load(ctx, rawID)
		view.Alerts = append(view.Alerts, errorAlert(apperrors.UserMessage(err, msgAddressIncomplete)))
		return view
	}

	address, err := s.orders.AddShippingAddress(ctx, orderID, req)
	if err != nil {
		s.logger.Error("Failed to attach shipping address", logging.Fields{
			"order_id":    orderID,
			"status_code": apperrors.StatusCode(err),
			"error":       err.Error(),
		})
		view := s.Load(ctx, rawID)
		view.Alerts = append(view.Alerts, errorAlert(apperrors.UserMessage(err, msgShippingError)))
		return view
	}

	s.logger.Info("Shipping address attached", logging.Fields{
		"order_id":   orderID,
		"address_id": address.ID,
	})

	view := s.Load(ctx, rawID)
	view.Alerts = append(view.Alerts, successAlert(msgShippingSaved))
	return view
}

// PayLater sends the user home without calling the API.
func (s *PaymentService) PayLater(_ context.Context, rawID string) *PaymentView {
	orderID, err := ParseOrderID(rawID)
	if err != nil {
		return invalidOrderView(err)
	}
	return &PaymentView{
		OrderID:  orderID,
		Actions:  []Action{},
		Redirect: redirectTo(homePath, 0),
	}
}

func buildPaymentView(order *models.Order) *PaymentView {
	view := &PaymentView{
		OrderID: order.ID,
		Order:   order,
		Amount:  order.TotalAmount,
		IsPaid:  order.IsPaid,
		Actions: []Action{},
	}
	if !order.IsPaid {
		view.Actions = []Action{ActionPayNow, ActionPayLater}
	}
	return view
}

func invalidOrderView(err error) *PaymentView {
	return &PaymentView{
		Actions: []Action{},
		Alerts:  []Alert{errorAlert(apperrors.UserMessage(err, "Invalid order id"))},
	}
}
