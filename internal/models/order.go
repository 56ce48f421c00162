package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusCreated    OrderStatus = "CREATED"
	OrderStatusConfirmed  OrderStatus = "CONFIRMED"
	OrderStatusInProgress OrderStatus = "IN_PROGRESS"
	OrderStatusCompleted  OrderStatus = "COMPLETED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

var orderStatuses = []OrderStatus{
	OrderStatusCreated,
	OrderStatusConfirmed,
	OrderStatusInProgress,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

// OrderStatuses returns the closed set of order statuses in lifecycle order.
func OrderStatuses() []OrderStatus {
	out := make([]OrderStatus, len(orderStatuses))
	copy(out, orderStatuses)
	return out
}

func (s OrderStatus) Valid() bool {
	for _, known := range orderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

type Order struct {
	ID              int64           `json:"id"`
	UserID          *int64          `json:"userId,omitempty"`
	Status          OrderStatus     `json:"status"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	Items           []OrderItem     `json:"items"`
	CreatedAt       LocalDateTime   `json:"createdAt"`
	IsPaid          bool            `json:"isPaid"`
	PaidAt          *LocalDateTime  `json:"paidAt,omitempty"`
	GuestFirstName  string          `json:"guestFirstName,omitempty"`
	GuestLastName   string          `json:"guestLastName,omitempty"`
	GuestEmail      string          `json:"guestEmail,omitempty"`
	GuestPhone      string          `json:"guestPhoneNumber,omitempty"`
	ShippingAddress *Address        `json:"shippingAddress,omitempty"`
}

type OrderItem struct {
	ID              int64           `json:"id"`
	ProductID       int64           `json:"productId"`
	ProductName     string          `json:"productName"`
	Quantity        int             `json:"quantity"`
	PriceAtPurchase decimal.Decimal `json:"priceAtPurchase"`
	TotalPrice      decimal.Decimal `json:"totalPrice"`
}

// ItemsTotal sums the line totals, which is what the order list shows.
func (o *Order) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.TotalPrice)
	}
	return total
}

// Cancellable reports whether the customer may still cancel the order.
func (o *Order) Cancellable() bool {
	return o.Status == OrderStatusCreated
}

// OrderLine is a productId/quantity pair sent when placing an order.
type OrderLine struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// CreateOrderRequest is the body of POST /orders/public.
type CreateOrderRequest struct {
	GuestFirstName  string      `json:"guestFirstName"`
	GuestLastName   string      `json:"guestLastName"`
	GuestEmail      string      `json:"guestEmail"`
	GuestPhone      string      `json:"guestPhoneNumber"`
	AddressID       *int64      `json:"addressId,omitempty"`
	Street          string      `json:"street"`
	HouseNumber     string      `json:"houseNumber"`
	ApartmentNumber string      `json:"apartmentNumber"`
	PostalCode      string      `json:"postalCode"`
	City            string      `json:"city"`
	Items           []OrderLine `json:"items"`
}

// OrderFilter narrows the admin order listing.
type OrderFilter struct {
	UserID        *int64
	Status        OrderStatus
	CreatedAtFrom *time.Time
	CreatedAtTo   *time.Time
	IsPaid        *bool
	PaidAtFrom    *time.Time
	PaidAtTo      *time.Time
}

type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status"`
}

// MessageResponse is the {message} envelope several endpoints answer with.
type MessageResponse struct {
	Message string `json:"message"`
}
