package models

import (
	"github.com/shopspring/decimal"
)

// CartItem is a server-owned cart line. TotalPrice is computed remotely.
type CartItem struct {
	ID           int64           `json:"id"`
	ProductID    int64           `json:"productId"`
	ProductName  string          `json:"productName"`
	Quantity     int             `json:"quantity"`
	PricePerItem decimal.Decimal `json:"pricePerItem"`
	TotalPrice   decimal.Decimal `json:"totalPrice"`
	ImageURL     string          `json:"imageUrl,omitempty"`
}

// CartSummary is the body of GET /cart/summary.
type CartSummary struct {
	Items []CartItem      `json:"items"`
	Total decimal.Decimal `json:"total"`
}

type AddToCartRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// TotalQuantity sums the quantities of all lines.
func TotalQuantity(items []CartItem) int {
	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	return total
}

// CartTotal sums the server-computed line totals.
func CartTotal(items []CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.TotalPrice)
	}
	return total
}

// OrderLines converts cart lines into the productId/quantity pairs of an order.
func OrderLines(items []CartItem) []OrderLine {
	lines := make([]OrderLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, OrderLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return lines
}
