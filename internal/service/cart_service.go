package service

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/tm-acme-shop/acme-shop-storefront/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/clients"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/logging"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/models"
)

const (
	msgCartEmpty        = "Your cart is empty."
	msgCartLoadFailed   = "Could not load the cart."
	msgCartUpdateFailed = "Could not update the quantity."
	msgCartDeleteFailed = "Could not remove the item."
	msgCartClearFailed  = "Could not clear the cart."
)

type CartLine struct {
	models.CartItem
	DecrementEnabled bool `json:"decrementEnabled"`
}

// CartView is the cart page.
type CartView struct {
	Items           []CartLine      `json:"items"`
	Total           decimal.Decimal `json:"total"`
	Count           int             `json:"count"`
	Empty           bool            `json:"empty"`
	Message         string          `json:"message,omitempty"`
	CheckoutEnabled bool            `json:"checkoutEnabled"`
	Alerts          []Alert         `json:"alerts,omitempty"`
}

type CartService struct {
	cart    clients.CartClient
	images  *imageFetcher
	counter *CartCounter
	logger  *logging.Logger
}

func NewCartService(cart clients.CartClient, images clients.ImageClient, counter *CartCounter, imageConcurrency int) *CartService {
	return &CartService{
		cart:    cart,
		images:  newImageFetcher(images, imageConcurrency),
		counter: counter,
		logger:  logging.New("cart-service"),
	}
}

// View fetches the cart with images, sorted by product id.
func (s *CartService) View(ctx context.Context) *CartView {
	items, err := s.cart.GetCart(ctx)
	if err != nil {
		s.logger.Error("Failed to load cart", logging.Fields{"error": err.Error()})
		view := buildCartView(nil)
		view.Message = ""
		view.Alerts = append(view.Alerts, errorAlert(apperrors.UserMessage(err, msgCartLoadFailed)))
		return view
	}

	items = s.images.cartWithImages(ctx, items)
	return buildCartView(items)
}

// UpdateQuantity sets a line's quantity. Quantities below one are rejected
// without calling the API.
func (s *CartService) UpdateQuantity(ctx context.Context, itemID int64, quantity int) *CartView {
	if err := ValidateQuantity(quantity); err != nil {
		view := s.View(ctx)
		view.Alerts = append(view.Alerts, errorAlert(apperrors.UserMessage(err, msgCartUpdateFailed)))
		return view
	}

	return s.mutate(ctx, msgCartUpdateFailed, func() error {
		_, err := s.cart.UpdateItem(ctx, itemID, quantity)
		return err
	})
}

func (s *CartService) DeleteItem(ctx context.Context, itemID int64) *CartView {
	return s.mutate(ctx, msgCartDeleteFailed, func() error {
		_, err := s.cart.DeleteItem(ctx, itemID)
		return err
	})
}

func (s *CartService) Clear(ctx context.Context) *CartView {
	return s.mutate(ctx, msgCartClearFailed, func() error {
		_, err := s.cart.Clear(ctx)
		return err
	})
}

// mutate runs one cart call, then refetches the view and refreshes the
// shared counter. On failure the current cart is shown with an alert.
func (s *CartService) mutate(ctx context.Context, fallback string, call func() error) *CartView {
	if err := call(); err != nil {
		s.logger.Error("Cart mutation failed", logging.Fields{"error": err.Error()})
		view := s.View(ctx)
		view.Alerts = append(view.Alerts, errorAlert(apperrors.UserMessage(err, fallback)))
		return view
	}

	view := s.View(ctx)
	s.counter.Refresh(ctx)
	return view
}

func buildCartView(items []models.CartItem) *CartView {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].ProductID < items[j].ProductID
	})

	view := &CartView{
		Items: make([]CartLine, 0, len(items)),
		Total: models.CartTotal(items),
		Count: models.TotalQuantity(items),
	}
	for _, item := range items {
		view.Items = append(view.Items, CartLine{
			CartItem:         item,
			DecrementEnabled: item.Quantity > 1,
		})
	}

	if len(items) == 0 {
		view.Empty = true
		view.Message = msgCartEmpty
	}
	view.CheckoutEnabled = !view.Empty
	return view
}
