package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tm-acme-shop/acme-shop-storefront/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/clients"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/config"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/events"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/logging"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/metrics"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/models"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/repository"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/session"
)

const (
	msgOrderPlaced        = "Order placed successfully!"
	msgOrderFailed        = "Could not place the order."
	msgSnapshotFailed     = "Could not load the cart."
	msgNewAddressOption   = "Use a new address"
	submitLockTTL         = 30 * time.Second
	checkoutStepContact   = "contact"
	checkoutStepAddress   = "address"
	checkoutStepSubmit    = "submit"
	checkoutOutcomeOK     = "ok"
	checkoutOutcomeFailed = "failed"
	checkoutOutcomeLocal  = "invalid"
)

// AddressOption is one choice on the address step.
type AddressOption struct {
	ID       int64  `json:"id"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

// CheckoutView is what the checkout page renders.
type CheckoutView struct {
	Step            models.CheckoutStep    `json:"step"`
	Authenticated   bool                   `json:"authenticated"`
	Contact         models.ContactDetails  `json:"contact"`
	Shipping        models.ShippingDetails `json:"shipping"`
	AddressOptions  []AddressOption        `json:"addressOptions,omitempty"`
	ShowAddressForm bool                   `json:"showAddressForm"`
	Items           []models.CartItem      `json:"items,omitempty"`
	Total           decimal.Decimal        `json:"total"`
	OrderID         int64                  `json:"orderId,omitempty"`
	Alerts          []Alert                `json:"alerts,omitempty"`
	Redirect        *Redirect              `json:"redirect,omitempty"`
}

// CheckoutService drives the checkout flow and keeps each session's draft
// in the checkout store between requests.
type CheckoutService struct {
	cart          clients.CartClient
	orders        clients.OrderClient
	users         clients.UserClient
	addresses     clients.AddressClient
	images        *imageFetcher
	store         repository.CheckoutStore
	counter       *CartCounter
	publisher     events.Publisher
	metrics       *metrics.Metrics
	redirectDelay time.Duration
	logger        *logging.Logger
}

type CheckoutDeps struct {
	Cart      clients.CartClient
	Orders    clients.OrderClient
	Users     clients.UserClient
	Addresses clients.AddressClient
	Images    clients.ImageClient
	Store     repository.CheckoutStore
	Counter   *CartCounter
	Publisher events.Publisher
	Metrics   *metrics.Metrics
}

func NewCheckoutService(deps CheckoutDeps, cfg *config.Config) *CheckoutService {
	return &CheckoutService{
		cart:          deps.Cart,
		orders:        deps.Orders,
		users:         deps.Users,
		addresses:     deps.Addresses,
		images:        newImageFetcher(deps.Images, cfg.Catalog.ImageConcurrency),
		store:         deps.Store,
		counter:       deps.Counter,
		publisher:     deps.Publisher,
		metrics:       deps.Metrics,
		redirectDelay: cfg.Checkout.RedirectDelay,
		logger:        logging.New("checkout-service"),
	}
}

// Start opens a fresh draft. Logged-in users get their profile and saved
// shipping addresses pre-filled; a failed profile fetch falls back to
// guest checkout.
func (s *CheckoutService) Start(ctx context.Context) (*CheckoutView, error) {
	sessionID, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}

	var profile *models.User
	var saved []models.Address

	if session.FromContext(ctx).Authenticated() {
		profile, err = s.users.GetProfile(ctx)
		if err != nil {
			s.logger.Debug("Profile unavailable, checking out as guest", logging.Fields{
				"session_id": sessionID,
				"error":      err.Error(),
			})
			profile = nil
		} else {
			saved, err = s.addresses.ListByType(ctx, models.AddressTypeShipping)
			if err != nil {
				s.logger.Error("Failed to load saved addresses", logging.Fields{
					"session_id": sessionID,
					"error":      err.Error(),
				})
				saved = nil
			}
		}
	}

	state := NewCheckoutState(profile, saved)
	if err := s.store.SaveCheckout(ctx, sessionID, state); err != nil {
		return nil, fmt.Errorf("save checkout draft: %w", err)
	}

	s.logger.Info("Checkout started", logging.Fields{
		"session_id":    sessionID,
		"authenticated": state.Authenticated,
		"saved_count":   len(saved),
	})
	return buildCheckoutView(state), nil
}

// View returns the current draft.
func (s *CheckoutService) View(ctx context.Context) (*CheckoutView, error) {
	_, co, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return buildCheckoutView(co.State()), nil
}

// SubmitContact validates the contact step locally. It never calls the API.
func (s *CheckoutService) SubmitContact(ctx context.Context, contact models.ContactDetails) (*CheckoutView, error) {
	sessionID, co, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	if err := co.SubmitContact(contact); err != nil {
		s.metrics.CheckoutStep(checkoutStepContact, checkoutOutcomeLocal)
		view := buildCheckoutView(co.State())
		view.Contact = contact
		view.Alerts = append(view.Alerts, errorAlert(apperrors.UserMessage(err, msgContactIncomplete)))
		return view, nil
	}

	if err := s.store.SaveCheckout(ctx, sessionID, co.State()); err != nil {
		return nil, fmt.Errorf("save checkout draft: %w", err)
	}
	s.metrics.CheckoutStep(checkoutStepContact, checkoutOutcomeOK)
	return buildCheckoutView(co.State()), nil
}

// EnterAddress shows the address step. The cart snapshot is fetched the
// first time and reused until the user goes back or submits.
func (s *CheckoutService) EnterAddress(ctx context.Context) (*CheckoutView, error) {
	sessionID, co, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	if !co.NeedsSnapshot() {
		return buildCheckoutView(co.State()), nil
	}

	items, err := s.cart.GetCart(ctx)
	if err != nil {
		s.logger.Error("Failed to snapshot cart", logging.Fields{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		s.metrics.CheckoutStep(checkoutStepAddress, checkoutOutcomeFailed)
		co.Back()
		if err := s.store.SaveCheckout(ctx, sessionID, co.State()); err != nil {
			return nil, fmt.Errorf("save checkout draft: %w", err)
		}
		view := buildCheckoutView(co.State())
		view.Alerts = append(view.Alerts, errorAlert(apperrors.UserMessage(err, msgSnapshotFailed)))
		return view, nil
	}

	co.SetSnapshot(s.images.cartWithImages(ctx, items))
	if err := s.store.SaveCheckout(ctx, sessionID, co.State()); err != nil {
		return nil, fmt.Errorf("save checkout draft: %w", err)
	}
	s.metrics.CheckoutStep(checkoutStepAddress, checkoutOutcomeOK)
	return buildCheckoutView(co.State()), nil
}

// SelectAddress chooses a saved address or, with id 0, the new-address form.
func (s *CheckoutService) SelectAddress(ctx context.Context, addressID int64) (*CheckoutView, error) {
	sessionID, co, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	if err := co.SelectAddress(addressID); err != nil {
		view := buildCheckoutView(co.State())
		view.Alerts = append(view.Alerts, errorAlert(apperrors.UserMessage(err, msgUnknownAddress)))
		return view, nil
	}

	if err := s.store.SaveCheckout(ctx, sessionID, co.State()); err != nil {
		return nil, fmt.Errorf("save checkout draft: %w", err)
	}
	return buildCheckoutView(co.State()), nil
}

// Back returns to the contact step, dropping the cart snapshot.
func (s *CheckoutService) Back(ctx context.Context) (*CheckoutView, error) {
	sessionID, co, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	co.Back()
	if err := s.store.SaveCheckout(ctx, sessionID, co.State()); err != nil {
		return nil, fmt.Errorf("save checkout draft: %w", err)
	}
	return buildCheckoutView(co.State()), nil
}

// Submit places the order from the snapshot. shipping carries typed-in
// fields and is ignored when a saved address is selected. A second submit
// while one is in flight fails with ErrSubmissionInProgress.
func (s *CheckoutService) Submit(ctx context.Context, shipping *models.ShippingDetails) (*CheckoutView, error) {
	sessionID, co, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	if shipping != nil {
		co.SetShipping(*shipping)
	}

	req, err := co.OrderRequest()
	if err != nil {
		s.metrics.CheckoutStep(checkoutStepSubmit, checkoutOutcomeLocal)
		if saveErr := s.store.SaveCheckout(ctx, sessionID, co.State()); saveErr != nil {
			return nil, fmt.Errorf("save checkout draft: %w", saveErr)
		}
		view := buildCheckoutView(co.State())
		view.Alerts = append(view.Alerts, errorAlert(apperrors.UserMessage(err, msgAddressIncomplete)))
		return view, nil
	}

	acquired, err := s.store.AcquireSubmit(ctx, sessionID, submitLockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire submit lock: %w", err)
	}
	if !acquired {
		return nil, apperrors.ErrSubmissionInProgress
	}
	defer func() {
		if err := s.store.ReleaseSubmit(context.WithoutCancel(ctx), sessionID); err != nil {
			s.logger.Error("Failed to release submit lock", logging.Fields{
				"session_id": sessionID,
				"error":      err.Error(),
			})
		}
	}()

	// A submit that finished between load and lock has already cleared the draft.
	if _, err := s.store.GetCheckout(ctx, sessionID); err != nil {
		if errors.Is(err, repository.ErrCacheMiss) {
			return nil, apperrors.ErrCheckoutNotStarted
		}
		return nil, fmt.Errorf("load checkout draft: %w", err)
	}

	s.logger.Info("Placing order", logging.Fields{
		"session_id": sessionID,
		"item_count": len(req.Items),
		"guest":      !co.State().Authenticated,
	})

	order, err := s.orders.CreateOrder(ctx, req)
	if err != nil {
		s.logger.Error("Failed to place order", logging.Fields{
			"session_id":  sessionID,
			"status_code": apperrors.StatusCode(err),
			"error":       err.Error(),
		})
		s.metrics.CheckoutStep(checkoutStepSubmit, checkoutOutcomeFailed)
		if saveErr := s.store.SaveCheckout(ctx, sessionID, co.State()); saveErr != nil {
			return nil, fmt.Errorf("save checkout draft: %w", saveErr)
		}
		view := buildCheckoutView(co.State())
		view.Alerts = append(view.Alerts, errorAlert(apperrors.UserMessage(err, msgOrderFailed)))
		return view, nil
	}

	s.metrics.CheckoutStep(checkoutStepSubmit, checkoutOutcomeOK)
	s.metrics.OrderPlaced()

	view := buildCheckoutView(co.State())
	view.OrderID = order.ID
	view.Alerts = append(view.Alerts, successAlert(msgOrderPlaced))
	view.Redirect = redirectTo(fmt.Sprintf("/payment/%d", order.ID), s.redirectDelay)

	if err := s.store.DeleteCheckout(ctx, sessionID); err != nil {
		s.logger.Error("Failed to clear checkout draft", logging.Fields{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	}

	s.counter.Refresh(ctx)

	if s.publisher != nil {
		if err := s.publisher.PublishOrderPlaced(ctx, sessionID, order); err != nil {
			s.logger.Error("Failed to publish order placed event", logging.Fields{
				"order_id": order.ID,
				"error":    err.Error(),
			})
		}
	}

	s.logger.Info("Order placed", logging.Fields{
		"session_id": sessionID,
		"order_id":   order.ID,
	})
	return view, nil
}

func (s *CheckoutService) load(ctx context.Context) (string, *Checkout, error) {
	sessionID, err := requireSession(ctx)
	if err != nil {
		return "", nil, err
	}

	state, err := s.store.GetCheckout(ctx, sessionID)
	if errors.Is(err, repository.ErrCacheMiss) {
		return "", nil, apperrors.ErrCheckoutNotStarted
	}
	if err != nil {
		return "", nil, fmt.Errorf("load checkout draft: %w", err)
	}
	return sessionID, LoadCheckout(state), nil
}

func buildCheckoutView(state *models.CheckoutState) *CheckoutView {
	view := &CheckoutView{
		Step:          state.Step,
		Authenticated: state.Authenticated,
		Contact:       state.Contact,
		Shipping:      state.Shipping,
		Items:         state.Snapshot,
		Total:         models.CartTotal(state.Snapshot),
	}

	newAddress := state.SelectedAddressID == models.NewAddressOptionID
	view.ShowAddressForm = newAddress || !state.Authenticated

	if state.Authenticated && len(state.SavedAddresses) > 0 {
		for _, addr := range state.SavedAddresses {
			view.AddressOptions = append(view.AddressOptions, AddressOption{
				ID:       addr.ID,
				Label:    addressLabel(addr),
				Selected: addr.ID == state.SelectedAddressID,
			})
		}
		view.AddressOptions = append(view.AddressOptions, AddressOption{
			ID:       models.NewAddressOptionID,
			Label:    msgNewAddressOption,
			Selected: newAddress,
		})
	}
	return view
}

func addressLabel(addr models.Address) string {
	label := addr.Street + " " + addr.HouseNumber
	if addr.ApartmentNumber != "" {
		label += "/" + addr.ApartmentNumber
	}
	return label + ", " + addr.PostalCode + " " + addr.City
}

// requireSession returns the session id from ctx. Every storefront route
// runs behind the session middleware, so a missing identity is a wiring bug.
func requireSession(ctx context.Context) (string, error) {
	id := session.FromContext(ctx)
	if id == nil || id.SessionID == "" {
		return "", apperrors.ErrUnauthorized
	}
	return id.SessionID, nil
}
