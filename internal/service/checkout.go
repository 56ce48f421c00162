package service

import (
	"github.com/tm-acme-shop/acme-shop-storefront/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/models"
)

const (
	msgContactIncomplete = "Fill in your contact details."
	msgAddressIncomplete = "Fill in the shipping address."
	msgNotOnAddressStep  = "Complete the contact step first."
	msgUnknownAddress    = "Unknown address."
)

// Checkout is the two-step checkout state machine. It makes no network
// calls; CheckoutService feeds it data and persists its state.
type Checkout struct {
	state *models.CheckoutState
}

// NewCheckoutState starts a draft on the contact step. A non-nil profile
// pre-fills the contact fields; the first saved address is pre-selected.
func NewCheckoutState(profile *models.User, saved []models.Address) *models.CheckoutState {
	state := &models.CheckoutState{Step: models.CheckoutStepContact}
	if profile == nil {
		return state
	}

	state.Authenticated = true
	state.Contact = models.ContactDetails{
		FirstName: profile.FirstName,
		LastName:  profile.LastName,
		Email:     profile.Email,
		Phone:     profile.PhoneNumber,
	}
	state.SavedAddresses = saved
	if len(saved) > 0 {
		state.SelectedAddressID = saved[0].ID
		state.Shipping = shippingFromAddress(saved[0])
	}
	return state
}

func LoadCheckout(state *models.CheckoutState) *Checkout {
	return &Checkout{state: state}
}

func (c *Checkout) State() *models.CheckoutState {
	return c.state
}

// SubmitContact validates the four contact fields and moves to the
// address step. On failure the step does not change.
func (c *Checkout) SubmitContact(contact models.ContactDetails) error {
	if err := validateStruct(&contact); err != nil {
		return apperrors.NewValidationError(fieldOf(err), msgContactIncomplete)
	}
	c.state.Contact = contact
	c.state.Step = models.CheckoutStepAddress
	return nil
}

// NeedsSnapshot reports whether the cart still has to be fetched for the
// address step.
func (c *Checkout) NeedsSnapshot() bool {
	return c.state.Step == models.CheckoutStepAddress && c.state.Snapshot == nil
}

// SetSnapshot freezes the cart lines that will be ordered.
func (c *Checkout) SetSnapshot(items []models.CartItem) {
	if items == nil {
		items = []models.CartItem{}
	}
	c.state.Snapshot = items
}

// Back returns to the contact step and discards the cart snapshot.
func (c *Checkout) Back() {
	c.state.Step = models.CheckoutStepContact
	c.state.Snapshot = nil
}

// SelectAddress picks a saved address, copying its fields, or the
// new-address option, which clears them.
func (c *Checkout) SelectAddress(id int64) error {
	if id == models.NewAddressOptionID {
		c.state.SelectedAddressID = models.NewAddressOptionID
		c.state.Shipping = models.ShippingDetails{}
		return nil
	}

	for _, addr := range c.state.SavedAddresses {
		if addr.ID == id {
			c.state.SelectedAddressID = id
			c.state.Shipping = shippingFromAddress(addr)
			return nil
		}
	}
	return apperrors.NewValidationError("addressId", msgUnknownAddress)
}

// UsingNewAddress reports whether shipping fields are typed in rather
// than taken from a saved address.
func (c *Checkout) UsingNewAddress() bool {
	return c.state.SelectedAddressID == models.NewAddressOptionID
}

// SetShipping records typed-in address fields. They are ignored while a
// saved address is selected.
func (c *Checkout) SetShipping(details models.ShippingDetails) {
	if c.UsingNewAddress() {
		c.state.Shipping = details
	}
}

// OrderRequest validates the address step and builds the order body from
// the snapshot. Guest contact fields are sent only for guests.
func (c *Checkout) OrderRequest() (*models.CreateOrderRequest, error) {
	if c.state.Step != models.CheckoutStepAddress || c.state.Snapshot == nil {
		return nil, apperrors.NewValidationError("step", msgNotOnAddressStep)
	}
	if err := validateStruct(&c.state.Shipping); err != nil {
		return nil, apperrors.NewValidationError(fieldOf(err), msgAddressIncomplete)
	}

	shipping := c.state.Shipping
	req := &models.CreateOrderRequest{
		Street:          shipping.Street,
		HouseNumber:     shipping.HouseNumber,
		ApartmentNumber: shipping.ApartmentNumber,
		PostalCode:      shipping.PostalCode,
		City:            shipping.City,
		Items:           models.OrderLines(c.state.Snapshot),
	}

	if !c.state.Authenticated {
		req.GuestFirstName = c.state.Contact.FirstName
		req.GuestLastName = c.state.Contact.LastName
		req.GuestEmail = c.state.Contact.Email
		req.GuestPhone = c.state.Contact.Phone
	}

	if !c.UsingNewAddress() {
		id := c.state.SelectedAddressID
		req.AddressID = &id
	}

	return req, nil
}

func shippingFromAddress(addr models.Address) models.ShippingDetails {
	return models.ShippingDetails{
		Street:          addr.Street,
		HouseNumber:     addr.HouseNumber,
		ApartmentNumber: addr.ApartmentNumber,
		PostalCode:      addr.PostalCode,
		City:            addr.City,
	}
}

func fieldOf(err error) string {
	if ve, ok := err.(*apperrors.ValidationError); ok {
		return ve.Field
	}
	return ""
}
