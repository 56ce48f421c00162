package models

type CheckoutStep string

const (
	CheckoutStepContact CheckoutStep = "contact"
	CheckoutStepAddress CheckoutStep = "address"
)

// NewAddressOptionID is the synthetic "new address" choice on the address step.
const NewAddressOptionID int64 = 0

type ContactDetails struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required"`
	Phone     string `json:"phone" validate:"required"`
}

type ShippingDetails struct {
	Street          string `json:"street" validate:"required"`
	HouseNumber     string `json:"houseNumber" validate:"required"`
	ApartmentNumber string `json:"apartmentNumber"`
	PostalCode      string `json:"postalCode" validate:"required"`
	City            string `json:"city" validate:"required"`
}

// CheckoutState is the persisted draft of one session's checkout.
// Snapshot is nil until the address step is first shown.
type CheckoutState struct {
	Step              CheckoutStep    `json:"step"`
	Authenticated     bool            `json:"authenticated"`
	Contact           ContactDetails  `json:"contact"`
	Shipping          ShippingDetails `json:"shipping"`
	SavedAddresses    []Address       `json:"savedAddresses,omitempty"`
	SelectedAddressID int64           `json:"selectedAddressId"`
	Snapshot          []CartItem      `json:"snapshot"`
}
