package models

type AddressType string

const (
	AddressTypeBilling     AddressType = "BILLING"
	AddressTypeShipping    AddressType = "SHIPPING"
	AddressTypeResidential AddressType = "RESIDENTIAL"
)

func (t AddressType) Valid() bool {
	switch t {
	case AddressTypeBilling, AddressTypeShipping, AddressTypeResidential:
		return true
	}
	return false
}

type Address struct {
	ID              int64       `json:"id"`
	Street          string      `json:"street"`
	HouseNumber     string      `json:"houseNumber"`
	ApartmentNumber string      `json:"apartmentNumber,omitempty"`
	PostalCode      string      `json:"postalCode"`
	City            string      `json:"city"`
	Type            AddressType `json:"type"`
}

// AddressRequest creates or updates an address book entry.
type AddressRequest struct {
	Street          string      `json:"street" validate:"required"`
	HouseNumber     string      `json:"houseNumber" validate:"required"`
	ApartmentNumber string      `json:"apartmentNumber,omitempty"`
	PostalCode      string      `json:"postalCode" validate:"required"`
	City            string      `json:"city" validate:"required"`
	Type            AddressType `json:"type" validate:"required,oneof=BILLING SHIPPING RESIDENTIAL"`
}

// ShippingAddressRequest attaches a shipping address to an existing order.
type ShippingAddressRequest struct {
	Street          string `json:"street" validate:"required"`
	HouseNumber     string `json:"houseNumber" validate:"required"`
	ApartmentNumber string `json:"apartmentNumber,omitempty"`
	PostalCode      string `json:"postalCode" validate:"required"`
	City            string `json:"city" validate:"required"`
}
