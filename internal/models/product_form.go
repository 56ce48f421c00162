package models

import (
	"github.com/shopspring/decimal"
)

// ProductFields are the attributes common to every admin product form.
type ProductFields struct {
	Name        string          `json:"name" validate:"required"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Stock       int             `json:"stock" validate:"gte=0"`
	Type        ProductType     `json:"type"`
}

// ProductForm is the admin create/update payload. The concrete variant
// decides the admin endpoint; callers switch on it exhaustively.
type ProductForm interface {
	productForm()
	Fields() *ProductFields
}

type GenericProductForm struct {
	ProductFields
}

type TireForm struct {
	ProductFields
	Season string `json:"season" validate:"required"`
	Size   string `json:"size" validate:"required"`
}

type RimForm struct {
	ProductFields
	Material    string `json:"material" validate:"required"`
	Size        string `json:"size" validate:"required"`
	BoltPattern string `json:"boltPattern" validate:"required"`
}

type AccessoryForm struct {
	ProductFields
	AccessoryType AccessoryType `json:"accessoryType" validate:"required,oneof=SENSOR BOLT CHAINS COVERS JACK TOOLS"`
}

func (*GenericProductForm) productForm() {}
func (*TireForm) productForm()           {}
func (*RimForm) productForm()            {}
func (*AccessoryForm) productForm()      {}

func (f *GenericProductForm) Fields() *ProductFields { return &f.ProductFields }
func (f *TireForm) Fields() *ProductFields           { return &f.ProductFields }
func (f *RimForm) Fields() *ProductFields            { return &f.ProductFields }
func (f *AccessoryForm) Fields() *ProductFields      { return &f.ProductFields }

// NewProductForm returns an empty form for the given category, with the
// type discriminator already set. ALL and unknown types map to the generic form.
func NewProductForm(t ProductType) ProductForm {
	switch t {
	case ProductTypeTire:
		return &TireForm{ProductFields: ProductFields{Type: ProductTypeTire}}
	case ProductTypeRim:
		return &RimForm{ProductFields: ProductFields{Type: ProductTypeRim}}
	case ProductTypeAccessory:
		return &AccessoryForm{ProductFields: ProductFields{Type: ProductTypeAccessory}}
	default:
		return &GenericProductForm{ProductFields: ProductFields{Type: ProductTypeAll}}
	}
}
