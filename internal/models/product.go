package models

import (
	"github.com/shopspring/decimal"
)

type ProductType string

const (
	ProductTypeTire      ProductType = "TIRE"
	ProductTypeRim       ProductType = "RIM"
	ProductTypeAccessory ProductType = "ACCESSORY"
	ProductTypeAll       ProductType = "ALL"
)

type AccessoryType string

const (
	AccessorySensor AccessoryType = "SENSOR"
	AccessoryBolt   AccessoryType = "BOLT"
	AccessoryChains AccessoryType = "CHAINS"
	AccessoryCovers AccessoryType = "COVERS"
	AccessoryJack   AccessoryType = "JACK"
	AccessoryTools  AccessoryType = "TOOLS"
)

// ProductBase holds the fields every catalog item shares.
type ProductBase struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Description string          `json:"description"`
	ProductType ProductType     `json:"productType"`
	ImageURLs   []string        `json:"imageUrls,omitempty"`
}

func (b *ProductBase) Base() *ProductBase { return b }

// CatalogItem is implemented by Product, Tire, Rim and Accessory.
type CatalogItem interface {
	Base() *ProductBase
}

// Product is the generic listing shape. The products endpoints report the
// category under "type" rather than "productType".
type Product struct {
	ProductBase
	Type ProductType `json:"type,omitempty"`
}

type Tire struct {
	ProductBase
	Size   string `json:"size"`
	Season string `json:"season"`
}

type Rim struct {
	ProductBase
	Size        string `json:"size"`
	Material    string `json:"material"`
	BoltPattern string `json:"boltPattern"`
}

type Accessory struct {
	ProductBase
	AccessoryType AccessoryType `json:"accessoryType"`
}

// FilterCount is one facet value and how many products carry it.
type FilterCount struct {
	Value string `json:"value"`
	Count int64  `json:"count"`
}

type TireFilters struct {
	Seasons  []FilterCount    `json:"seasons"`
	Sizes    []FilterCount    `json:"sizes"`
	MinPrice *decimal.Decimal `json:"minPrice,omitempty"`
	MaxPrice *decimal.Decimal `json:"maxPrice,omitempty"`
}

type RimFilters struct {
	Material    []FilterCount    `json:"material"`
	Size        []FilterCount    `json:"size"`
	BoltPattern []FilterCount    `json:"boltPattern"`
	MinPrice    *decimal.Decimal `json:"minPrice,omitempty"`
	MaxPrice    *decimal.Decimal `json:"maxPrice,omitempty"`
}

type AccessoryFilters struct {
	AccessoryType []FilterCount    `json:"accessoryType"`
	MinPrice      *decimal.Decimal `json:"minPrice,omitempty"`
	MaxPrice      *decimal.Decimal `json:"maxPrice,omitempty"`
}

// PriceRange is shared by every listing filter.
type PriceRange struct {
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
}

type ProductQuery struct {
	Name string
	Type ProductType
	PriceRange
}

type TireQuery struct {
	Name    string
	Seasons []string
	Sizes   []string
	PriceRange
}

type RimQuery struct {
	Name         string
	Materials    []string
	Sizes        []string
	BoltPatterns []string
	PriceRange
}

type AccessoryQuery struct {
	Name           string
	AccessoryTypes []AccessoryType
	PriceRange
}
