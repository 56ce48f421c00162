package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/gosimple/slug"

	"github.com/tm-acme-shop/acme-shop-storefront/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/clients"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/logging"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/models"
)

const (
	msgAddedToCart    = "Product added to cart"
	msgAddFailed      = "Could not add the product to the cart"
	msgOutOfStock     = "This product is out of stock."
	msgInvalidProduct = "Invalid product"
)

// Card is one catalog item on a listing page.
type Card[T any] struct {
	Item     T      `json:"item"`
	ImageURL string `json:"imageUrl,omitempty"`
	Path     string `json:"path"`
}

// Listing is one page of catalog cards.
type Listing[T any] struct {
	Cards         []Card[T] `json:"cards"`
	TotalPages    int       `json:"totalPages"`
	TotalElements int64     `json:"totalElements"`
	Number        int       `json:"number"`
	Size          int       `json:"size"`
}

// ProductDetail is the product page.
type ProductDetail struct {
	Item        models.CatalogItem `json:"item"`
	Images      []models.Image     `json:"images"`
	MaxQuantity int                `json:"maxQuantity"`
	Path        string             `json:"path"`
}

// AddToCartResult reports what was added and the refreshed badge count.
type AddToCartResult struct {
	Quantity  int     `json:"quantity"`
	CartCount int     `json:"cartCount"`
	Alerts    []Alert `json:"alerts,omitempty"`
}

// CatalogService serves listings, filter facets and product pages.
type CatalogService struct {
	products clients.ProductClient
	images   clients.ImageClient
	cart     clients.CartClient
	fetcher  *imageFetcher
	counter  *CartCounter
	pageSize int
	logger   *logging.Logger
}

func NewCatalogService(products clients.ProductClient, images clients.ImageClient, cart clients.CartClient, counter *CartCounter, imageConcurrency, pageSize int) *CatalogService {
	return &CatalogService{
		products: products,
		images:   images,
		cart:     cart,
		fetcher:  newImageFetcher(images, imageConcurrency),
		counter:  counter,
		pageSize: pageSize,
		logger:   logging.New("catalog-service"),
	}
}

func (s *CatalogService) paging(p models.Paging) models.Paging {
	if p.SizePerPage <= 0 && s.pageSize > 0 {
		p.SizePerPage = s.pageSize
	}
	return p.Normalize()
}

func (s *CatalogService) Products(ctx context.Context, q models.ProductQuery, p models.Paging) (*Listing[models.Product], error) {
	page, err := s.products.ListProducts(ctx, q, s.paging(p))
	if err != nil {
		return nil, s.listingFailed("products", err)
	}
	return buildListing(ctx, s.fetcher, page), nil
}

// Search finds products by name.
func (s *CatalogService) Search(ctx context.Context, query string, p models.Paging) (*Listing[models.Product], error) {
	page, err := s.products.SearchProducts(ctx, strings.TrimSpace(query), s.paging(p))
	if err != nil {
		return nil, s.listingFailed("search", err)
	}
	return buildListing(ctx, s.fetcher, page), nil
}

func (s *CatalogService) Tires(ctx context.Context, q models.TireQuery, p models.Paging) (*Listing[models.Tire], error) {
	page, err := s.products.ListTires(ctx, q, s.paging(p))
	if err != nil {
		return nil, s.listingFailed("tires", err)
	}
	return buildListing(ctx, s.fetcher, page), nil
}

func (s *CatalogService) Rims(ctx context.Context, q models.RimQuery, p models.Paging) (*Listing[models.Rim], error) {
	page, err := s.products.ListRims(ctx, q, s.paging(p))
	if err != nil {
		return nil, s.listingFailed("rims", err)
	}
	return buildListing(ctx, s.fetcher, page), nil
}

func (s *CatalogService) Accessories(ctx context.Context, q models.AccessoryQuery, p models.Paging) (*Listing[models.Accessory], error) {
	page, err := s.products.ListAccessories(ctx, q, s.paging(p))
	if err != nil {
		return nil, s.listingFailed("accessories", err)
	}
	return buildListing(ctx, s.fetcher, page), nil
}

func (s *CatalogService) TireFilters(ctx context.Context) (*models.TireFilters, error) {
	return s.products.TireFilters(ctx)
}

func (s *CatalogService) RimFilters(ctx context.Context) (*models.RimFilters, error) {
	return s.products.RimFilters(ctx)
}

func (s *CatalogService) AccessoryFilters(ctx context.Context) (*models.AccessoryFilters, error) {
	return s.products.AccessoryFilters(ctx)
}

// Product loads one item with its images. An image failure leaves the
// gallery empty.
func (s *CatalogService) Product(ctx context.Context, t models.ProductType, id int64) (*ProductDetail, error) {
	item, err := s.products.GetProduct(ctx, t, id)
	if err != nil {
		s.logger.Error("Failed to load product", logging.Fields{
			"product_id":   id,
			"product_type": t,
			"status_code":  apperrors.StatusCode(err),
			"error":        err.Error(),
		})
		return nil, err
	}

	images, err := s.images.ListByProduct(ctx, id)
	if err != nil {
		s.logger.Debug("Product images unavailable", logging.Fields{
			"product_id": id,
			"error":      err.Error(),
		})
		images = nil
	}
	if images == nil {
		images = []models.Image{}
	}

	base := item.Base()
	return &ProductDetail{
		Item:        item,
		Images:      images,
		MaxQuantity: base.Stock,
		Path:        ProductPath(item),
	}, nil
}

// AddToCart adds the product, clamping the quantity to [1, stock], and
// refreshes the cart badge.
func (s *CatalogService) AddToCart(ctx context.Context, t models.ProductType, productID int64, quantity int) *AddToCartResult {
	if productID <= 0 {
		return &AddToCartResult{Alerts: []Alert{errorAlert(msgInvalidProduct)}}
	}

	item, err := s.products.GetProduct(ctx, t, productID)
	if err != nil {
		return &AddToCartResult{Alerts: []Alert{errorAlert(apperrors.UserMessage(err, msgAddFailed))}}
	}

	stock := item.Base().Stock
	if stock < 1 {
		return &AddToCartResult{Alerts: []Alert{errorAlert(msgOutOfStock)}}
	}
	quantity = ClampQuantity(quantity, stock)

	if _, err := s.cart.AddItem(ctx, productID, quantity); err != nil {
		s.logger.Error("Failed to add to cart", logging.Fields{
			"product_id":  productID,
			"quantity":    quantity,
			"status_code": apperrors.StatusCode(err),
			"error":       err.Error(),
		})
		return &AddToCartResult{
			Quantity:  quantity,
			CartCount: s.counter.Count(ctx),
			Alerts:    []Alert{errorAlert(apperrors.UserMessage(err, msgAddFailed))},
		}
	}

	return &AddToCartResult{
		Quantity:  quantity,
		CartCount: s.counter.Refresh(ctx),
		Alerts:    []Alert{successAlert(msgAddedToCart)},
	}
}

func (s *CatalogService) listingFailed(listing string, err error) error {
	s.logger.Error("Failed to load listing", logging.Fields{
		"listing":     listing,
		"status_code": apperrors.StatusCode(err),
		"error":       err.Error(),
	})
	return err
}

// buildListing wraps a page into cards with images and product paths.
func buildListing[T any, PT interface {
	*T
	models.CatalogItem
}](ctx context.Context, fetcher *imageFetcher, page *models.Page[T]) *Listing[T] {
	listing := &Listing[T]{
		Cards:         make([]Card[T], 0, len(page.Content)),
		TotalPages:    page.TotalPages,
		TotalElements: page.TotalElements,
		Number:        page.Number,
		Size:          page.Size,
	}

	var missing []int64
	for i := range page.Content {
		base := PT(&page.Content[i]).Base()
		if len(base.ImageURLs) == 0 {
			missing = append(missing, base.ID)
		}
	}
	urls := fetcher.firstURLs(ctx, missing)

	for i := range page.Content {
		item := PT(&page.Content[i])
		base := item.Base()
		imageURL := urls[base.ID]
		if len(base.ImageURLs) > 0 {
			imageURL = base.ImageURLs[0]
		}
		listing.Cards = append(listing.Cards, Card[T]{
			Item:     page.Content[i],
			ImageURL: imageURL,
			Path:     ProductPath(item),
		})
	}
	return listing
}

// ProductPath is the storefront URL of a product page, for example
// /product/tire/12-michelin-alpin-6.
func ProductPath(item models.CatalogItem) string {
	base := item.Base()
	category := base.ProductType
	if p, ok := item.(*models.Product); ok && p.Type != "" {
		category = p.Type
	}
	if category == "" {
		category = models.ProductTypeAll
	}

	segment := fmt.Sprintf("%d", base.ID)
	if name := slug.Make(base.Name); name != "" {
		segment += "-" + name
	}
	return fmt.Sprintf("/product/%s/%s", strings.ToLower(string(category)), segment)
}
