package clients

import (
	"context"
	"fmt"
	"net/url"

	"github.com/tm-acme-shop/acme-shop-storefront/internal/models"
)

// ProductClient reads the catalog and, for admins, edits it.
type ProductClient interface {
	ListProducts(ctx context.Context, q models.ProductQuery, p models.Paging) (*models.Page[models.Product], error)
	SearchProducts(ctx context.Context, query string, p models.Paging) (*models.Page[models.Product], error)
	ListTires(ctx context.Context, q models.TireQuery, p models.Paging) (*models.Page[models.Tire], error)
	ListRims(ctx context.Context, q models.RimQuery, p models.Paging) (*models.Page[models.Rim], error)
	ListAccessories(ctx context.Context, q models.AccessoryQuery, p models.Paging) (*models.Page[models.Accessory], error)

	GetProduct(ctx context.Context, t models.ProductType, id int64) (models.CatalogItem, error)

	TireFilters(ctx context.Context) (*models.TireFilters, error)
	RimFilters(ctx context.Context) (*models.RimFilters, error)
	AccessoryFilters(ctx context.Context) (*models.AccessoryFilters, error)

	CreateProducts(ctx context.Context, forms []models.ProductForm) (string, error)
	UpdateProduct(ctx context.Context, id int64, form models.ProductForm) (string, error)
	DeleteProduct(ctx context.Context, t models.ProductType, id int64) (string, error)
}

type HTTPProductClient struct {
	api *APIClient
}

func NewHTTPProductClient(api *APIClient) *HTTPProductClient {
	return &HTTPProductClient{api: api}
}

func (c *HTTPProductClient) ListProducts(ctx context.Context, q models.ProductQuery, p models.Paging) (*models.Page[models.Product], error) {
	var page models.Page[models.Product]
	if err := c.api.Get(ctx, "/products", ProductQueryValues(q, p), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *HTTPProductClient) SearchProducts(ctx context.Context, query string, p models.Paging) (*models.Page[models.Product], error) {
	values := url.Values{}
	setString(values, "query", query)

	var page models.Page[models.Product]
	if err := c.api.Get(ctx, "/products/search", pagingQuery(values, p), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *HTTPProductClient) ListTires(ctx context.Context, q models.TireQuery, p models.Paging) (*models.Page[models.Tire], error) {
	var page models.Page[models.Tire]
	if err := c.api.Get(ctx, "/tires", TireQueryValues(q, p), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *HTTPProductClient) ListRims(ctx context.Context, q models.RimQuery, p models.Paging) (*models.Page[models.Rim], error) {
	var page models.Page[models.Rim]
	if err := c.api.Get(ctx, "/rims", RimQueryValues(q, p), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *HTTPProductClient) ListAccessories(ctx context.Context, q models.AccessoryQuery, p models.Paging) (*models.Page[models.Accessory], error) {
	var page models.Page[models.Accessory]
	if err := c.api.Get(ctx, "/accessories", AccessoryQueryValues(q, p), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetProduct reads a single item from the endpoint of its category.
// ALL reads the generic product endpoint.
func (c *HTTPProductClient) GetProduct(ctx context.Context, t models.ProductType, id int64) (models.CatalogItem, error) {
	var item models.CatalogItem
	var path string
	switch t {
	case models.ProductTypeTire:
		item, path = &models.Tire{}, fmt.Sprintf("/tire/%d", id)
	case models.ProductTypeRim:
		item, path = &models.Rim{}, fmt.Sprintf("/rim/%d", id)
	case models.ProductTypeAccessory:
		item, path = &models.Accessory{}, fmt.Sprintf("/accessory/%d", id)
	default:
		item, path = &models.Product{}, fmt.Sprintf("/products/%d", id)
	}

	if err := c.api.Get(ctx, path, nil, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (c *HTTPProductClient) TireFilters(ctx context.Context) (*models.TireFilters, error) {
	var filters models.TireFilters
	if err := c.api.Get(ctx, "/tire/filters", nil, &filters); err != nil {
		return nil, err
	}
	return &filters, nil
}

func (c *HTTPProductClient) RimFilters(ctx context.Context) (*models.RimFilters, error) {
	var filters models.RimFilters
	if err := c.api.Get(ctx, "/rim/filters", nil, &filters); err != nil {
		return nil, err
	}
	return &filters, nil
}

func (c *HTTPProductClient) AccessoryFilters(ctx context.Context) (*models.AccessoryFilters, error) {
	var filters models.AccessoryFilters
	if err := c.api.Get(ctx, "/accessory/filters", nil, &filters); err != nil {
		return nil, err
	}
	return &filters, nil
}

// CreateProducts posts a batch of forms. The admin endpoints accept lists
// of one category, so all forms must share the variant of the first.
func (c *HTTPProductClient) CreateProducts(ctx context.Context, forms []models.ProductForm) (string, error) {
	if len(forms) == 0 {
		return "", nil
	}

	path, err := adminProductPath(forms[0])
	if err != nil {
		return "", err
	}
	for _, f := range forms[1:] {
		if p, err := adminProductPath(f); err != nil || p != path {
			return "", fmt.Errorf("mixed product forms in one batch: %T and %T", forms[0], f)
		}
	}

	var msg string
	err = c.api.Post(ctx, path, forms, &msg)
	return msg, err
}

func (c *HTTPProductClient) UpdateProduct(ctx context.Context, id int64, form models.ProductForm) (string, error) {
	path, err := adminProductPath(form)
	if err != nil {
		return "", err
	}

	var msg string
	err = c.api.Patch(ctx, fmt.Sprintf("%s/%d", path, id), form, &msg)
	return msg, err
}

func (c *HTTPProductClient) DeleteProduct(ctx context.Context, t models.ProductType, id int64) (string, error) {
	path, err := adminProductPath(models.NewProductForm(t))
	if err != nil {
		return "", err
	}

	var msg string
	err = c.api.Delete(ctx, fmt.Sprintf("%s/%d", path, id), &msg)
	return msg, err
}

func adminProductPath(form models.ProductForm) (string, error) {
	switch form.(type) {
	case *models.TireForm:
		return "/admin/tire", nil
	case *models.RimForm:
		return "/admin/rim", nil
	case *models.AccessoryForm:
		return "/admin/accessory", nil
	case *models.GenericProductForm:
		return "/admin/products", nil
	}
	return "", fmt.Errorf("unsupported product form %T", form)
}
