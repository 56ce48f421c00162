package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tm-acme-shop/acme-shop-storefront/internal/apperrors"
)

type addToCartRequest struct {
	Quantity int `json:"quantity"`
}

// ListProducts handles GET /api/catalog/products
func (h *Handlers) ListProducts(c *gin.Context) {
	q, err := parseProductQuery(c)
	if err != nil {
		handleError(c, err)
		return
	}
	paging, err := parsePaging(c)
	if err != nil {
		handleError(c, err)
		return
	}

	listing, err := h.catalog.Products(c.Request.Context(), q, paging)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

// SearchProducts handles GET /api/catalog/search?q=
func (h *Handlers) SearchProducts(c *gin.Context) {
	paging, err := parsePaging(c)
	if err != nil {
		handleError(c, err)
		return
	}

	listing, err := h.catalog.Search(c.Request.Context(), c.Query("q"), paging)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

// ListTires handles GET /api/catalog/tires
func (h *Handlers) ListTires(c *gin.Context) {
	q, err := parseTireQuery(c)
	if err != nil {
		handleError(c, err)
		return
	}
	paging, err := parsePaging(c)
	if err != nil {
		handleError(c, err)
		return
	}

	listing, err := h.catalog.Tires(c.Request.Context(), q, paging)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

// ListRims handles GET /api/catalog/rims
func (h *Handlers) ListRims(c *gin.Context) {
	q, err := parseRimQuery(c)
	if err != nil {
		handleError(c, err)
		return
	}
	paging, err := parsePaging(c)
	if err != nil {
		handleError(c, err)
		return
	}

	listing, err := h.catalog.Rims(c.Request.Context(), q, paging)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

// ListAccessories handles GET /api/catalog/accessories
func (h *Handlers) ListAccessories(c *gin.Context) {
	q, err := parseAccessoryQuery(c)
	if err != nil {
		handleError(c, err)
		return
	}
	paging, err := parsePaging(c)
	if err != nil {
		handleError(c, err)
		return
	}

	listing, err := h.catalog.Accessories(c.Request.Context(), q, paging)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

// TireFilters handles GET /api/catalog/tires/filters
func (h *Handlers) TireFilters(c *gin.Context) {
	filters, err := h.catalog.TireFilters(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, filters)
}

// RimFilters handles GET /api/catalog/rims/filters
func (h *Handlers) RimFilters(c *gin.Context) {
	filters, err := h.catalog.RimFilters(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, filters)
}

// AccessoryFilters handles GET /api/catalog/accessories/filters
func (h *Handlers) AccessoryFilters(c *gin.Context) {
	filters, err := h.catalog.AccessoryFilters(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, filters)
}

// GetProduct handles GET /api/catalog/product/:category/:id
func (h *Handlers) GetProduct(c *gin.Context) {
	t, err := parseProductType(c)
	if err != nil {
		handleError(c, err)
		return
	}
	id, err := productIDParam(c)
	if err != nil {
		handleError(c, err)
		return
	}

	detail, err := h.catalog.Product(c.Request.Context(), t, id)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// AddToCart handles POST /api/catalog/product/:category/:id/cart
func (h *Handlers) AddToCart(c *gin.Context) {
	t, err := parseProductType(c)
	if err != nil {
		handleError(c, err)
		return
	}
	id, err := productIDParam(c)
	if err != nil {
		handleError(c, err)
		return
	}

	req := addToCartRequest{Quantity: 1}
	if c.Request.ContentLength != 0 {
		if err := bindJSON(c, &req); err != nil {
			handleError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, h.catalog.AddToCart(c.Request.Context(), t, id, req.Quantity))
}

// productIDParam accepts a bare id or a product path segment like "12-michelin-alpin".
func productIDParam(c *gin.Context) (int64, error) {
	raw, _, _ := strings.Cut(c.Param("id"), "-")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("id", "invalid id")
	}
	return id, nil
}
