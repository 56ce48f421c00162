package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/tm-acme-shop/acme-shop-storefront/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/models"
)

// The storefront accepts the same query parameter names the remote API
// uses, so links can be passed through unchanged.

var timeLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// parsePaging reads page, sizePerPage and sort=field,direction. Missing
// values are left zero for the services to default.
func parsePaging(c *gin.Context) (models.Paging, error) {
	var p models.Paging

	if raw := c.Query("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 0 {
			return p, apperrors.NewValidationError("page", "page must be a non-negative integer")
		}
		p.Page = page
	}

	if raw := c.Query("sizePerPage"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 {
			return p, apperrors.NewValidationError("sizePerPage", "sizePerPage must be a positive integer")
		}
		p.SizePerPage = size
	}

	if raw := c.Query("sort"); raw != "" {
		field, direction, _ := strings.Cut(raw, ",")
		p.Sort.Field = strings.TrimSpace(field)
		p.Sort.Direction = models.SortDirection(strings.ToLower(strings.TrimSpace(direction)))
	}

	return p, nil
}

func parsePriceRange(c *gin.Context) (models.PriceRange, error) {
	var r models.PriceRange
	var err error
	if r.MinPrice, err = parseDecimal(c, "minPrice"); err != nil {
		return r, err
	}
	if r.MaxPrice, err = parseDecimal(c, "maxPrice"); err != nil {
		return r, err
	}
	if r.MinPrice != nil && r.MaxPrice != nil && r.MinPrice.GreaterThan(*r.MaxPrice) {
		return r, apperrors.NewValidationError("minPrice", "minPrice must not exceed maxPrice")
	}
	return r, nil
}

func parseDecimal(c *gin.Context, key string) (*decimal.Decimal, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, apperrors.NewValidationError(key, key+" must be a number")
	}
	return &d, nil
}

func parseTime(c *gin.Context, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, apperrors.NewValidationError(key, key+" must be a date")
}

func parseBool(c *gin.Context, key string) (*bool, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperrors.NewValidationError(key, key+" must be true or false")
	}
	return &b, nil
}

func parseProductQuery(c *gin.Context) (models.ProductQuery, error) {
	price, err := parsePriceRange(c)
	return models.ProductQuery{
		Name:       c.Query("name"),
		Type:       models.ProductType(strings.ToUpper(c.Query("type"))),
		PriceRange: price,
	}, err
}

func parseTireQuery(c *gin.Context) (models.TireQuery, error) {
	price, err := parsePriceRange(c)
	return models.TireQuery{
		Name:       c.Query("name"),
		Seasons:    c.QueryArray("season"),
		Sizes:      c.QueryArray("size"),
		PriceRange: price,
	}, err
}

func parseRimQuery(c *gin.Context) (models.RimQuery, error) {
	price, err := parsePriceRange(c)
	return models.RimQuery{
		Name:         c.Query("name"),
		Materials:    c.QueryArray("material"),
		Sizes:        c.QueryArray("size"),
		BoltPatterns: c.QueryArray("boltPattern"),
		PriceRange:   price,
	}, err
}

func parseAccessoryQuery(c *gin.Context) (models.AccessoryQuery, error) {
	price, err := parsePriceRange(c)
	q := models.AccessoryQuery{
		Name:       c.Query("name"),
		PriceRange: price,
	}
	for _, t := range c.QueryArray("accessoryType") {
		q.AccessoryTypes = append(q.AccessoryTypes, models.AccessoryType(strings.ToUpper(t)))
	}
	return q, err
}

// parseProductType reads the :category route segment (tire, rim,
// accessory or all).
func parseProductType(c *gin.Context) (models.ProductType, error) {
	switch t := models.ProductType(strings.ToUpper(c.Param("category"))); t {
	case models.ProductTypeTire, models.ProductTypeRim, models.ProductTypeAccessory, models.ProductTypeAll:
		return t, nil
	}
	return "", apperrors.NewValidationError("category", "unknown product category")
}

func parseOrderFilter(c *gin.Context) (models.OrderFilter, error) {
	var f models.OrderFilter
	var err error

	if raw := c.Query("userId"); raw != "" {
		id, perr := strconv.ParseInt(raw, 10, 64)
		if perr != nil {
			return f, apperrors.NewValidationError("userId", "userId must be an integer")
		}
		f.UserID = &id
	}
	f.Status = models.OrderStatus(strings.ToUpper(c.Query("status")))

	if f.CreatedAtFrom, err = parseTime(c, "createdAtFrom"); err != nil {
		return f, err
	}
	if f.CreatedAtTo, err = parseTime(c, "createdAtTo"); err != nil {
		return f, err
	}
	if f.IsPaid, err = parseBool(c, "isPaid"); err != nil {
		return f, err
	}
	if f.PaidAtFrom, err = parseTime(c, "paidAtFrom"); err != nil {
		return f, err
	}
	if f.PaidAtTo, err = parseTime(c, "paidAtTo"); err != nil {
		return f, err
	}
	return f, nil
}

func parseUserFilter(c *gin.Context) models.UserFilter {
	return models.UserFilter{
		Email:       c.Query("email"),
		Username:    c.Query("username"),
		FirstName:   c.Query("firstName"),
		LastName:    c.Query("lastName"),
		PhoneNumber: c.Query("phoneNumber"),
		Role:        c.Query("role"),
	}
}
