package clients

import (
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tm-acme-shop/acme-shop-storefront/internal/models"
)

// pagingQuery serializes paging as page, sizePerPage and sort=field,direction.
func pagingQuery(q url.Values, p models.Paging) url.Values {
	if q == nil {
		q = url.Values{}
	}
	p = p.Normalize()
	q.Set("page", strconv.Itoa(p.Page))
	q.Set("sizePerPage", strconv.Itoa(p.SizePerPage))
	q.Set("sort", p.Sort.Field+","+string(p.Sort.Direction))
	return q
}

func setString(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

// addEach adds one parameter per value, so arrays repeat the key.
func addEach(q url.Values, key string, values []string) {
	for _, v := range values {
		if v != "" {
			q.Add(key, v)
		}
	}
}

func setPrice(q url.Values, r models.PriceRange) {
	setDecimal(q, "minPrice", r.MinPrice)
	setDecimal(q, "maxPrice", r.MaxPrice)
}

func setDecimal(q url.Values, key string, d *decimal.Decimal) {
	if d != nil {
		q.Set(key, d.String())
	}
}

func setTime(q url.Values, key string, t *time.Time) {
	if t != nil {
		q.Set(key, t.Format("2006-01-02T15:04:05"))
	}
}

// ProductQueryValues translates a generic product filter into query params.
func ProductQueryValues(f models.ProductQuery, p models.Paging) url.Values {
	q := url.Values{}
	setString(q, "name", f.Name)
	setPrice(q, f.PriceRange)
	setString(q, "type", string(f.Type))
	return pagingQuery(q, p)
}

func TireQueryValues(f models.TireQuery, p models.Paging) url.Values {
	q := url.Values{}
	setString(q, "name", f.Name)
	addEach(q, "season", f.Seasons)
	addEach(q, "size", f.Sizes)
	setPrice(q, f.PriceRange)
	return pagingQuery(q, p)
}

func RimQueryValues(f models.RimQuery, p models.Paging) url.Values {
	q := url.Values{}
	setString(q, "name", f.Name)
	addEach(q, "material", f.Materials)
	addEach(q, "size", f.Sizes)
	addEach(q, "boltPattern", f.BoltPatterns)
	setPrice(q, f.PriceRange)
	return pagingQuery(q, p)
}

func AccessoryQueryValues(f models.AccessoryQuery, p models.Paging) url.Values {
	q := url.Values{}
	setString(q, "name", f.Name)
	types := make([]string, 0, len(f.AccessoryTypes))
	for _, t := range f.AccessoryTypes {
		types = append(types, string(t))
	}
	addEach(q, "accessoryType", types)
	setPrice(q, f.PriceRange)
	return pagingQuery(q, p)
}

func OrderFilterValues(f models.OrderFilter, p models.Paging) url.Values {
	q := url.Values{}
	if f.UserID != nil {
		q.Set("userId", strconv.FormatInt(*f.UserID, 10))
	}
	setString(q, "status", string(f.Status))
	setTime(q, "createdAtFrom", f.CreatedAtFrom)
	setTime(q, "createdAtTo", f.CreatedAtTo)
	if f.IsPaid != nil {
		q.Set("isPaid", strconv.FormatBool(*f.IsPaid))
	}
	setTime(q, "paidAtFrom", f.PaidAtFrom)
	setTime(q, "paidAtTo", f.PaidAtTo)
	return pagingQuery(q, p)
}

func UserFilterValues(f models.UserFilter, p models.Paging) url.Values {
	q := url.Values{}
	setString(q, "email", f.Email)
	setString(q, "username", f.Username)
	setString(q, "firstName", f.FirstName)
	setString(q, "lastName", f.LastName)
	setString(q, "phoneNumber", f.PhoneNumber)
	setString(q, "role", f.Role)
	return pagingQuery(q, p)
}
