package clients

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tm-acme-shop/acme-shop-storefront/internal/models"
)

func TestCreateOrderSendsItemsAndDecodesOrder(t *testing.T) {
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":42,"userId":null,"status":"CREATED","totalAmount":250.50,` +
			`"items":[{"id":1,"productId":1,"productName":"Alpin 6","quantity":2,"priceAtPurchase":100.00,"totalPrice":200.00}],` +
			`"createdAt":"2025-04-10T15:30:00.123456","isPaid":false,"paidAt":null}`))
	})
	ctx, _ := anonymousCtx()

	order, err := NewHTTPOrderClient(api.client()).CreateOrder(ctx, &models.CreateOrderRequest{
		GuestFirstName: "Jan",
		Items:          []models.OrderLine{{ProductID: 1, Quantity: 2}, {ProductID: 3, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), order.ID)
	assert.Equal(t, models.OrderStatusCreated, order.Status)
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("250.5")))
	assert.True(t, order.CreatedAt.Equal(time.Date(2025, 4, 10, 15, 30, 0, 123456000, time.UTC)))
	assert.Nil(t, order.PaidAt)

	req := api.last()
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/api/orders/public", req.Path)

	var body models.CreateOrderRequest
	require.NoError(t, json.Unmarshal(req.Body, &body))
	assert.Equal(t, []models.OrderLine{{ProductID: 1, Quantity: 2}, {ProductID: 3, Quantity: 1}}, body.Items)
}

const backendOrders = `[
	{"id":7,"status":"COMPLETED","totalAmount":120.00,"items":[],
	 "createdAt":"2025-04-10T15:30:00","isPaid":true,"paidAt":"2025-04-11T09:05:12.5",
	 "guestFirstName":null,"shippingAddress":{"id":3,"street":"Polna","houseNumber":"1","postalCode":"00-001","city":"Warsaw"}},
	{"id":8,"status":"CREATED","totalAmount":50.00,"items":[],
	 "createdAt":"2025-04-12T08:00:00","isPaid":false,"paidAt":null}
]`

func TestOrderReadsDecodeBackendTimestamps(t *testing.T) {
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/orders/user":
			_, _ = w.Write([]byte(backendOrders))
		case "/api/orders/admin":
			_, _ = w.Write([]byte(`{"content":` + backendOrders + `,"totalPages":1,"totalElements":2,"number":0,"size":10}`))
		default:
			_, _ = w.Write([]byte(`{"id":7,"status":"COMPLETED","totalAmount":120.00,"items":[],` +
				`"createdAt":"2025-04-10T15:30:00","isPaid":true,"paidAt":"2025-04-11T09:05:12.5"}`))
		}
	})
	ctx, _ := anonymousCtx()
	orders := NewHTTPOrderClient(api.client())
	created := time.Date(2025, 4, 10, 15, 30, 0, 0, time.UTC)
	paid := time.Date(2025, 4, 11, 9, 5, 12, 500000000, time.UTC)

	list, err := orders.ListMyOrders(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.True(t, list[0].CreatedAt.Equal(created))
	require.NotNil(t, list[0].PaidAt)
	assert.True(t, list[0].PaidAt.Equal(paid))
	assert.Nil(t, list[1].PaidAt)

	order, err := orders.GetMyOrder(ctx, 7)
	require.NoError(t, err)
	assert.True(t, order.CreatedAt.Equal(created))
	require.NotNil(t, order.PaidAt)
	assert.True(t, order.PaidAt.Equal(paid))

	page, err := orders.ListOrders(ctx, models.OrderFilter{}, models.DefaultPaging())
	require.NoError(t, err)
	require.Len(t, page.Content, 2)
	assert.True(t, page.Content[1].CreatedAt.Equal(time.Date(2025, 4, 12, 8, 0, 0, 0, time.UTC)))

	detail, err := orders.GetOrder(ctx, 7)
	require.NoError(t, err)
	assert.True(t, detail.PaidAt.Equal(paid))
}

func TestOrderEndpoints(t *testing.T) {
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	ctx, _ := anonymousCtx()
	orders := NewHTTPOrderClient(api.client())

	tests := []struct {
		name   string
		call   func() error
		method string
		path   string
	}{
		{"cancel", func() error { _, err := orders.CancelOrder(ctx, 9); return err }, http.MethodPatch, "/api/orders/9/cancel"},
		{"pay", func() error { _, err := orders.PayOrder(ctx, 9); return err }, http.MethodPatch, "/api/orders/public/9/pay"},
		{"status", func() error {
			_, err := orders.UpdateOrderStatus(ctx, 9, models.OrderStatusConfirmed)
			return err
		}, http.MethodPatch, "/api/orders/admin/9/status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, tt.call())
			req := api.last()
			assert.Equal(t, tt.method, req.Method)
			assert.Equal(t, tt.path, req.Path)
		})
	}
}

func TestAddShippingAddressDecodesAddress(t *testing.T) {
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"id": 134, "street": "Polna", "houseNumber": "15A", "apartmentNumber": "3",
			"postalCode": "00-123", "city": "Warszawa",
		})
	})
	ctx, _ := anonymousCtx()

	address, err := NewHTTPOrderClient(api.client()).AddShippingAddress(ctx, 9, &models.ShippingAddressRequest{
		Street: "Polna", HouseNumber: "15A", ApartmentNumber: "3", PostalCode: "00-123", City: "Warszawa",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(134), address.ID)
	assert.Equal(t, "Warszawa", address.City)

	req := api.last()
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/api/shippingAddress/my_order/9", req.Path)

	var body models.ShippingAddressRequest
	require.NoError(t, json.Unmarshal(req.Body, &body))
	assert.Equal(t, "15A", body.HouseNumber)
}

func TestCartSummaryDecodesItems(t *testing.T) {
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items":[{"id":1,"productId":4,"quantity":2,"pricePerItem":100.00,"totalPrice":200.00}],"total":200.00}`))
	})
	ctx, _ := anonymousCtx()

	summary, err := NewHTTPCartClient(api.client()).GetSummary(ctx)
	require.NoError(t, err)
	require.Len(t, summary.Items, 1)
	assert.Equal(t, 2, summary.Items[0].Quantity)
	assert.True(t, summary.Total.Equal(decimal.NewFromInt(200)))
	assert.Equal(t, "/api/cart/summary", api.last().Path)
}

func TestListTiresRepeatsArrayFilters(t *testing.T) {
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.Page[models.Tire]{Content: []models.Tire{}, TotalPages: 1})
	})
	ctx, _ := anonymousCtx()
	minPrice := decimal.RequireFromString("100")

	_, err := NewHTTPProductClient(api.client()).ListTires(ctx, models.TireQuery{
		Seasons:    []string{"WINTER", "ALL_SEASON"},
		Sizes:      []string{"205/55R16"},
		PriceRange: models.PriceRange{MinPrice: &minPrice},
	}, models.Paging{})
	require.NoError(t, err)

	req := api.last()
	assert.Equal(t, "/api/tires", req.Path)
	assert.Equal(t, []string{"WINTER", "ALL_SEASON"}, req.Query["season"])
	assert.Equal(t, []string{"205/55R16"}, req.Query["size"])
	assert.Equal(t, []string{"100"}, req.Query["minPrice"])
	assert.Equal(t, []string{"0"}, req.Query["page"])
	assert.Equal(t, []string{"10"}, req.Query["sizePerPage"])
	assert.Equal(t, []string{"id,asc"}, req.Query["sort"])
	assert.NotContains(t, req.Query, "maxPrice")
}

func TestGetProductByCategory(t *testing.T) {
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"id": 12, "name": "Alpin 6", "price": 399.99, "stock": 4,
			"productType": "TIRE", "season": "WINTER", "size": "205/55R16",
		})
	})
	ctx, _ := anonymousCtx()

	item, err := NewHTTPProductClient(api.client()).GetProduct(ctx, models.ProductTypeTire, 12)
	require.NoError(t, err)
	assert.Equal(t, "/api/tire/12", api.last().Path)

	tire, ok := item.(*models.Tire)
	require.True(t, ok)
	assert.Equal(t, "WINTER", tire.Season)
	assert.Equal(t, 4, tire.Base().Stock)
}

func TestProductFormsRouteToCategoryEndpoints(t *testing.T) {
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("done"))
	})
	ctx, _ := anonymousCtx()
	products := NewHTTPProductClient(api.client())

	tests := []struct {
		form models.ProductForm
		path string
	}{
		{&models.TireForm{}, "/api/admin/tire/5"},
		{&models.RimForm{}, "/api/admin/rim/5"},
		{&models.AccessoryForm{}, "/api/admin/accessory/5"},
		{&models.GenericProductForm{}, "/api/admin/products/5"},
	}
	for _, tt := range tests {
		msg, err := products.UpdateProduct(ctx, 5, tt.form)
		require.NoError(t, err)
		assert.Equal(t, "done", msg)
		assert.Equal(t, tt.path, api.last().Path)
		assert.Equal(t, http.MethodPatch, api.last().Method)
	}

	_, err := products.CreateProducts(ctx, []models.ProductForm{&models.TireForm{}, &models.RimForm{}})
	assert.Error(t, err)

	_, err = products.DeleteProduct(ctx, models.ProductTypeRim, 8)
	require.NoError(t, err)
	assert.Equal(t, "/api/admin/rim/8", api.last().Path)
}

func TestAddressByType(t *testing.T) {
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []models.Address{{ID: 1, City: "Kraków", Type: models.AddressTypeShipping}})
	})
	ctx, _ := anonymousCtx()

	addresses, err := NewHTTPAddressClient(api.client()).ListByType(ctx, models.AddressTypeShipping)
	require.NoError(t, err)
	require.Len(t, addresses, 1)
	assert.Equal(t, "/api/address/type", api.last().Path)
	assert.Equal(t, []string{"SHIPPING"}, api.last().Query["type"])
}

func TestLoginDecodesToken(t *testing.T) {
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.AuthResponse{Token: "tok"})
	})
	ctx, _ := anonymousCtx()

	resp, err := NewHTTPAuthClient(api.client()).Login(ctx, &models.LoginRequest{Email: "a@b.pl", Password: "x"})
	require.NoError(t, err)
	assert.Equal(t, "tok", resp.Token)
	assert.Equal(t, "/api/auth/login", api.last().Path)
}

func TestAdminUserFilters(t *testing.T) {
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.Page[models.User]{})
	})
	ctx, _ := anonymousCtx()

	_, err := NewHTTPUserClient(api.client()).ListUsers(ctx, models.UserFilter{Role: "ROLE_ADMIN"}, models.Paging{Page: 2, SizePerPage: 5, Sort: models.Sort{Field: "email", Direction: models.SortDesc}})
	require.NoError(t, err)

	req := api.last()
	assert.Equal(t, []string{"ROLE_ADMIN"}, req.Query["role"])
	assert.Equal(t, []string{"2"}, req.Query["page"])
	assert.Equal(t, []string{"email,desc"}, req.Query["sort"])
	assert.NotContains(t, req.Query, "email")
}
