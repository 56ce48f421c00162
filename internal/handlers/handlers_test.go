package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tm-acme-shop/acme-shop-storefront/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/clients"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/config"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/middleware"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/models"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/repository"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/service"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/session"
)

func TestHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := &Handlers{}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	h.Health(c)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	if resp["status"] != "healthy" {
		t.Errorf("Expected status 'healthy', got %v", resp["status"])
	}

	if resp["service"] != "storefront" {
		t.Errorf("Expected service 'storefront', got %v", resp["service"])
	}
}

func TestReady(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := NewHandlers(Services{}, &config.Config{}, nil,
		ReadinessCheck{Name: "redis", Ping: func(context.Context) error { return nil }},
	)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/ready", nil)

	h.Ready(c)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
}

func TestReadyReportsFailingCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := NewHandlers(Services{}, &config.Config{}, nil,
		ReadinessCheck{Name: "redis", Ping: func(context.Context) error { return nil }},
		ReadinessCheck{Name: "postgres", Ping: func(context.Context) error { return errors.New("dial tcp: refused") }},
	)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/ready", nil)

	h.Ready(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"postgres":"down"`)
	assert.Contains(t, w.Body.String(), `"redis":"up"`)
}

func TestLive(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := &Handlers{}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	h.Live(c)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
}

func TestHandleError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{"validation", apperrors.NewValidationError("quantity", "Quantity must be at least 1"), http.StatusBadRequest, "Quantity must be at least 1"},
		{"upstream keeps status and message", &apperrors.APIError{StatusCode: http.StatusConflict, Message: "Out of stock"}, http.StatusConflict, "Out of stock"},
		{"upstream without message", &apperrors.APIError{StatusCode: http.StatusNotFound}, http.StatusNotFound, "Not Found"},
		{"unauthorized", apperrors.ErrUnauthorized, http.StatusUnauthorized, "login required"},
		{"forbidden", apperrors.ErrForbidden, http.StatusForbidden, "forbidden"},
		{"checkout not started", apperrors.ErrCheckoutNotStarted, http.StatusConflict, "checkout not started"},
		{"submission in progress", apperrors.ErrSubmissionInProgress, http.StatusConflict, "already in progress"},
		{"wrapped not found", errors.Join(errors.New("load"), apperrors.ErrNotFound), http.StatusNotFound, "not found"},
		{"anything else", errors.New("redis: connection refused"), http.StatusBadGateway, "temporarily unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			handleError(c, tt.err)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

// upstream is a minimal storefront API double. Routes are keyed
// "METHOD /path"; unknown routes answer 404.
type upstream struct {
	mu     sync.Mutex
	routes map[string]func(w http.ResponseWriter, r *http.Request)
	seen   []*http.Request
	server *httptest.Server
}

func newUpstream(t *testing.T) *upstream {
	u := &upstream{routes: map[string]func(http.ResponseWriter, *http.Request){}}
	u.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))

		u.mu.Lock()
		u.seen = append(u.seen, r.Clone(context.Background()))
		route, ok := u.routes[r.Method+" "+r.URL.Path]
		u.mu.Unlock()

		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		route(w, r)
	}))
	t.Cleanup(u.server.Close)
	return u
}

func (u *upstream) reply(method, path string, status int, body interface{}) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.routes[method+" "+path] = func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if body != nil {
			_ = json.NewEncoder(w).Encode(body)
		}
	}
}

func (u *upstream) requests(method, path string) []*http.Request {
	u.mu.Lock()
	defer u.mu.Unlock()
	var out []*http.Request
	for _, r := range u.seen {
		if r.Method == method && r.URL.Path == path {
			out = append(out, r)
		}
	}
	return out
}

type memorySessions struct {
	mu   sync.Mutex
	byID map[string]session.Identity
}

func (m *memorySessions) Get(_ context.Context, sessionID string) (*session.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byID[sessionID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &id, nil
}

func (m *memorySessions) Create(_ context.Context, id *session.Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[id.SessionID] = *id
	return nil
}

func (m *memorySessions) UpdateToken(_ context.Context, sessionID, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.byID[sessionID]
	id.Token = token
	m.byID[sessionID] = id
	return nil
}

func (m *memorySessions) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byID, sessionID)
	return nil
}

// storefront wires real services against an upstream double and
// miniredis, behind the session middleware.
type storefront struct {
	api    *upstream
	router *gin.Engine
	cookie *http.Cookie
}

func newStorefront(t *testing.T) *storefront {
	t.Helper()
	gin.SetMode(gin.TestMode)

	api := newUpstream(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	cfg := &config.Config{
		Session:  config.SessionConfig{CookieName: "sf_session", MaxAge: time.Hour},
		Checkout: config.CheckoutConfig{DraftTTL: time.Minute},
		Catalog:  config.CatalogConfig{ImageConcurrency: 2, DefaultPageSize: 10},
	}

	cache := repository.NewRedisViewCache(rdb, cfg.Checkout.DraftTTL)
	sessions := &memorySessions{byID: map[string]session.Identity{}}

	apiClient := clients.NewAPIClientWithTransport(config.ServiceConfig{BaseURL: api.server.URL}, clients.NewCredentialTransport(nil))
	cart := clients.NewHTTPCartClient(apiClient)
	orders := clients.NewHTTPOrderClient(apiClient)
	users := clients.NewHTTPUserClient(apiClient)
	addresses := clients.NewHTTPAddressClient(apiClient)
	products := clients.NewHTTPProductClient(apiClient)
	images := clients.NewHTTPImageClient(apiClient)
	auth := clients.NewHTTPAuthClient(apiClient)

	counter := service.NewCartCounter(cart, cache, nil, nil)
	h := NewHandlers(Services{
		Cart:    service.NewCartService(cart, images, counter, 2),
		Counter: counter,
		Checkout: service.NewCheckoutService(service.CheckoutDeps{
			Cart: cart, Orders: orders, Users: users, Addresses: addresses,
			Images: images, Store: cache, Counter: counter,
		}, cfg),
		Payment: service.NewPaymentService(orders, nil, nil),
		Orders:  service.NewOrderService(orders, cache, nil, nil),
		Catalog: service.NewCatalogService(products, images, cart, counter, 2, 10),
		Account: service.NewAccountService(auth, users, addresses, sessions, counter),
		Admin:   service.NewAdminService(products, orders, users, images),
	}, cfg, nil)

	r := gin.New()
	r.Use(middleware.RequestID())
	routes := r.Group("/api", middleware.Session(sessions, cfg.Session))
	routes.GET("/cart", h.GetCart)
	routes.PATCH("/cart/items/:itemId", h.UpdateCartItem)
	routes.POST("/checkout", h.StartCheckout)
	routes.GET("/checkout", h.GetCheckout)
	routes.POST("/checkout/contact", h.SubmitContact)
	routes.GET("/checkout/address", h.EnterAddress)
	routes.POST("/checkout/submit", h.SubmitOrder)
	routes.GET("/payment/:orderId", h.GetPayment)
	routes.POST("/payment/:orderId/shipping-address", h.SetShippingAddress)
	routes.POST("/orders/:orderId/cancel", h.RequestCancel)
	routes.GET("/catalog/tires", h.ListTires)
	routes.GET("/catalog/product/:category/:id", h.GetProduct)
	routes.POST("/catalog/product/:category/:id/cart", h.AddToCart)
	routes.POST("/admin/products/:category", middleware.RequireRole(models.RoleAdmin), h.CreateProducts)

	return &storefront{api: api, router: r}
}

// do sends a request carrying the storefront session cookie, keeping the
// cookie issued on the first response.
func (s *storefront) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.cookie != nil {
		req.AddCookie(s.cookie)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	for _, c := range w.Result().Cookies() {
		if c.Name == "sf_session" {
			s.cookie = c
		}
	}
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestGuestCheckoutOverHTTP(t *testing.T) {
	sf := newStorefront(t)
	sf.api.reply(http.MethodGet, "/cart", http.StatusOK, []models.CartItem{
		{ID: 10, ProductID: 3, Quantity: 1},
		{ID: 11, ProductID: 1, Quantity: 2},
	})
	sf.api.reply(http.MethodPost, "/orders/public", http.StatusOK, models.Order{ID: 77, Status: models.OrderStatusCreated})

	w := sf.do(t, http.MethodGet, "/api/checkout", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = sf.do(t, http.MethodPost, "/api/checkout", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = sf.do(t, http.MethodPost, "/api/checkout/contact", models.ContactDetails{
		FirstName: "Jan", LastName: "Kowalski", Email: "jan@example.com", Phone: "600100200",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.CheckoutStepAddress, decode[service.CheckoutView](t, w).Step)
	assert.Empty(t, sf.api.requests(http.MethodGet, "/cart"))

	w = sf.do(t, http.MethodGet, "/api/checkout/address", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = sf.do(t, http.MethodPost, "/api/checkout/submit", models.ShippingDetails{
		Street: "Long", HouseNumber: "5", PostalCode: "00-001", City: "Warsaw",
	})
	require.Equal(t, http.StatusOK, w.Code)

	view := decode[service.CheckoutView](t, w)
	require.NotNil(t, view.Redirect)
	assert.Equal(t, "/payment/77", view.Redirect.Path)

	placed := sf.api.requests(http.MethodPost, "/orders/public")
	require.Len(t, placed, 1)
	assert.NotEmpty(t, placed[0].Header.Get(clients.HeaderClientID))
	assert.Empty(t, placed[0].Header.Get(clients.HeaderAuthorization))
}

func TestPaymentInvalidIDMakesNoCall(t *testing.T) {
	sf := newStorefront(t)

	w := sf.do(t, http.MethodGet, "/api/payment/abc", nil)

	require.Equal(t, http.StatusOK, w.Code)
	view := decode[service.PaymentView](t, w)
	require.Len(t, view.Alerts, 1)
	assert.Equal(t, "Invalid order id", view.Alerts[0].Message)
	assert.Empty(t, sf.api.seen)
}

func TestSetShippingAddressOverHTTP(t *testing.T) {
	sf := newStorefront(t)
	sf.api.reply(http.MethodGet, "/orders/public/user/9", http.StatusOK, json.RawMessage(
		`{"id":9,"status":"CREATED","totalAmount":80.00,"items":[],"createdAt":"2025-04-10T15:30:00","isPaid":false,"paidAt":null}`))
	sf.api.reply(http.MethodPost, "/shippingAddress/my_order/9", http.StatusCreated, models.Address{ID: 134, City: "Warsaw"})

	w := sf.do(t, http.MethodPost, "/api/payment/9/shipping-address", models.ShippingAddressRequest{
		Street: "Long", HouseNumber: "5", PostalCode: "00-001", City: "Warsaw",
	})

	require.Equal(t, http.StatusOK, w.Code)
	view := decode[service.PaymentView](t, w)
	require.Len(t, view.Alerts, 1)
	assert.Equal(t, service.AlertSuccess, view.Alerts[0].Type)
	assert.Equal(t, []service.Action{service.ActionPayNow, service.ActionPayLater}, view.Actions)
	assert.Len(t, sf.api.requests(http.MethodPost, "/shippingAddress/my_order/9"), 1)
}

func TestCancelRejectsBadOrderID(t *testing.T) {
	sf := newStorefront(t)

	w := sf.do(t, http.MethodPost, "/api/orders/zero/cancel", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, sf.api.seen)
}

func TestCartQuantityBelowOne(t *testing.T) {
	sf := newStorefront(t)
	sf.api.reply(http.MethodGet, "/cart", http.StatusOK, []models.CartItem{{ID: 10, ProductID: 1, Quantity: 1}})

	w := sf.do(t, http.MethodPatch, "/api/cart/items/10", map[string]int{"quantity": 0})

	require.Equal(t, http.StatusOK, w.Code)
	view := decode[service.CartView](t, w)
	require.NotEmpty(t, view.Alerts)
	assert.Empty(t, sf.api.requests(http.MethodPatch, "/cart/10"))
}

func TestListTiresForwardsFilters(t *testing.T) {
	sf := newStorefront(t)
	sf.api.reply(http.MethodGet, "/tires", http.StatusOK, models.Page[models.Tire]{})

	w := sf.do(t, http.MethodGet, "/api/catalog/tires?season=WINTER&season=ALL_SEASON&minPrice=100&page=2&sort=price,desc", nil)
	require.Equal(t, http.StatusOK, w.Code)

	reqs := sf.api.requests(http.MethodGet, "/tires")
	require.Len(t, reqs, 1)
	q := reqs[0].URL.Query()
	assert.Equal(t, []string{"WINTER", "ALL_SEASON"}, q["season"])
	assert.Equal(t, "100", q.Get("minPrice"))
	assert.Equal(t, "2", q.Get("page"))
	assert.Equal(t, "10", q.Get("sizePerPage"))
	assert.Equal(t, "price,desc", q.Get("sort"))
}

func TestListTiresRejectsBadPrice(t *testing.T) {
	sf := newStorefront(t)

	w := sf.do(t, http.MethodGet, "/api/catalog/tires?"+url.Values{"minPrice": {"cheap"}}.Encode(), nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, sf.api.seen)
}

func TestProductCategoryValidated(t *testing.T) {
	sf := newStorefront(t)

	w := sf.do(t, http.MethodGet, "/api/catalog/product/boat/1", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddToCartDefaultsToOne(t *testing.T) {
	sf := newStorefront(t)
	sf.api.reply(http.MethodGet, "/rim/4", http.StatusOK, models.Rim{ProductBase: models.ProductBase{ID: 4, Stock: 2}})
	sf.api.reply(http.MethodPost, "/cart", http.StatusOK, "Added")
	sf.api.reply(http.MethodGet, "/cart", http.StatusOK, []models.CartItem{{ID: 1, ProductID: 4, Quantity: 1}})

	w := sf.do(t, http.MethodPost, "/api/catalog/product/rim/4-alloy-17/cart", nil)

	require.Equal(t, http.StatusOK, w.Code)
	result := decode[service.AddToCartResult](t, w)
	assert.Equal(t, 1, result.Quantity)
	assert.Equal(t, 1, result.CartCount)
}

func TestAdminRoutesRequireLogin(t *testing.T) {
	sf := newStorefront(t)

	w := sf.do(t, http.MethodPost, "/api/admin/products/tire", map[string]string{"name": "x"})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, sf.api.seen)
}

func TestReadForms(t *testing.T) {
	gin.SetMode(gin.TestMode)

	for _, body := range []string{`{"name":"a"}`, `[{"name":"a"},{"name":"b"}]`} {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))

		forms, err := readForms(c)
		require.NoError(t, err)
		assert.NotEmpty(t, forms)
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`"nope"`))
	_, err := readForms(c)
	assert.Error(t, err)
}
