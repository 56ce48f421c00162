package service

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/tm-acme-shop/acme-shop-storefront/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/clients"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/config"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/repository"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/session"
)

type apiCall struct {
	Method string
	Path   string
	Body   []byte
}

// stubAPI is a storefront API double. Routes are keyed "METHOD /path";
// unknown routes answer 404. Every request is recorded.
type stubAPI struct {
	mu     sync.Mutex
	routes map[string]http.HandlerFunc
	calls  []apiCall
	server *httptest.Server
}

func newStubAPI(t *testing.T) *stubAPI {
	t.Helper()
	s := &stubAPI{routes: map[string]http.HandlerFunc{}}
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))
		s.mu.Lock()
		s.calls = append(s.calls, apiCall{Method: r.Method, Path: r.URL.Path, Body: body})
		h, ok := s.routes[r.Method+" "+r.URL.Path]
		s.mu.Unlock()

		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h(w, r)
	}))
	t.Cleanup(s.server.Close)
	return s
}

func (s *stubAPI) on(method, path string, h http.HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes[method+" "+path] = h
}

func (s *stubAPI) reply(method, path string, status int, body interface{}) {
	s.on(method, path, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, status, body)
	})
}

func (s *stubAPI) callsTo(method, path string) []apiCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []apiCall
	for _, c := range s.calls {
		if c.Method == method && c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

func (s *stubAPI) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *stubAPI) client() *clients.APIClient {
	return clients.NewAPIClientWithTransport(
		config.ServiceConfig{BaseURL: s.server.URL},
		clients.NewCredentialTransport(nil),
	)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

func decodeBody(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// testEnv wires real HTTP accessors to a stubAPI and a miniredis-backed
// view cache.
type testEnv struct {
	api     *stubAPI
	cache   *repository.RedisViewCache
	redis   *miniredis.Miniredis
	counter *CartCounter

	cart      *clients.HTTPCartClient
	orders    *clients.HTTPOrderClient
	users     *clients.HTTPUserClient
	addresses *clients.HTTPAddressClient
	images    *clients.HTTPImageClient
	products  *clients.HTTPProductClient
	auth      *clients.HTTPAuthClient
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	api := newStubAPI(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	apiClient := api.client()
	env := &testEnv{
		api:       api,
		cache:     repository.NewRedisViewCache(rdb, 0),
		redis:     mr,
		cart:      clients.NewHTTPCartClient(apiClient),
		orders:    clients.NewHTTPOrderClient(apiClient),
		users:     clients.NewHTTPUserClient(apiClient),
		addresses: clients.NewHTTPAddressClient(apiClient),
		images:    clients.NewHTTPImageClient(apiClient),
		products:  clients.NewHTTPProductClient(apiClient),
		auth:      clients.NewHTTPAuthClient(apiClient),
	}
	env.counter = NewCartCounter(env.cart, env.cache, nil, nil)
	return env
}

func (e *testEnv) config() *config.Config {
	return &config.Config{
		Checkout: config.CheckoutConfig{RedirectDelay: 0, DraftTTL: 30 * time.Minute},
		Catalog:  config.CatalogConfig{ImageConcurrency: 2, DefaultPageSize: 10},
	}
}

func (e *testEnv) checkoutService() *CheckoutService {
	return NewCheckoutService(CheckoutDeps{
		Cart:      e.cart,
		Orders:    e.orders,
		Users:     e.users,
		Addresses: e.addresses,
		Images:    e.images,
		Store:     e.cache,
		Counter:   e.counter,
	}, e.config())
}

func guestCtx() context.Context {
	return session.WithIdentity(context.Background(), &session.Identity{
		SessionID: "s-guest",
		ClientID:  "c-guest",
	})
}

func userCtx(t *testing.T, roles ...string) context.Context {
	t.Helper()
	claims := jwt.MapClaims{"sub": "jan@example.com"}
	if len(roles) > 0 {
		claims["roles"] = roles
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	return session.WithIdentity(context.Background(), &session.Identity{
		SessionID: "s-user",
		ClientID:  "c-user",
		Token:     token,
	})
}

// memorySessions is an in-memory SessionRepository.
type memorySessions struct {
	mu     sync.Mutex
	tokens map[string]string
}

func newMemorySessions() *memorySessions {
	return &memorySessions{tokens: map[string]string{}}
}

func (m *memorySessions) Get(_ context.Context, sessionID string) (*session.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	token, ok := m.tokens[sessionID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &session.Identity{SessionID: sessionID, Token: token}, nil
}

func (m *memorySessions) Create(_ context.Context, id *session.Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[id.SessionID] = id.Token
	return nil
}

func (m *memorySessions) UpdateToken(_ context.Context, sessionID, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[sessionID] = token
	return nil
}

func (m *memorySessions) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, sessionID)
	return nil
}
