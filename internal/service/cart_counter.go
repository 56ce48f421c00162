package service

import (
	"context"
	"errors"
	"sync"

	"github.com/tm-acme-shop/acme-shop-storefront/internal/clients"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/events"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/logging"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/metrics"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/models"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/repository"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/session"
)

// CartCountUpdate is what subscribers receive after a refresh.
type CartCountUpdate struct {
	SessionID string `json:"sessionId"`
	Count     int    `json:"count"`
}

// CartCounter holds the cart badge count of every session. The count is
// always recomputed from a full cart fetch; it is never incremented locally.
type CartCounter struct {
	cart      clients.CartClient
	store     repository.CartCountStore
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    *logging.Logger

	mu          sync.RWMutex
	nextID      int
	subscribers map[int]func(CartCountUpdate)
}

// NewCartCounter creates a counter. publisher may be nil when cart
// broadcasts are disabled.
func NewCartCounter(cart clients.CartClient, store repository.CartCountStore, publisher events.Publisher, m *metrics.Metrics) *CartCounter {
	return &CartCounter{
		cart:        cart,
		store:       store,
		publisher:   publisher,
		metrics:     m,
		logger:      logging.New("cart-counter"),
		subscribers: make(map[int]func(CartCountUpdate)),
	}
}

// Refresh refetches the cart of the session in ctx and stores the summed
// quantity. Any fetch failure resets the count to zero without surfacing.
func (c *CartCounter) Refresh(ctx context.Context) int {
	sessionID := sessionIDFrom(ctx)

	count := 0
	items, err := c.cart.GetCart(ctx)
	if err != nil {
		c.logger.Debug("Cart refresh failed, resetting count", logging.Fields{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	} else {
		count = models.TotalQuantity(items)
	}
	c.metrics.CartRefreshed(err == nil)

	if sessionID == "" {
		return count
	}

	if err := c.store.SetCartCount(ctx, sessionID, count); err != nil {
		c.logger.Error("Failed to store cart count", logging.Fields{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	}

	c.notify(CartCountUpdate{SessionID: sessionID, Count: count})

	if c.publisher != nil {
		if err := c.publisher.PublishCartCountChanged(ctx, sessionID, count); err != nil {
			c.logger.Error("Failed to publish cart count", logging.Fields{
				"session_id": sessionID,
				"error":      err.Error(),
			})
		}
	}

	return count
}

// Count returns the last stored count for the session in ctx.
func (c *CartCounter) Count(ctx context.Context) int {
	sessionID := sessionIDFrom(ctx)
	if sessionID == "" {
		return 0
	}

	count, err := c.store.GetCartCount(ctx, sessionID)
	if errors.Is(err, repository.ErrCacheMiss) {
		return c.seed(ctx, sessionID)
	}
	if err != nil {
		c.logger.Debug("Cart count unavailable", logging.Fields{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return 0
	}
	return count
}

// seed fills a missing count from the cart summary. A failed summary is not
// stored, so the next read tries again.
func (c *CartCounter) seed(ctx context.Context, sessionID string) int {
	summary, err := c.cart.GetSummary(ctx)
	if err != nil {
		c.logger.Debug("Cart summary unavailable", logging.Fields{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return 0
	}

	count := models.TotalQuantity(summary.Items)
	if err := c.store.SetCartCount(ctx, sessionID, count); err != nil {
		c.logger.Error("Failed to store cart count", logging.Fields{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	}
	return count
}

// Subscribe registers fn for every count update and returns a function
// that removes it.
func (c *CartCounter) Subscribe(fn func(CartCountUpdate)) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.subscribers[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subscribers, id)
			c.mu.Unlock()
		})
	}
}

// Deliver fans out a count computed by another instance. The shared store
// already holds the value, so only local subscribers are told.
func (c *CartCounter) Deliver(sessionID string, count int) {
	c.notify(CartCountUpdate{SessionID: sessionID, Count: count})
}

func (c *CartCounter) notify(update CartCountUpdate) {
	c.mu.RLock()
	fns := make([]func(CartCountUpdate), 0, len(c.subscribers))
	for _, fn := range c.subscribers {
		fns = append(fns, fn)
	}
	c.mu.RUnlock()

	for _, fn := range fns {
		fn(update)
	}
}

func sessionIDFrom(ctx context.Context) string {
	if id := session.FromContext(ctx); id != nil {
		return id.SessionID
	}
	return ""
}
