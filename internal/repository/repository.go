package repository

import (
	"context"
	"errors"
	"time"

	"github.com/tm-acme-shop/acme-shop-storefront/internal/models"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/session"
)

// ErrCacheMiss is returned when a key has no stored value.
var ErrCacheMiss = errors.New("cache miss")

// SessionRepository persists browser sessions so a client id outlives
// server restarts.
type SessionRepository interface {
	Get(ctx context.Context, sessionID string) (*session.Identity, error)
	Create(ctx context.Context, id *session.Identity) error
	UpdateToken(ctx context.Context, sessionID, token string) error
	Delete(ctx context.Context, sessionID string) error
}

// CheckoutStore keeps checkout drafts between requests.
type CheckoutStore interface {
	GetCheckout(ctx context.Context, sessionID string) (*models.CheckoutState, error)
	SaveCheckout(ctx context.Context, sessionID string, state *models.CheckoutState) error
	DeleteCheckout(ctx context.Context, sessionID string) error
	// AcquireSubmit takes the per-session submission lock. It reports false
	// when another submission already holds it.
	AcquireSubmit(ctx context.Context, sessionID string, ttl time.Duration) (bool, error)
	ReleaseSubmit(ctx context.Context, sessionID string) error
}

// OrdersViewStore keeps the order list a session is looking at.
type OrdersViewStore interface {
	GetOrdersView(ctx context.Context, sessionID string) ([]models.Order, error)
	SaveOrdersView(ctx context.Context, sessionID string, orders []models.Order) error
}

// CartCountStore holds the shared cart badge count per session.
type CartCountStore interface {
	GetCartCount(ctx context.Context, sessionID string) (int, error)
	SetCartCount(ctx context.Context, sessionID string, count int) error
}
