package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tm-acme-shop/acme-shop-storefront/internal/config"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/logging"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/models"
)

const (
	checkoutKeyPrefix   = "checkout:"
	submitKeyPrefix     = "checkout_submit:"
	ordersViewKeyPrefix = "orders_view:"
	cartCountKeyPrefix  = "cart_count:"
	defaultDraftTTL     = 30 * time.Minute
	defaultViewTTL      = 24 * time.Hour
)

var (
	_ CheckoutStore   = (*RedisViewCache)(nil)
	_ OrdersViewStore = (*RedisViewCache)(nil)
	_ CartCountStore  = (*RedisViewCache)(nil)
)

// RedisViewCache stores per-session view state in Redis.
type RedisViewCache struct {
	client   *redis.Client
	draftTTL time.Duration
	viewTTL  time.Duration
	logger   *logging.Logger
}

// NewRedisClient opens a client for the configured Redis instance.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// NewRedisViewCache wraps client. A zero draftTTL uses the default.
func NewRedisViewCache(client *redis.Client, draftTTL time.Duration) *RedisViewCache {
	if draftTTL == 0 {
		draftTTL = defaultDraftTTL
	}
	return &RedisViewCache{
		client:   client,
		draftTTL: draftTTL,
		viewTTL:  defaultViewTTL,
		logger:   logging.New("view-cache"),
	}
}

func (c *RedisViewCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// GetCheckout returns the draft or ErrCacheMiss.
func (c *RedisViewCache) GetCheckout(ctx context.Context, sessionID string) (*models.CheckoutState, error) {
	var state models.CheckoutState
	if err := c.getJSON(ctx, checkoutKeyPrefix+sessionID, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (c *RedisViewCache) SaveCheckout(ctx context.Context, sessionID string, state *models.CheckoutState) error {
	return c.setJSON(ctx, checkoutKeyPrefix+sessionID, state, c.draftTTL)
}

func (c *RedisViewCache) DeleteCheckout(ctx context.Context, sessionID string) error {
	if err := c.client.Del(ctx, checkoutKeyPrefix+sessionID).Err(); err != nil {
		c.logger.Error("Cache delete error", logging.Fields{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return err
	}
	return nil
}

func (c *RedisViewCache) AcquireSubmit(ctx context.Context, sessionID string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, submitKeyPrefix+sessionID, 1, ttl).Result()
}

func (c *RedisViewCache) ReleaseSubmit(ctx context.Context, sessionID string) error {
	return c.client.Del(ctx, submitKeyPrefix+sessionID).Err()
}

// GetOrdersView returns the stored order list or ErrCacheMiss.
func (c *RedisViewCache) GetOrdersView(ctx context.Context, sessionID string) ([]models.Order, error) {
	var orders []models.Order
	if err := c.getJSON(ctx, ordersViewKeyPrefix+sessionID, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *RedisViewCache) SaveOrdersView(ctx context.Context, sessionID string, orders []models.Order) error {
	return c.setJSON(ctx, ordersViewKeyPrefix+sessionID, orders, c.viewTTL)
}

// GetCartCount returns ErrCacheMiss for sessions with no stored count.
func (c *RedisViewCache) GetCartCount(ctx context.Context, sessionID string) (int, error) {
	value, err := c.client.Get(ctx, cartCountKeyPrefix+sessionID).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrCacheMiss
	}
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(value)
}

func (c *RedisViewCache) SetCartCount(ctx context.Context, sessionID string, count int) error {
	return c.client.Set(ctx, cartCountKeyPrefix+sessionID, count, c.viewTTL).Err()
}

func (c *RedisViewCache) getJSON(ctx context.Context, key string, dst interface{}) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		c.logger.Debug("Cache miss", logging.Fields{"key": key})
		return ErrCacheMiss
	}
	if err != nil {
		c.logger.Error("Cache get error", logging.Fields{
			"key":   key,
			"error": err.Error(),
		})
		return err
	}
	return json.Unmarshal(data, dst)
}

func (c *RedisViewCache) setJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		c.logger.Error("Cache set error", logging.Fields{
			"key":   key,
			"error": err.Error(),
		})
		return err
	}

	c.logger.Debug("View state cached", logging.Fields{
		"key": key,
		"ttl": ttl.String(),
	})
	return nil
}
