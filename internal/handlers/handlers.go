package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tm-acme-shop/acme-shop-storefront/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/config"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/logging"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/metrics"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/service"
)

// ReadinessCheck is one dependency checked by GET /ready.
type ReadinessCheck struct {
	Name string
	Ping func(ctx context.Context) error
}

// Services groups the flows the handlers expose.
type Services struct {
	Cart     *service.CartService
	Counter  *service.CartCounter
	Checkout *service.CheckoutService
	Payment  *service.PaymentService
	Orders   *service.OrderService
	Catalog  *service.CatalogService
	Account  *service.AccountService
	Admin    *service.AdminService
}

// Handlers holds all HTTP handlers for the storefront.
type Handlers struct {
	cart     *service.CartService
	counter  *service.CartCounter
	checkout *service.CheckoutService
	payment  *service.PaymentService
	orders   *service.OrderService
	catalog  *service.CatalogService
	account  *service.AccountService
	admin    *service.AdminService
	metrics  *metrics.Metrics
	checks   []ReadinessCheck
	config   *config.Config
	logger   *logging.Logger
}

// NewHandlers creates a new handlers instance.
func NewHandlers(svc Services, cfg *config.Config, m *metrics.Metrics, checks ...ReadinessCheck) *Handlers {
	return &Handlers{
		cart:     svc.Cart,
		counter:  svc.Counter,
		checkout: svc.Checkout,
		payment:  svc.Payment,
		orders:   svc.Orders,
		catalog:  svc.Catalog,
		account:  svc.Account,
		admin:    svc.Admin,
		metrics:  m,
		checks:   checks,
		config:   cfg,
		logger:   logging.New("handlers"),
	}
}

// handleError maps service and upstream errors to responses. Upstream
// failures keep their status and server message.
func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)

	var validationErr *apperrors.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": validationErr.Message,
			"field": validationErr.Field,
		})
		return
	}

	var apiErr *apperrors.APIError
	if errors.As(err, &apiErr) {
		message := apiErr.Message
		if message == "" {
			message = http.StatusText(apiErr.StatusCode)
		}
		c.JSON(apiErr.StatusCode, gin.H{"error": message})
		return
	}

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, apperrors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "login required"})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, apperrors.ErrCheckoutNotStarted):
		c.JSON(http.StatusConflict, gin.H{"error": "checkout not started"})
	case errors.Is(err, apperrors.ErrSubmissionInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": "order submission already in progress"})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": "storefront temporarily unavailable"})
	}
}

// respondMessage answers {"message": ...} for endpoints that relay a
// server confirmation.
func respondMessage(c *gin.Context, message, fallback string) {
	if message == "" {
		message = fallback
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}

// paramID parses a positive integer route parameter.
func paramID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError(name, "invalid "+name)
	}
	return id, nil
}

func bindJSON(c *gin.Context, dst interface{}) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return apperrors.NewValidationError("body", "invalid request body")
	}
	return nil
}
