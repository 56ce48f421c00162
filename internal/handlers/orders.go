package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tm-acme-shop/acme-shop-storefront/internal/logging"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/service"
)

// ListOrders handles GET /api/orders
func (h *Handlers) ListOrders(c *gin.Context) {
	c.JSON(http.StatusOK, h.orders.List(c.Request.Context()))
}

// RequestCancel handles POST /api/orders/:orderId/cancel. It only returns
// the confirmation prompt; nothing is cancelled yet.
func (h *Handlers) RequestCancel(c *gin.Context) {
	orderID, err := service.ParseOrderID(c.Param("orderId"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.orders.RequestCancel(c.Request.Context(), orderID))
}

// ConfirmCancel handles POST /api/orders/:orderId/cancel/confirm
func (h *Handlers) ConfirmCancel(c *gin.Context) {
	orderID, err := service.ParseOrderID(c.Param("orderId"))
	if err != nil {
		handleError(c, err)
		return
	}

	h.logger.Info("Cancellation confirmed", logging.Fields{
		"order_id":   orderID,
		"request_id": c.GetString("request_id"),
	})
	c.JSON(http.StatusOK, h.orders.ConfirmCancel(c.Request.Context(), orderID))
}
