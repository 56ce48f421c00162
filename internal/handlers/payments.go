package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tm-acme-shop/acme-shop-storefront/internal/models"
)

// GetPayment handles GET /api/payment/:orderId
func (h *Handlers) GetPayment(c *gin.Context) {
	c.JSON(http.StatusOK, h.payment.Load(c.Request.Context(), c.Param("orderId")))
}

// PayNow handles POST /api/payment/:orderId/pay
func (h *Handlers) PayNow(c *gin.Context) {
	c.JSON(http.StatusOK, h.payment.PayNow(c.Request.Context(), c.Param("orderId")))
}

// PayLater handles POST /api/payment/:orderId/later
func (h *Handlers) PayLater(c *gin.Context) {
	c.JSON(http.StatusOK, h.payment.PayLater(c.Request.Context(), c.Param("orderId")))
}

// SetShippingAddress handles POST /api/payment/:orderId/shipping-address
func (h *Handlers) SetShippingAddress(c *gin.Context) {
	var req models.ShippingAddressRequest
	if err := bindJSON(c, &req); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.payment.SetShippingAddress(c.Request.Context(), c.Param("orderId"), &req))
}
