package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tm-acme-shop/acme-shop-storefront/internal/models"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/service"
)

type selectAddressRequest struct {
	AddressID int64 `json:"addressId"`
}

func (h *Handlers) respondCheckout(c *gin.Context, view *service.CheckoutView, err error) {
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// StartCheckout handles POST /api/checkout
func (h *Handlers) StartCheckout(c *gin.Context) {
	view, err := h.checkout.Start(c.Request.Context())
	h.respondCheckout(c, view, err)
}

// GetCheckout handles GET /api/checkout
func (h *Handlers) GetCheckout(c *gin.Context) {
	view, err := h.checkout.View(c.Request.Context())
	h.respondCheckout(c, view, err)
}

// SubmitContact handles POST /api/checkout/contact
func (h *Handlers) SubmitContact(c *gin.Context) {
	var contact models.ContactDetails
	if err := bindJSON(c, &contact); err != nil {
		handleError(c, err)
		return
	}

	view, err := h.checkout.SubmitContact(c.Request.Context(), contact)
	h.respondCheckout(c, view, err)
}

// EnterAddress handles GET /api/checkout/address
func (h *Handlers) EnterAddress(c *gin.Context) {
	view, err := h.checkout.EnterAddress(c.Request.Context())
	h.respondCheckout(c, view, err)
}

// SelectCheckoutAddress handles POST /api/checkout/address/select
func (h *Handlers) SelectCheckoutAddress(c *gin.Context) {
	var req selectAddressRequest
	if err := bindJSON(c, &req); err != nil {
		handleError(c, err)
		return
	}

	view, err := h.checkout.SelectAddress(c.Request.Context(), req.AddressID)
	h.respondCheckout(c, view, err)
}

// CheckoutBack handles POST /api/checkout/back
func (h *Handlers) CheckoutBack(c *gin.Context) {
	view, err := h.checkout.Back(c.Request.Context())
	h.respondCheckout(c, view, err)
}

// SubmitOrder handles POST /api/checkout/submit. The body is optional;
// when present it carries the typed shipping fields.
func (h *Handlers) SubmitOrder(c *gin.Context) {
	var shipping *models.ShippingDetails
	if c.Request.ContentLength != 0 {
		shipping = &models.ShippingDetails{}
		if err := bindJSON(c, shipping); err != nil {
			handleError(c, err)
			return
		}
	}

	view, err := h.checkout.Submit(c.Request.Context(), shipping)
	h.respondCheckout(c, view, err)
}
