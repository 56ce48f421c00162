package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tm-acme-shop/acme-shop-storefront/internal/service"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/session"
)

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// GetCart handles GET /api/cart
func (h *Handlers) GetCart(c *gin.Context) {
	c.JSON(http.StatusOK, h.cart.View(c.Request.Context()))
}

// UpdateCartItem handles PATCH /api/cart/items/:itemId
func (h *Handlers) UpdateCartItem(c *gin.Context) {
	itemID, err := paramID(c, "itemId")
	if err != nil {
		handleError(c, err)
		return
	}

	var req updateQuantityRequest
	if err := bindJSON(c, &req); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.cart.UpdateQuantity(c.Request.Context(), itemID, req.Quantity))
}

// DeleteCartItem handles DELETE /api/cart/items/:itemId
func (h *Handlers) DeleteCartItem(c *gin.Context) {
	itemID, err := paramID(c, "itemId")
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.cart.DeleteItem(c.Request.Context(), itemID))
}

// ClearCart handles DELETE /api/cart
func (h *Handlers) ClearCart(c *gin.Context) {
	c.JSON(http.StatusOK, h.cart.Clear(c.Request.Context()))
}

// CartCount handles GET /api/cart/count
func (h *Handlers) CartCount(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"count": h.counter.Count(c.Request.Context())})
}

// CartCountStream handles GET /api/cart/count/stream. It sends the current
// count, then every change for this session until the client disconnects.
func (h *Handlers) CartCountStream(c *gin.Context) {
	ctx := c.Request.Context()
	id := session.FromContext(ctx)
	if id == nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	updates := make(chan int, 8)
	unsubscribe := h.counter.Subscribe(func(u service.CartCountUpdate) {
		if u.SessionID != id.SessionID {
			return
		}
		select {
		case updates <- u.Count:
		default:
		}
	})
	defer unsubscribe()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("count", gin.H{"count": h.counter.Count(ctx)})

	c.Stream(func(io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case count := <-updates:
			c.SSEvent("count", gin.H{"count": count})
			return true
		}
	})
}
