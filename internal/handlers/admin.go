package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tm-acme-shop/acme-shop-storefront/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/logging"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/models"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/service"
)

type updateStatusRequest struct {
	Status models.OrderStatus `json:"status"`
}

// readForms accepts a single product form or an array of them.
func readForms(c *gin.Context) ([]json.RawMessage, error) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, apperrors.NewValidationError("body", "invalid request body")
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, apperrors.NewValidationError("body", "invalid request body")
	}
	if body[0] == '{' {
		return []json.RawMessage{body}, nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, apperrors.NewValidationError("body", "invalid request body")
	}
	return raw, nil
}

// CreateProducts handles POST /api/admin/products/:category
func (h *Handlers) CreateProducts(c *gin.Context) {
	t, err := parseProductType(c)
	if err != nil {
		handleError(c, err)
		return
	}

	raw, err := readForms(c)
	if err != nil {
		handleError(c, err)
		return
	}
	forms, err := service.ProductForms(t, raw)
	if err != nil {
		handleError(c, err)
		return
	}

	message, err := h.admin.CreateProducts(c.Request.Context(), forms)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": message})
}

// UpdateProduct handles PATCH /api/admin/products/:category/:id
func (h *Handlers) UpdateProduct(c *gin.Context) {
	t, err := parseProductType(c)
	if err != nil {
		handleError(c, err)
		return
	}
	id, err := paramID(c, "id")
	if err != nil {
		handleError(c, err)
		return
	}

	var raw json.RawMessage
	if err := bindJSON(c, &raw); err != nil {
		handleError(c, err)
		return
	}
	form, err := service.DecodeProductForm(t, raw)
	if err != nil {
		handleError(c, err)
		return
	}

	message, err := h.admin.UpdateProduct(c.Request.Context(), id, form)
	if err != nil {
		handleError(c, err)
		return
	}
	respondMessage(c, message, "Product updated")
}

// DeleteProduct handles DELETE /api/admin/products/:category/:id
func (h *Handlers) DeleteProduct(c *gin.Context) {
	t, err := parseProductType(c)
	if err != nil {
		handleError(c, err)
		return
	}
	id, err := paramID(c, "id")
	if err != nil {
		handleError(c, err)
		return
	}

	message, err := h.admin.DeleteProduct(c.Request.Context(), t, id)
	if err != nil {
		handleError(c, err)
		return
	}
	respondMessage(c, message, "Product deleted")
}

// AdminListOrders handles GET /api/admin/orders
func (h *Handlers) AdminListOrders(c *gin.Context) {
	filter, err := parseOrderFilter(c)
	if err != nil {
		handleError(c, err)
		return
	}
	paging, err := parsePaging(c)
	if err != nil {
		handleError(c, err)
		return
	}

	page, err := h.admin.Orders(c.Request.Context(), filter, paging)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// AdminGetOrder handles GET /api/admin/orders/:id
func (h *Handlers) AdminGetOrder(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		handleError(c, err)
		return
	}

	order, err := h.admin.Order(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// UpdateOrderStatus handles PATCH /api/admin/orders/:id/status
func (h *Handlers) UpdateOrderStatus(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		handleError(c, err)
		return
	}

	var req updateStatusRequest
	if err := bindJSON(c, &req); err != nil {
		handleError(c, err)
		return
	}

	message, err := h.admin.UpdateOrderStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		handleError(c, err)
		return
	}

	h.logger.Info("Order status changed by admin", logging.Fields{
		"order_id":   id,
		"new_status": req.Status,
	})
	respondMessage(c, message, "Order status updated")
}

// AdminListUsers handles GET /api/admin/users
func (h *Handlers) AdminListUsers(c *gin.Context) {
	paging, err := parsePaging(c)
	if err != nil {
		handleError(c, err)
		return
	}

	page, err := h.admin.Users(c.Request.Context(), parseUserFilter(c), paging)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// AdminGetUser handles GET /api/admin/users/:id
func (h *Handlers) AdminGetUser(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		handleError(c, err)
		return
	}

	user, err := h.admin.User(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// AdminDeleteUser handles DELETE /api/admin/users/:id
func (h *Handlers) AdminDeleteUser(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		handleError(c, err)
		return
	}

	message, err := h.admin.DeleteUser(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	respondMessage(c, message, "User deleted")
}

// AddRole handles POST /api/admin/users/:id/roles/:roleId
func (h *Handlers) AddRole(c *gin.Context) {
	userID, roleID, err := userRoleParams(c)
	if err != nil {
		handleError(c, err)
		return
	}

	message, err := h.admin.AddRole(c.Request.Context(), userID, roleID)
	if err != nil {
		handleError(c, err)
		return
	}
	respondMessage(c, message, "Role added")
}

// RemoveRole handles DELETE /api/admin/users/:id/roles/:roleId
func (h *Handlers) RemoveRole(c *gin.Context) {
	userID, roleID, err := userRoleParams(c)
	if err != nil {
		handleError(c, err)
		return
	}

	message, err := h.admin.RemoveRole(c.Request.Context(), userID, roleID)
	if err != nil {
		handleError(c, err)
		return
	}
	respondMessage(c, message, "Role removed")
}

func userRoleParams(c *gin.Context) (int64, int64, error) {
	userID, err := paramID(c, "id")
	if err != nil {
		return 0, 0, err
	}
	roleID, err := paramID(c, "roleId")
	if err != nil {
		return 0, 0, err
	}
	return userID, roleID, nil
}

// AdminListImages handles GET /api/admin/images
func (h *Handlers) AdminListImages(c *gin.Context) {
	images, err := h.admin.Images(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	if images == nil {
		images = []models.Image{}
	}
	c.JSON(http.StatusOK, images)
}

// AdminGetImage handles GET /api/admin/images/:id
func (h *Handlers) AdminGetImage(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		handleError(c, err)
		return
	}

	image, err := h.admin.Image(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, image)
}

// CreateImage handles POST /api/admin/images
func (h *Handlers) CreateImage(c *gin.Context) {
	var req models.ImageRequest
	if err := bindJSON(c, &req); err != nil {
		handleError(c, err)
		return
	}

	message, err := h.admin.CreateImage(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": message})
}

// UpdateImage handles PATCH /api/admin/images/:id
func (h *Handlers) UpdateImage(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		handleError(c, err)
		return
	}

	var req models.ImageRequest
	if err := bindJSON(c, &req); err != nil {
		handleError(c, err)
		return
	}

	message, err := h.admin.UpdateImage(c.Request.Context(), id, &req)
	if err != nil {
		handleError(c, err)
		return
	}
	respondMessage(c, message, "Image updated")
}

// DeleteImage handles DELETE /api/admin/images/:id
func (h *Handlers) DeleteImage(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		handleError(c, err)
		return
	}

	message, err := h.admin.DeleteImage(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	respondMessage(c, message, "Image deleted")
}

// AddProductImages handles POST /api/admin/product-images/:productId
func (h *Handlers) AddProductImages(c *gin.Context) {
	productID, err := paramID(c, "productId")
	if err != nil {
		handleError(c, err)
		return
	}

	var reqs []models.ImageRequest
	if err := bindJSON(c, &reqs); err != nil {
		handleError(c, err)
		return
	}

	message, err := h.admin.AddImagesToProduct(c.Request.Context(), productID, reqs)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": message})
}

// DeleteProductImages handles DELETE /api/admin/product-images/:productId
func (h *Handlers) DeleteProductImages(c *gin.Context) {
	productID, err := paramID(c, "productId")
	if err != nil {
		handleError(c, err)
		return
	}

	message, err := h.admin.DeleteProductImages(c.Request.Context(), productID)
	if err != nil {
		handleError(c, err)
		return
	}
	respondMessage(c, message, "Product images deleted")
}
