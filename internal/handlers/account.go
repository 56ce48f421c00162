package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tm-acme-shop/acme-shop-storefront/internal/models"
)

// Register handles POST /api/auth/register
func (h *Handlers) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := bindJSON(c, &req); err != nil {
		handleError(c, err)
		return
	}

	state, err := h.account.Register(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, state)
}

// Login handles POST /api/auth/login
func (h *Handlers) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := bindJSON(c, &req); err != nil {
		handleError(c, err)
		return
	}

	state, err := h.account.Login(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// Logout handles POST /api/auth/logout
func (h *Handlers) Logout(c *gin.Context) {
	state, err := h.account.Logout(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// AuthState handles GET /api/auth/state
func (h *Handlers) AuthState(c *gin.Context) {
	c.JSON(http.StatusOK, h.account.State(c.Request.Context()))
}

// GetProfile handles GET /api/account/profile
func (h *Handlers) GetProfile(c *gin.Context) {
	user, err := h.account.Profile(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateProfile handles PATCH /api/account/profile
func (h *Handlers) UpdateProfile(c *gin.Context) {
	var req models.UpdateUserRequest
	if err := bindJSON(c, &req); err != nil {
		handleError(c, err)
		return
	}

	message, err := h.account.UpdateProfile(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	respondMessage(c, message, "Profile updated")
}

// ChangePassword handles PATCH /api/account/password
func (h *Handlers) ChangePassword(c *gin.Context) {
	var req models.ChangePasswordRequest
	if err := bindJSON(c, &req); err != nil {
		handleError(c, err)
		return
	}

	message, err := h.account.ChangePassword(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	respondMessage(c, message, "Password changed")
}

// DeletePersonalData handles DELETE /api/account/personal-data
func (h *Handlers) DeletePersonalData(c *gin.Context) {
	message, err := h.account.DeletePersonalData(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	respondMessage(c, message, "Personal data deleted")
}

// DeleteAccount handles DELETE /api/account
func (h *Handlers) DeleteAccount(c *gin.Context) {
	message, err := h.account.DeleteAccount(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	respondMessage(c, message, "Account deleted")
}

// ListAddresses handles GET /api/account/addresses, optionally filtered
// by ?type=
func (h *Handlers) ListAddresses(c *gin.Context) {
	var (
		addresses []models.Address
		err       error
	)
	if t := c.Query("type"); t != "" {
		addresses, err = h.account.AddressesByType(c.Request.Context(), models.AddressType(t))
	} else {
		addresses, err = h.account.Addresses(c.Request.Context())
	}
	if err != nil {
		handleError(c, err)
		return
	}
	if addresses == nil {
		addresses = []models.Address{}
	}
	c.JSON(http.StatusOK, addresses)
}

// GetAddress handles GET /api/account/addresses/:id
func (h *Handlers) GetAddress(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		handleError(c, err)
		return
	}

	address, err := h.account.Address(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, address)
}

// CreateAddress handles POST /api/account/addresses
func (h *Handlers) CreateAddress(c *gin.Context) {
	var req models.AddressRequest
	if err := bindJSON(c, &req); err != nil {
		handleError(c, err)
		return
	}

	message, err := h.account.CreateAddress(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	respondMessage(c, message, "Address saved")
}

// UpdateAddress handles PATCH /api/account/addresses/:id
func (h *Handlers) UpdateAddress(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		handleError(c, err)
		return
	}

	var req models.AddressRequest
	if err := bindJSON(c, &req); err != nil {
		handleError(c, err)
		return
	}

	message, err := h.account.UpdateAddress(c.Request.Context(), id, &req)
	if err != nil {
		handleError(c, err)
		return
	}
	respondMessage(c, message, "Address updated")
}

// DeleteAddress handles DELETE /api/account/addresses/:id
func (h *Handlers) DeleteAddress(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		handleError(c, err)
		return
	}

	message, err := h.account.DeleteAddress(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	respondMessage(c, message, "Address deleted")
}
