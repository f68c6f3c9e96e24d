package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stagepass/internal/models"
)

// RegisterConsumer - POST /api/auth/register/consumer
func (h *Handlers) RegisterConsumer(c *gin.Context) {
	var req models.RegisterConsumerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.services.Users.RegisterConsumer(c.Request.Context(), &req)
	if err != nil {
		fail(c, "register_consumer", err)
		return
	}

	succeed("register_consumer")
	c.JSON(http.StatusCreated, response)
}

// RegisterProvider - POST /api/auth/register/provider
func (h *Handlers) RegisterProvider(c *gin.Context) {
	var req models.RegisterProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.services.Users.RegisterProvider(c.Request.Context(), &req)
	if err != nil {
		fail(c, "register_provider", err)
		return
	}

	succeed("register_provider")
	c.JSON(http.StatusCreated, response)
}

// Login - POST /api/auth/login
func (h *Handlers) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.services.Users.Login(c.Request.Context(), &req)
	if err != nil {
		fail(c, "login", err)
		return
	}

	succeed("login")
	c.JSON(http.StatusOK, response)
}

// Logout - POST /api/auth/logout
func (h *Handlers) Logout(c *gin.Context) {
	if err := h.services.Users.Logout(c.Request.Context(), sessionFrom(c)); err != nil {
		fail(c, "logout", err)
		return
	}

	succeed("logout")
	c.Status(http.StatusOK)
}

// UpdateConsumerProfile - PATCH /api/auth/profile/consumer
func (h *Handlers) UpdateConsumerProfile(c *gin.Context) {
	var req models.UpdateConsumerProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.services.Users.UpdateConsumerProfile(c.Request.Context(), sessionFrom(c), &req); err != nil {
		fail(c, "update_consumer_profile", err)
		return
	}

	succeed("update_consumer_profile")
	c.Status(http.StatusOK)
}

// UpdateProviderProfile - PATCH /api/auth/profile/provider
func (h *Handlers) UpdateProviderProfile(c *gin.Context) {
	var req models.UpdateProviderProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.services.Users.UpdateProviderProfile(c.Request.Context(), sessionFrom(c), &req); err != nil {
		fail(c, "update_provider_profile", err)
		return
	}

	succeed("update_provider_profile")
	c.Status(http.StatusOK)
}
