package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/estatelink/backend/internal/middleware"
	"github.com/estatelink/backend/internal/models"
	"github.com/estatelink/backend/internal/services/admin"
)

// UserHandler handles user administration requests
type UserHandler struct {
	users *admin.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(users *admin.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// Invite provisions a new user account and profile
func (h *UserHandler) Invite(c *gin.Context) {
	var input admin.InviteUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := h.users.InviteUser(c.Request.Context(), middleware.CallerRole(c), input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, profile)
}

// List returns all user profiles
func (h *UserHandler) List(c *gin.Context) {
	profiles, err := h.users.ListUsers(c.Request.Context(), middleware.CallerRole(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": profiles})
}

// UpdateRole changes a profile's role
func (h *UserHandler) UpdateRole(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Role models.Role `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.users.UpdateUserRole(c.Request.Context(), middleware.CallerRole(c), id, req.Role); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Role updated"})
}

// ToggleActive flips a profile's active flag
func (h *UserHandler) ToggleActive(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	active, err := h.users.ToggleUserActive(c.Request.Context(), middleware.CallerRole(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"is_active": active})
}

// ResetPassword sets a new password for a user
func (h *UserHandler) ResetPassword(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.users.ResetUserPassword(c.Request.Context(), middleware.CallerRole(c), id, req.Password); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password reset"})
}
