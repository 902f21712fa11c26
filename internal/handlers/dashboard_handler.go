package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/estatelink/backend/internal/services/analytics"
)

// DashboardHandler serves the aggregate dashboard and the cached directories
type DashboardHandler struct {
	analytics *analytics.AnalyticsService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(a *analytics.AnalyticsService) *DashboardHandler {
	return &DashboardHandler{analytics: a}
}

// Dashboard returns the aggregate dashboard view
func (h *DashboardHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.analytics.GetDashboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

// AmbassadorDirectory returns the id/name picker list of ambassadors
func (h *DashboardHandler) AmbassadorDirectory(c *gin.Context) {
	entries, err := h.analytics.AmbassadorDirectory(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ambassadors": entries})
}

// DeveloperDirectory returns the picker list of developers
func (h *DashboardHandler) DeveloperDirectory(c *gin.Context) {
	entries, err := h.analytics.DeveloperDirectory(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"developers": entries})
}
