package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/estatelink/backend/internal/middleware"
	"github.com/estatelink/backend/internal/models"
	"github.com/estatelink/backend/internal/services/lead"
	"github.com/estatelink/backend/internal/services/pipeline"
	"github.com/estatelink/backend/internal/services/referral"
)

// PortalHandler serves the ambassador self-service portal. Every endpoint is
// scoped to the ambassador record linked to the caller's profile.
type PortalHandler struct {
	referrals *referral.ReferralService
	leads     *lead.LeadService
	deals     *pipeline.DealService
}

// NewPortalHandler creates a new portal handler
func NewPortalHandler(referrals *referral.ReferralService, leads *lead.LeadService, deals *pipeline.DealService) *PortalHandler {
	return &PortalHandler{referrals: referrals, leads: leads, deals: deals}
}

// Me returns the caller's own ambassador record
func (h *PortalHandler) Me(c *gin.Context) {
	ambassador, ok := h.callerAmbassador(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, ambassador)
}

// MyLeads returns the leads attributed to the caller
func (h *PortalHandler) MyLeads(c *gin.Context) {
	ambassador, ok := h.callerAmbassador(c)
	if !ok {
		return
	}

	leads, err := h.leads.ListLeads(c.Request.Context(), lead.ListLeadsFilter{
		AmbassadorID: ambassador.ID.String(),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"leads": leads})
}

// MyDeals returns the deals attributed to the caller
func (h *PortalHandler) MyDeals(c *gin.Context) {
	ambassador, ok := h.callerAmbassador(c)
	if !ok {
		return
	}

	deals, err := h.deals.ListDealsByAmbassador(c.Request.Context(), ambassador.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deals": deals})
}

func (h *PortalHandler) callerAmbassador(c *gin.Context) (*models.Ambassador, bool) {
	value, exists := c.Get(middleware.ContextProfileID)
	if !exists {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return nil, false
	}
	profileID := value.(uuid.UUID)

	ambassador, err := h.referrals.FindByUserProfile(c.Request.Context(), profileID)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return ambassador, true
}
