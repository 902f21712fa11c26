package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/estatelink/backend/internal/services/referral"
)

// AmbassadorHandler handles ambassador related requests
type AmbassadorHandler struct {
	referrals *referral.ReferralService
}

// NewAmbassadorHandler creates a new ambassador handler
func NewAmbassadorHandler(referrals *referral.ReferralService) *AmbassadorHandler {
	return &AmbassadorHandler{referrals: referrals}
}

// Create registers a new ambassador
func (h *AmbassadorHandler) Create(c *gin.Context) {
	var input referral.CreateAmbassadorInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ambassador, err := h.referrals.CreateAmbassador(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, ambassador)
}

// List returns all ambassadors
func (h *AmbassadorHandler) List(c *gin.Context) {
	ambassadors, err := h.referrals.ListAmbassadors(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ambassadors": ambassadors})
}

// Get returns one ambassador by id
func (h *AmbassadorHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ambassador, err := h.referrals.GetAmbassador(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ambassador)
}

// Delete removes an ambassador, optionally cascading their leads
func (h *AmbassadorHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	deleteLeads := c.Query("delete_leads") == "true"

	if err := h.referrals.DeleteAmbassador(c.Request.Context(), id, deleteLeads); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Ambassador deleted"})
}
