package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/estatelink/backend/internal/services/referral"
)

// ReferralHandler serves the public referral endpoints guarded by the API
// key middleware.
type ReferralHandler struct {
	referrals *referral.ReferralService
}

// NewReferralHandler creates a new referral handler
func NewReferralHandler(referrals *referral.ReferralService) *ReferralHandler {
	return &ReferralHandler{referrals: referrals}
}

// Lookup resolves a referral code to the ambassador's public details
func (h *ReferralHandler) Lookup(c *gin.Context) {
	code := c.Param("code")

	info, err := h.referrals.LookupReferralCode(c.Request.Context(), code)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, info)
}

// Submit accepts a referred lead from the public landing page
func (h *ReferralHandler) Submit(c *gin.Context) {
	var input referral.SubmitReferralInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.referrals.SubmitReferral(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"lead_id": created.ID})
}
