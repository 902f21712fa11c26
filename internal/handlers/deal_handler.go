package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/estatelink/backend/internal/models"
	"github.com/estatelink/backend/internal/services/pipeline"
)

// DealHandler handles matching and deal stage requests
type DealHandler struct {
	deals *pipeline.DealService
}

// NewDealHandler creates a new deal handler
func NewDealHandler(deals *pipeline.DealService) *DealHandler {
	return &DealHandler{deals: deals}
}

// Suggestions returns developers matching the lead's preferred area
func (h *DealHandler) Suggestions(c *gin.Context) {
	leadID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	developers, err := h.deals.GetSuggestions(c.Request.Context(), leadID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"suggestions": developers})
}

// Match creates the deal between a lead and a developer
func (h *DealHandler) Match(c *gin.Context) {
	leadID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		DeveloperID uuid.UUID `json:"developer_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	deal, err := h.deals.MatchToDeveloper(c.Request.Context(), leadID, req.DeveloperID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, deal)
}

// Get returns one deal with its lead and developer
func (h *DealHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	deal, err := h.deals.GetDeal(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, deal)
}

// UpdateStage moves a deal through the pipeline
func (h *DealHandler) UpdateStage(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Stage models.DealStage `json:"stage" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.deals.UpdateDealStage(c.Request.Context(), id, req.Stage); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Stage updated"})
}
