package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/estatelink/backend/internal/services/pipeline"
)

// DeveloperHandler handles developer related requests
type DeveloperHandler struct {
	deals *pipeline.DealService
}

// NewDeveloperHandler creates a new developer handler
func NewDeveloperHandler(deals *pipeline.DealService) *DeveloperHandler {
	return &DeveloperHandler{deals: deals}
}

// Create registers a new developer
func (h *DeveloperHandler) Create(c *gin.Context) {
	var input pipeline.CreateDeveloperInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	developer, err := h.deals.CreateDeveloper(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, developer)
}

// List returns all developers
func (h *DeveloperHandler) List(c *gin.Context) {
	developers, err := h.deals.ListDevelopers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"developers": developers})
}

// Get returns one developer by id
func (h *DeveloperHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	developer, err := h.deals.GetDeveloper(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, developer)
}

// Delete removes a developer and its deals
func (h *DeveloperHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.deals.DeleteDeveloper(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Developer deleted"})
}
