package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/estatelink/backend/internal/models"
	"github.com/estatelink/backend/internal/services/lead"
	"github.com/estatelink/backend/internal/services/referral"
)

// LeadHandler handles lead related requests
type LeadHandler struct {
	leads     *lead.LeadService
	referrals *referral.ReferralService
}

// NewLeadHandler creates a new lead handler
func NewLeadHandler(leads *lead.LeadService, referrals *referral.ReferralService) *LeadHandler {
	return &LeadHandler{leads: leads, referrals: referrals}
}

// Create registers a manually captured lead
func (h *LeadHandler) Create(c *gin.Context) {
	var input lead.CreateLeadInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.leads.CreateLead(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// List returns leads matching the query filters
func (h *LeadHandler) List(c *gin.Context) {
	filter := lead.ListLeadsFilter{
		Status:       c.Query("status"),
		Source:       c.Query("source"),
		Country:      c.Query("country"),
		AmbassadorID: c.Query("ambassador_id"),
		DeveloperID:  c.Query("developer_id"),
	}
	if from, ok := parseDateQuery(c, "from"); ok {
		filter.From = from
	} else {
		return
	}
	if to, ok := parseDateQuery(c, "to"); ok {
		filter.To = to
	} else {
		return
	}

	leads, err := h.leads.ListLeads(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"leads": leads})
}

// Get returns one lead with its ambassador and deals
func (h *LeadHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	found, err := h.leads.GetLead(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, found)
}

// UpdateStatus moves a lead to a new pipeline status
func (h *LeadHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Status models.LeadStatus         `json:"status" binding:"required"`
		Reason *models.NotRelevantReason `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.leads.UpdateLeadStatus(c.Request.Context(), id, req.Status, req.Reason); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Status updated"})
}

// UpdateDealType sets the lead's deal type
func (h *LeadHandler) UpdateDealType(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		DealType string `json:"deal_type" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.leads.UpdateDealType(c.Request.Context(), id, req.DealType); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Deal type updated"})
}

// AssignAmbassador reattributes a lead to another ambassador
func (h *LeadHandler) AssignAmbassador(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		AmbassadorID uuid.UUID `json:"ambassador_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.referrals.AssignAmbassador(c.Request.Context(), id, req.AmbassadorID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Ambassador assigned"})
}

// Convert promotes a lead into an ambassador with a login
func (h *LeadHandler) Convert(c *gin.Context) {
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

	ambassador, err := h.referrals.ConvertLeadToAmbassador(c.Request.Context(), id, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, ambassador)
}

// Delete removes a lead and its dependents
func (h *LeadHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.leads.DeleteLead(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Lead deleted"})
}

// AddNote appends a note to a lead
func (h *LeadHandler) AddNote(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	note, err := h.leads.AddNote(c.Request.Context(), id, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, note)
}

// ListNotes returns a lead's notes, newest first
func (h *LeadHandler) ListNotes(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	notes, err := h.leads.ListNotes(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"notes": notes})
}

// CreateTask adds a follow-up task to a lead
func (h *LeadHandler) CreateTask(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Subject string  `json:"subject" binding:"required"`
		DueDate string  `json:"due_date" binding:"required"`
		DueTime *string `json:"due_time"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	dueDate, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "due_date must be YYYY-MM-DD"})
		return
	}

	task, err := h.leads.CreateTask(c.Request.Context(), id, req.Subject, dueDate, req.DueTime)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

// ListTasks returns a lead's tasks ordered by due date
func (h *LeadHandler) ListTasks(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	tasks, err := h.leads.ListTasks(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

// ToggleTask flips a task's completed flag
func (h *LeadHandler) ToggleTask(c *gin.Context) {
	taskID, ok := parseIDParam(c, "task_id")
	if !ok {
		return
	}

	if err := h.leads.ToggleTask(c.Request.Context(), taskID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task updated"})
}

// parseDateQuery reads an optional YYYY-MM-DD query parameter.
func parseDateQuery(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be YYYY-MM-DD"})
		return nil, false
	}
	return &t, true
}
