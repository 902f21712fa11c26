package lead

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/estatelink/backend/internal/cache"
	"github.com/estatelink/backend/internal/errs"
	"github.com/estatelink/backend/internal/models"
)

// LeadService owns lead records, their status lifecycle, notes and tasks.
type LeadService struct {
	db    *gorm.DB
	cache cache.Invalidator
}

// NewLeadService creates a new lead service
func NewLeadService(db *gorm.DB, c cache.Invalidator) *LeadService {
	return &LeadService{db: db, cache: c}
}

// CreateLeadInput carries the fields of a staff-created lead.
type CreateLeadInput struct {
	FullName      string  `json:"full_name" binding:"required"`
	Email         string  `json:"email" binding:"required,email"`
	Phone         *string `json:"phone"`
	Country       string  `json:"country"`
	City          *string `json:"city"`
	Budget        *string `json:"budget"`
	PreferredArea *string `json:"preferred_area"`
	Rooms         *string `json:"rooms"`
	PropertyType  *string `json:"property_type"`
	Readiness     *string `json:"readiness"`
	Notes         *string `json:"notes"`
	AmbassadorID  *string `json:"ambassador_id"`
}

// ListLeadsFilter narrows ListLeads results.
type ListLeadsFilter struct {
	Status       string
	Source       string
	Country      string
	AmbassadorID string
	DeveloperID  string
	From         *time.Time
	To           *time.Time
}

// CreateLead persists a manually captured lead. When attributed to an
// ambassador, the referral counter moves in the same transaction.
func (s *LeadService) CreateLead(ctx context.Context, input CreateLeadInput) (*models.Lead, error) {
	if strings.TrimSpace(input.FullName) == "" || strings.TrimSpace(input.Email) == "" {
		return nil, fmt.Errorf("%w: full name and email are required", errs.ErrValidation)
	}

	country := input.Country
	if country == "" {
		country = "Israel"
	}

	var ambassadorID *uuid.UUID
	if input.AmbassadorID != nil && *input.AmbassadorID != "" {
		id, err := uuid.Parse(*input.AmbassadorID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid ambassador id", errs.ErrValidation)
		}
		ambassadorID = &id
	}

	lead := models.Lead{
		FullName:      input.FullName,
		Email:         input.Email,
		Phone:         input.Phone,
		Country:       country,
		City:          input.City,
		Budget:        input.Budget,
		PreferredArea: input.PreferredArea,
		Rooms:         input.Rooms,
		PropertyType:  input.PropertyType,
		Readiness:     input.Readiness,
		Notes:         input.Notes,
		Status:        models.LeadStatusNew,
		Source:        models.LeadSourceManual,
		AmbassadorID:  ambassadorID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if ambassadorID != nil {
			var count int64
			if err := tx.Model(&models.Ambassador{}).Where("id = ?", *ambassadorID).Count(&count).Error; err != nil {
				return fmt.Errorf("checking ambassador: %w", err)
			}
			if count == 0 {
				return fmt.Errorf("%w: ambassador", errs.ErrNotFound)
			}
		}

		if err := tx.Create(&lead).Error; err != nil {
			return fmt.Errorf("creating lead: %w", err)
		}

		if ambassadorID != nil {
			if err := tx.Model(&models.Ambassador{}).Where("id = ?", *ambassadorID).
				Update("total_referrals", gorm.Expr("total_referrals + 1")).Error; err != nil {
				return fmt.Errorf("updating referral counter: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, cache.TagDashboard, cache.TagAmbassadors)
	return &lead, nil
}

// UpdateLeadStatus writes a status from the fixed enumeration. NotRelevant
// requires a reason from the fixed list; the reason is cleared on any other
// status.
func (s *LeadService) UpdateLeadStatus(ctx context.Context, leadID uuid.UUID, status models.LeadStatus, reason *models.NotRelevantReason) error {
	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", errs.ErrValidation, status)
	}

	updates := map[string]interface{}{"status": status}
	if status == models.LeadStatusNotRelevant {
		if reason == nil || !reason.Valid() {
			return fmt.Errorf("%w: a reason is required when marking a lead not relevant", errs.ErrValidation)
		}
		updates["not_relevant_reason"] = *reason
	} else {
		updates["not_relevant_reason"] = nil
	}

	res := s.db.WithContext(ctx).Model(&models.Lead{}).Where("id = ?", leadID).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("updating lead status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: lead", errs.ErrNotFound)
	}

	s.invalidate(ctx, cache.TagDashboard)
	return nil
}

// UpdateDealType sets the lead's deal-type classification.
func (s *LeadService) UpdateDealType(ctx context.Context, leadID uuid.UUID, dealType string) error {
	res := s.db.WithContext(ctx).Model(&models.Lead{}).Where("id = ?", leadID).Update("deal_type", dealType)
	if res.Error != nil {
		return fmt.Errorf("updating deal type: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: lead", errs.ErrNotFound)
	}
	return nil
}

// DeleteLead removes a lead, cascading its deals, notes and tasks, and
// decrements the attributed ambassador's referral counter.
func (s *LeadService) DeleteLead(ctx context.Context, leadID uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var lead models.Lead
		if err := tx.First(&lead, "id = ?", leadID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: lead", errs.ErrNotFound)
			}
			return fmt.Errorf("loading lead: %w", err)
		}

		if err := tx.Where("lead_id = ?", leadID).Delete(&models.Deal{}).Error; err != nil {
			return fmt.Errorf("deleting lead deals: %w", err)
		}
		if err := tx.Where("lead_id = ?", leadID).Delete(&models.LeadNote{}).Error; err != nil {
			return fmt.Errorf("deleting lead notes: %w", err)
		}
		if err := tx.Where("lead_id = ?", leadID).Delete(&models.LeadTask{}).Error; err != nil {
			return fmt.Errorf("deleting lead tasks: %w", err)
		}

		if lead.AmbassadorID != nil {
			if err := tx.Model(&models.Ambassador{}).Where("id = ?", *lead.AmbassadorID).
				Update("total_referrals", gorm.Expr("CASE WHEN total_referrals - 1 < 0 THEN 0 ELSE total_referrals - 1 END")).Error; err != nil {
				return fmt.Errorf("updating referral counter: %w", err)
			}
		}

		if err := tx.Delete(&lead).Error; err != nil {
			return fmt.Errorf("deleting lead: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, cache.TagDashboard, cache.TagAmbassadors)
	return nil
}

// GetLead returns a lead with its ambassador and deals preloaded.
func (s *LeadService) GetLead(ctx context.Context, leadID uuid.UUID) (*models.Lead, error) {
	var lead models.Lead
	err := s.db.WithContext(ctx).Preload("Ambassador").Preload("Deals").First(&lead, "id = ?", leadID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: lead", errs.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading lead: %w", err)
	}
	return &lead, nil
}

// ListLeads returns leads matching the filter, newest first.
func (s *LeadService) ListLeads(ctx context.Context, filter ListLeadsFilter) ([]models.Lead, error) {
	query := s.db.WithContext(ctx).Model(&models.Lead{}).Preload("Ambassador")

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Source != "" {
		query = query.Where("source = ?", filter.Source)
	}
	if filter.Country != "" {
		query = query.Where("country = ?", filter.Country)
	}
	if filter.AmbassadorID != "" {
		query = query.Where("ambassador_id = ?", filter.AmbassadorID)
	}
	if filter.DeveloperID != "" {
		query = query.Where("id IN (?)", s.db.Model(&models.Deal{}).Select("lead_id").Where("developer_id = ?", filter.DeveloperID))
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at <= ?", *filter.To)
	}

	var leads []models.Lead
	if err := query.Order("created_at desc").Find(&leads).Error; err != nil {
		return nil, fmt.Errorf("listing leads: %w", err)
	}
	return leads, nil
}

// AddNote appends a timestamped note to a lead.
func (s *LeadService) AddNote(ctx context.Context, leadID uuid.UUID, content string) (*models.LeadNote, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: note content is required", errs.ErrValidation)
	}
	if err := s.requireLead(ctx, leadID); err != nil {
		return nil, err
	}

	note := models.LeadNote{LeadID: leadID, Content: content}
	if err := s.db.WithContext(ctx).Create(&note).Error; err != nil {
		return nil, fmt.Errorf("creating note: %w", err)
	}
	return &note, nil
}

// ListNotes returns a lead's notes, newest first.
func (s *LeadService) ListNotes(ctx context.Context, leadID uuid.UUID) ([]models.LeadNote, error) {
	var notes []models.LeadNote
	if err := s.db.WithContext(ctx).Where("lead_id = ?", leadID).Order("created_at desc").Find(&notes).Error; err != nil {
		return nil, fmt.Errorf("listing notes: %w", err)
	}
	return notes, nil
}

// CreateTask adds a follow-up task on a lead.
func (s *LeadService) CreateTask(ctx context.Context, leadID uuid.UUID, subject string, dueDate time.Time, dueTime *string) (*models.LeadTask, error) {
	if strings.TrimSpace(subject) == "" {
		return nil, fmt.Errorf("%w: task subject is required", errs.ErrValidation)
	}
	if err := s.requireLead(ctx, leadID); err != nil {
		return nil, err
	}

	task := models.LeadTask{LeadID: leadID, Subject: subject, DueDate: dueDate, DueTime: dueTime}
	if err := s.db.WithContext(ctx).Create(&task).Error; err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}
	return &task, nil
}

// ToggleTask flips a task's completed flag.
func (s *LeadService) ToggleTask(ctx context.Context, taskID uuid.UUID) error {
	res := s.db.WithContext(ctx).Model(&models.LeadTask{}).Where("id = ?", taskID).
		Update("completed", gorm.Expr("NOT completed"))
	if res.Error != nil {
		return fmt.Errorf("toggling task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: task", errs.ErrNotFound)
	}
	return nil
}

// ListTasks returns a lead's tasks ordered by due date.
func (s *LeadService) ListTasks(ctx context.Context, leadID uuid.UUID) ([]models.LeadTask, error) {
	var tasks []models.LeadTask
	if err := s.db.WithContext(ctx).Where("lead_id = ?", leadID).Order("due_date asc").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	return tasks, nil
}

func (s *LeadService) requireLead(ctx context.Context, leadID uuid.UUID) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Lead{}).Where("id = ?", leadID).Count(&count).Error; err != nil {
		return fmt.Errorf("checking lead: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("%w: lead", errs.ErrNotFound)
	}
	return nil
}

func (s *LeadService) invalidate(ctx context.Context, tags ...string) {
	if err := s.cache.InvalidateTags(ctx, tags...); err != nil {
		log.Printf("cache invalidation failed for %v: %v", tags, err)
	}
}
