package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/estatelink/backend/internal/cache"
	"github.com/estatelink/backend/internal/errs"
	"github.com/estatelink/backend/internal/models"
)

// DealService owns developers, developer matching and the deal stage state
// machine. It is the only writer of Ambassador.ClosedDeals.
type DealService struct {
	db    *gorm.DB
	cache cache.Invalidator
}

// NewDealService creates a new deal service
func NewDealService(db *gorm.DB, c cache.Invalidator) *DealService {
	return &DealService{db: db, cache: c}
}

// CreateDeveloperInput carries the fields of a new developer.
type CreateDeveloperInput struct {
	CompanyName string  `json:"company_name" binding:"required"`
	ContactName string  `json:"contact_name"`
	Email       string  `json:"email"`
	Phone       *string `json:"phone"`
	BuildAreas  string  `json:"build_areas"`
	ProjectType string  `json:"project_type"`
	PriceRange  string  `json:"price_range"`
}

// CreateDeveloper persists a new developer.
func (s *DealService) CreateDeveloper(ctx context.Context, input CreateDeveloperInput) (*models.Developer, error) {
	if strings.TrimSpace(input.CompanyName) == "" {
		return nil, fmt.Errorf("%w: company name is required", errs.ErrValidation)
	}

	developer := models.Developer{
		CompanyName: input.CompanyName,
		ContactName: input.ContactName,
		Email:       input.Email,
		Phone:       input.Phone,
		BuildAreas:  input.BuildAreas,
		ProjectType: input.ProjectType,
		PriceRange:  input.PriceRange,
	}
	if err := s.db.WithContext(ctx).Create(&developer).Error; err != nil {
		return nil, fmt.Errorf("creating developer: %w", err)
	}

	s.invalidate(ctx, cache.TagDevelopers, cache.TagDashboard)
	return &developer, nil
}

// GetDeveloper returns a developer by id.
func (s *DealService) GetDeveloper(ctx context.Context, id uuid.UUID) (*models.Developer, error) {
	var developer models.Developer
	if err := s.db.WithContext(ctx).First(&developer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: developer", errs.ErrNotFound)
		}
		return nil, fmt.Errorf("loading developer: %w", err)
	}
	return &developer, nil
}

// ListDevelopers returns all developers ordered by company name.
func (s *DealService) ListDevelopers(ctx context.Context) ([]models.Developer, error) {
	var developers []models.Developer
	if err := s.db.WithContext(ctx).Order("company_name asc").Find(&developers).Error; err != nil {
		return nil, fmt.Errorf("listing developers: %w", err)
	}
	return developers, nil
}

// DeleteDeveloper removes a developer and cascades its deals.
func (s *DealService) DeleteDeveloper(ctx context.Context, developerID uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var developer models.Developer
		if err := tx.First(&developer, "id = ?", developerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: developer", errs.ErrNotFound)
			}
			return fmt.Errorf("loading developer: %w", err)
		}

		if err := tx.Where("developer_id = ?", developerID).Delete(&models.Deal{}).Error; err != nil {
			return fmt.Errorf("deleting developer deals: %w", err)
		}
		if err := tx.Delete(&developer).Error; err != nil {
			return fmt.Errorf("deleting developer: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, cache.TagDevelopers, cache.TagDashboard)
	return nil
}

// GetSuggestions returns developers whose build areas contain the lead's
// preferred area (comma-split, trimmed, case-insensitive). A lead without a
// preference yields no suggestions. Read-only.
func (s *DealService) GetSuggestions(ctx context.Context, leadID uuid.UUID) ([]models.Developer, error) {
	var lead models.Lead
	if err := s.db.WithContext(ctx).First(&lead, "id = ?", leadID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: lead", errs.ErrNotFound)
		}
		return nil, fmt.Errorf("loading lead: %w", err)
	}

	if lead.PreferredArea == nil || strings.TrimSpace(*lead.PreferredArea) == "" {
		return []models.Developer{}, nil
	}
	want := strings.ToLower(strings.TrimSpace(*lead.PreferredArea))

	var developers []models.Developer
	if err := s.db.WithContext(ctx).Find(&developers).Error; err != nil {
		return nil, fmt.Errorf("listing developers: %w", err)
	}

	matched := []models.Developer{}
	for _, dev := range developers {
		for _, area := range strings.Split(dev.BuildAreas, ",") {
			if strings.ToLower(strings.TrimSpace(area)) == want {
				matched = append(matched, dev)
				break
			}
		}
	}
	return matched, nil
}

// MatchToDeveloper creates the deal between a lead and a developer. A lead
// may carry at most one deal; the deal starts at Negotiation and carries the
// lead's current ambassador.
func (s *DealService) MatchToDeveloper(ctx context.Context, leadID, developerID uuid.UUID) (*models.Deal, error) {
	var deal models.Deal
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var lead models.Lead
		if err := tx.First(&lead, "id = ?", leadID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: lead", errs.ErrNotFound)
			}
			return fmt.Errorf("loading lead: %w", err)
		}

		var dealCount int64
		if err := tx.Model(&models.Deal{}).Where("lead_id = ?", leadID).Count(&dealCount).Error; err != nil {
			return fmt.Errorf("checking existing deals: %w", err)
		}
		if dealCount > 0 {
			return errs.ErrDealAlreadyExists
		}

		var developer models.Developer
		if err := tx.First(&developer, "id = ?", developerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: developer", errs.ErrNotFound)
			}
			return fmt.Errorf("loading developer: %w", err)
		}

		deal = models.Deal{
			LeadID:       leadID,
			DeveloperID:  developerID,
			AmbassadorID: lead.AmbassadorID,
			Stage:        models.DealStageNegotiation,
		}
		if err := tx.Create(&deal).Error; err != nil {
			return fmt.Errorf("creating deal: %w", err)
		}

		if err := tx.Model(&lead).Update("status", models.LeadStatusMatched).Error; err != nil {
			return fmt.Errorf("updating lead status: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, cache.TagDashboard, cache.TagDevelopers)
	return &deal, nil
}

// UpdateDealStage moves a deal through the pipeline. Terminal stages accept
// no transition to a different stage; setting the same terminal stage again
// is an accepted no-op so retried calls stay safe. On ClosedWon the lead
// follows and the ambassador's closed-deal counter moves exactly once; on
// ClosedLost only the lead status follows.
func (s *DealService) UpdateDealStage(ctx context.Context, dealID uuid.UUID, stage models.DealStage) error {
	if !stage.Valid() {
		return fmt.Errorf("%w: unknown stage %q", errs.ErrValidation, stage)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var deal models.Deal
		if err := tx.First(&deal, "id = ?", dealID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: deal", errs.ErrNotFound)
			}
			return fmt.Errorf("loading deal: %w", err)
		}

		if deal.Stage.Terminal() && stage != deal.Stage {
			return fmt.Errorf("%w: deal is already closed", errs.ErrValidation)
		}

		wasAlreadyClosedWon := deal.Stage == models.DealStageClosedWon

		if err := tx.Model(&deal).Update("stage", stage).Error; err != nil {
			return fmt.Errorf("updating deal stage: %w", err)
		}

		switch stage {
		case models.DealStageClosedWon:
			if err := tx.Model(&models.Lead{}).Where("id = ?", deal.LeadID).
				Update("status", models.LeadStatusClosedWon).Error; err != nil {
				return fmt.Errorf("updating lead status: %w", err)
			}
			if !wasAlreadyClosedWon && deal.AmbassadorID != nil {
				if err := tx.Model(&models.Ambassador{}).Where("id = ?", *deal.AmbassadorID).
					Update("closed_deals", gorm.Expr("closed_deals + 1")).Error; err != nil {
					return fmt.Errorf("updating closed-deal counter: %w", err)
				}
			}
		case models.DealStageClosedLost:
			if err := tx.Model(&models.Lead{}).Where("id = ?", deal.LeadID).
				Update("status", models.LeadStatusClosedLost).Error; err != nil {
				return fmt.Errorf("updating lead status: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	tags := []string{cache.TagDashboard, cache.TagAmbassadors}
	if stage.Terminal() {
		tags = append(tags, cache.TagDevelopers)
	}
	s.invalidate(ctx, tags...)
	return nil
}

// GetDeal returns a deal with its lead and developer preloaded.
func (s *DealService) GetDeal(ctx context.Context, dealID uuid.UUID) (*models.Deal, error) {
	var deal models.Deal
	err := s.db.WithContext(ctx).Preload("Lead").Preload("Developer").First(&deal, "id = ?", dealID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: deal", errs.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading deal: %w", err)
	}
	return &deal, nil
}

// ListDealsByAmbassador returns an ambassador's deals, newest first.
func (s *DealService) ListDealsByAmbassador(ctx context.Context, ambassadorID uuid.UUID) ([]models.Deal, error) {
	var deals []models.Deal
	err := s.db.WithContext(ctx).Preload("Lead").Preload("Developer").
		Where("ambassador_id = ?", ambassadorID).Order("created_at desc").Find(&deals).Error
	if err != nil {
		return nil, fmt.Errorf("listing deals: %w", err)
	}
	return deals, nil
}

func (s *DealService) invalidate(ctx context.Context, tags ...string) {
	if err := s.cache.InvalidateTags(ctx, tags...); err != nil {
		log.Printf("cache invalidation failed for %v: %v", tags, err)
	}
}
