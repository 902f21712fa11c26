package referral

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"github.com/estatelink/backend/internal/cache"
	"github.com/estatelink/backend/internal/errs"
	"github.com/estatelink/backend/internal/identity"
	"github.com/estatelink/backend/internal/models"
	"github.com/estatelink/backend/internal/utils"
)

// ReferralService owns ambassador records and referral attribution. It is the
// only writer of Ambassador.TotalReferrals.
type ReferralService struct {
	db       *gorm.DB
	cache    cache.Invalidator
	identity identity.Provider
}

// NewReferralService creates a new referral service
func NewReferralService(db *gorm.DB, c cache.Invalidator, provider identity.Provider) *ReferralService {
	return &ReferralService{db: db, cache: c, identity: provider}
}

// CreateAmbassadorInput carries the fields of a staff-created ambassador.
type CreateAmbassadorInput struct {
	FullName    string  `json:"full_name" binding:"required"`
	Email       string  `json:"email" binding:"required,email"`
	Phone       *string `json:"phone"`
	Country     string  `json:"country"`
	City        string  `json:"city"`
	Languages   string  `json:"languages"`
	HostsEvents bool    `json:"hosts_events"`
}

// SubmitReferralInput carries a public referral submission.
type SubmitReferralInput struct {
	AmbassadorID  string  `json:"ambassador_id"`
	ReferralCode  string  `json:"referral_code"`
	FullName      string  `json:"full_name"`
	Email         string  `json:"email"`
	Phone         *string `json:"phone"`
	Budget        *string `json:"budget"`
	PreferredArea *string `json:"preferred_area"`
	Rooms         *string `json:"rooms"`
	PropertyType  *string `json:"property_type"`
	Readiness     *string `json:"readiness"`
	Notes         *string `json:"notes"`
}

const referralSuffixCharset = "abcdefghijklmnopqrstuvwxyz0123456789"

// generateReferralCode builds a human-readable slug from the full name plus a
// 4-character random suffix.
func generateReferralCode(fullName string) string {
	suffix := make([]byte, 4)
	for i := range suffix {
		suffix[i] = referralSuffixCharset[rand.Intn(len(referralSuffixCharset))]
	}
	return slug.Make(fullName) + "-" + string(suffix)
}

// UniqueCode generates a referral code and retries on the unlikely
// collision.
func UniqueCode(tx *gorm.DB, fullName string) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		code := generateReferralCode(fullName)
		var count int64
		if err := tx.Model(&models.Ambassador{}).Where("referral_code = ?", code).Count(&count).Error; err != nil {
			return "", fmt.Errorf("checking referral code: %w", err)
		}
		if count == 0 {
			return code, nil
		}
	}
	return "", errors.New("could not generate a unique referral code")
}

// CreateAmbassador persists a new ambassador with zeroed counters and a fresh
// referral code.
func (s *ReferralService) CreateAmbassador(ctx context.Context, input CreateAmbassadorInput) (*models.Ambassador, error) {
	if strings.TrimSpace(input.FullName) == "" || strings.TrimSpace(input.Email) == "" {
		return nil, fmt.Errorf("%w: full name and email are required", errs.ErrValidation)
	}

	country := input.Country
	if country == "" {
		country = "Israel"
	}

	code, err := UniqueCode(s.db.WithContext(ctx), input.FullName)
	if err != nil {
		return nil, err
	}

	ambassador := models.Ambassador{
		FullName:     input.FullName,
		Email:        input.Email,
		Phone:        input.Phone,
		Country:      country,
		City:         input.City,
		Languages:    input.Languages,
		HostsEvents:  input.HostsEvents,
		ReferralCode: code,
	}

	if err := s.db.WithContext(ctx).Create(&ambassador).Error; err != nil {
		return nil, fmt.Errorf("creating ambassador: %w", err)
	}

	s.invalidate(ctx, cache.TagAmbassadors, cache.TagDashboard)
	return &ambassador, nil
}

// ReferralCodeInfo is the public subset returned for a landing-page lookup.
type ReferralCodeInfo struct {
	ID           uuid.UUID `json:"id"`
	FullName     string    `json:"full_name"`
	City         string    `json:"city"`
	ReferralCode string    `json:"referral_code"`
}

// LookupReferralCode resolves a referral code to the ambassador's public
// details.
func (s *ReferralService) LookupReferralCode(ctx context.Context, code string) (*ReferralCodeInfo, error) {
	var ambassador models.Ambassador
	err := s.db.WithContext(ctx).Where("referral_code = ?", code).First(&ambassador).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: referral code", errs.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("looking up referral code: %w", err)
	}

	return &ReferralCodeInfo{
		ID:           ambassador.ID,
		FullName:     ambassador.FullName,
		City:         ambassador.City,
		ReferralCode: ambassador.ReferralCode,
	}, nil
}

// SubmitReferral is the public, unauthenticated entry point. The ambassador
// id and referral code must resolve together; lead creation and the counter
// increment happen in one transaction.
func (s *ReferralService) SubmitReferral(ctx context.Context, input SubmitReferralInput) (*models.Lead, error) {
	if input.AmbassadorID == "" || input.ReferralCode == "" ||
		strings.TrimSpace(input.FullName) == "" || strings.TrimSpace(input.Email) == "" {
		return nil, fmt.Errorf("%w: ambassador_id, referral_code, full_name and email are required", errs.ErrValidation)
	}

	ambassadorID, err := uuid.Parse(input.AmbassadorID)
	if err != nil {
		return nil, fmt.Errorf("%w: ambassador/code pair does not resolve", errs.ErrInvalidReferral)
	}

	var lead models.Lead
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ambassador models.Ambassador
		err := tx.Where("id = ? AND referral_code = ?", ambassadorID, input.ReferralCode).First(&ambassador).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: ambassador/code pair does not resolve", errs.ErrInvalidReferral)
		}
		if err != nil {
			return fmt.Errorf("resolving referral: %w", err)
		}

		code := input.ReferralCode
		lead = models.Lead{
			FullName:      input.FullName,
			Email:         input.Email,
			Phone:         input.Phone,
			Budget:        input.Budget,
			PreferredArea: input.PreferredArea,
			Rooms:         input.Rooms,
			PropertyType:  input.PropertyType,
			Readiness:     input.Readiness,
			Notes:         input.Notes,
			Status:        models.LeadStatusNew,
			Source:        models.LeadSourceReferral,
			ReferralCode:  &code,
			AmbassadorID:  &ambassador.ID,
		}
		if err := tx.Create(&lead).Error; err != nil {
			return fmt.Errorf("creating referred lead: %w", err)
		}

		return incrementReferrals(tx, ambassador.ID, 1)
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, cache.TagAmbassadors, cache.TagDashboard)
	return &lead, nil
}

// AssignAmbassador re-attributes a lead. The previous ambassador (if any) is
// decremented and the new one incremented, so TotalReferrals always equals
// the count of currently attributed leads.
func (s *ReferralService) AssignAmbassador(ctx context.Context, leadID, ambassadorID uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var lead models.Lead
		if err := tx.First(&lead, "id = ?", leadID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: lead", errs.ErrNotFound)
			}
			return fmt.Errorf("loading lead: %w", err)
		}

		var ambassador models.Ambassador
		if err := tx.First(&ambassador, "id = ?", ambassadorID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: ambassador", errs.ErrNotFound)
			}
			return fmt.Errorf("loading ambassador: %w", err)
		}

		if lead.AmbassadorID != nil && *lead.AmbassadorID == ambassadorID {
			return nil
		}

		if lead.AmbassadorID != nil {
			if err := incrementReferrals(tx, *lead.AmbassadorID, -1); err != nil {
				return err
			}
		}

		if err := tx.Model(&lead).Update("ambassador_id", ambassadorID).Error; err != nil {
			return fmt.Errorf("assigning ambassador: %w", err)
		}

		return incrementReferrals(tx, ambassadorID, 1)
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, cache.TagAmbassadors, cache.TagDashboard)
	return nil
}

// ConvertLeadToAmbassador promotes a lead into a new ambassador with portal
// credentials. The lead's own referral attribution is left untouched.
func (s *ReferralService) ConvertLeadToAmbassador(ctx context.Context, leadID uuid.UUID, password string) (*models.Ambassador, error) {
	if len(password) < utils.MinPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", errs.ErrValidation, utils.MinPasswordLength)
	}

	var lead models.Lead
	if err := s.db.WithContext(ctx).First(&lead, "id = ?", leadID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: lead", errs.ErrNotFound)
		}
		return nil, fmt.Errorf("loading lead: %w", err)
	}
	if lead.ConvertedAmbassadorID != nil {
		return nil, fmt.Errorf("%w: lead was already converted", errs.ErrValidation)
	}

	user, err := s.identity.CreateUser(ctx, lead.Email, password, lead.FullName, string(models.RoleAmbassador))
	if err != nil {
		return nil, fmt.Errorf("provisioning portal login: %w", err)
	}

	var ambassador models.Ambassador
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		profile := models.UserProfile{
			UserID:   user.ID,
			FullName: lead.FullName,
			Email:    lead.Email,
			Role:     models.RoleAmbassador,
			IsActive: true,
		}
		if err := tx.Create(&profile).Error; err != nil {
			return fmt.Errorf("creating user profile: %w", err)
		}

		code, err := UniqueCode(tx, lead.FullName)
		if err != nil {
			return err
		}

		ambassador = models.Ambassador{
			FullName:            lead.FullName,
			Email:               lead.Email,
			Phone:               lead.Phone,
			Country:             lead.Country,
			ReferralCode:        code,
			UserProfileID:       &profile.ID,
			ConvertedFromLeadID: &lead.ID,
		}
		if lead.City != nil {
			ambassador.City = *lead.City
		}
		if err := tx.Create(&ambassador).Error; err != nil {
			return fmt.Errorf("creating ambassador: %w", err)
		}

		if err := tx.Model(&lead).Update("converted_ambassador_id", ambassador.ID).Error; err != nil {
			return fmt.Errorf("linking converted ambassador: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, cache.TagAmbassadors, cache.TagDashboard)
	return &ambassador, nil
}

// DeleteAmbassador removes an ambassador. Its deals are always deleted; its
// leads are either cascade-deleted (with their deals) or unlinked, per the
// deleteLeads flag.
func (s *ReferralService) DeleteAmbassador(ctx context.Context, ambassadorID uuid.UUID, deleteLeads bool) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ambassador models.Ambassador
		if err := tx.First(&ambassador, "id = ?", ambassadorID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: ambassador", errs.ErrNotFound)
			}
			return fmt.Errorf("loading ambassador: %w", err)
		}

		if err := tx.Where("ambassador_id = ?", ambassadorID).Delete(&models.Deal{}).Error; err != nil {
			return fmt.Errorf("deleting ambassador deals: %w", err)
		}

		if deleteLeads {
			var leadIDs []uuid.UUID
			if err := tx.Model(&models.Lead{}).Where("ambassador_id = ?", ambassadorID).Pluck("id", &leadIDs).Error; err != nil {
				return fmt.Errorf("listing ambassador leads: %w", err)
			}
			if len(leadIDs) > 0 {
				if err := tx.Where("lead_id IN ?", leadIDs).Delete(&models.Deal{}).Error; err != nil {
					return fmt.Errorf("deleting lead deals: %w", err)
				}
				if err := tx.Where("lead_id IN ?", leadIDs).Delete(&models.LeadNote{}).Error; err != nil {
					return fmt.Errorf("deleting lead notes: %w", err)
				}
				if err := tx.Where("lead_id IN ?", leadIDs).Delete(&models.LeadTask{}).Error; err != nil {
					return fmt.Errorf("deleting lead tasks: %w", err)
				}
				if err := tx.Where("ambassador_id = ?", ambassadorID).Delete(&models.Lead{}).Error; err != nil {
					return fmt.Errorf("deleting ambassador leads: %w", err)
				}
			}
		} else {
			if err := tx.Model(&models.Lead{}).Where("ambassador_id = ?", ambassadorID).
				Update("ambassador_id", nil).Error; err != nil {
				return fmt.Errorf("unlinking ambassador leads: %w", err)
			}
		}

		if err := tx.Delete(&ambassador).Error; err != nil {
			return fmt.Errorf("deleting ambassador: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, cache.TagAmbassadors, cache.TagDashboard)
	return nil
}

// GetAmbassador returns an ambassador by id.
func (s *ReferralService) GetAmbassador(ctx context.Context, id uuid.UUID) (*models.Ambassador, error) {
	var ambassador models.Ambassador
	if err := s.db.WithContext(ctx).First(&ambassador, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: ambassador", errs.ErrNotFound)
		}
		return nil, fmt.Errorf("loading ambassador: %w", err)
	}
	return &ambassador, nil
}

// ListAmbassadors returns all ambassadors ordered by name.
func (s *ReferralService) ListAmbassadors(ctx context.Context) ([]models.Ambassador, error) {
	var ambassadors []models.Ambassador
	if err := s.db.WithContext(ctx).Order("full_name asc").Find(&ambassadors).Error; err != nil {
		return nil, fmt.Errorf("listing ambassadors: %w", err)
	}
	return ambassadors, nil
}

// FindByUserProfile resolves the ambassador linked to a portal user profile.
func (s *ReferralService) FindByUserProfile(ctx context.Context, profileID uuid.UUID) (*models.Ambassador, error) {
	var ambassador models.Ambassador
	err := s.db.WithContext(ctx).Where("user_profile_id = ?", profileID).First(&ambassador).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: ambassador", errs.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading ambassador: %w", err)
	}
	return &ambassador, nil
}

// incrementReferrals adjusts the derived referral counter, clamped at zero.
func incrementReferrals(tx *gorm.DB, ambassadorID uuid.UUID, delta int) error {
	res := tx.Model(&models.Ambassador{}).Where("id = ?", ambassadorID).
		Update("total_referrals", gorm.Expr("CASE WHEN total_referrals + ? < 0 THEN 0 ELSE total_referrals + ? END", delta, delta))
	if res.Error != nil {
		return fmt.Errorf("updating referral counter: %w", res.Error)
	}
	return nil
}

// invalidate drops cached views; staleness is preferable to failing the
// mutation, so errors are only logged.
func (s *ReferralService) invalidate(ctx context.Context, tags ...string) {
	if err := s.cache.InvalidateTags(ctx, tags...); err != nil {
		log.Printf("cache invalidation failed for %v: %v", tags, err)
	}
}
