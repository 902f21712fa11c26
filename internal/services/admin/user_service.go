package admin

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/estatelink/backend/internal/cache"
	"github.com/estatelink/backend/internal/errs"
	"github.com/estatelink/backend/internal/identity"
	"github.com/estatelink/backend/internal/models"
	"github.com/estatelink/backend/internal/services/email"
	"github.com/estatelink/backend/internal/services/referral"
	"github.com/estatelink/backend/internal/utils"
)

// UserService owns user-profile administration. Every mutating method is
// ADMIN-gated on the caller's role; the local profile is the source of truth
// and provider metadata is only a mirror.
type UserService struct {
	db       *gorm.DB
	cache    cache.Invalidator
	identity identity.Provider
	mailer   email.Sender
	frontend string
}

// NewUserService creates a new user administration service
func NewUserService(db *gorm.DB, c cache.Invalidator, provider identity.Provider, mailer email.Sender, frontendURL string) *UserService {
	return &UserService{db: db, cache: c, identity: provider, mailer: mailer, frontend: frontendURL}
}

// InviteUserInput carries a user invitation.
type InviteUserInput struct {
	Email     string      `json:"email" binding:"required,email"`
	FullName  string      `json:"full_name" binding:"required"`
	Password  string      `json:"password" binding:"required"`
	Role      models.Role `json:"role" binding:"required"`
	Country   string      `json:"country"`
	City      string      `json:"city"`
	Languages string      `json:"languages"`
}

// InviteUser provisions an identity-provider account plus a profile. When
// the invited role is AMBASSADOR, an existing unlinked ambassador with the
// same email is linked, otherwise a new one is created.
func (s *UserService) InviteUser(ctx context.Context, caller models.Role, input InviteUserInput) (*models.UserProfile, error) {
	if caller != models.RoleAdmin {
		return nil, fmt.Errorf("%w: only admins can invite users", errs.ErrForbidden)
	}
	if !input.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", errs.ErrValidation, input.Role)
	}
	if len(input.Password) < utils.MinPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", errs.ErrValidation, utils.MinPasswordLength)
	}

	user, err := s.identity.CreateUser(ctx, input.Email, input.Password, input.FullName, string(input.Role))
	if err != nil {
		return nil, fmt.Errorf("provisioning user: %w", err)
	}

	var profile models.UserProfile
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		profile = models.UserProfile{
			UserID:   user.ID,
			FullName: input.FullName,
			Email:    input.Email,
			Role:     input.Role,
			IsActive: true,
		}
		if err := tx.Create(&profile).Error; err != nil {
			return fmt.Errorf("creating user profile: %w", err)
		}

		if input.Role == models.RoleAmbassador {
			return s.linkOrCreateAmbassador(tx, &profile, input)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.mailer.Send(input.Email, "You have been invited to EstateLink",
		email.InvitationBody(input.FullName, string(input.Role), s.frontend)); err != nil {
		log.Printf("invitation email to %s failed: %v", input.Email, err)
	}

	s.invalidate(ctx, cache.TagAmbassadors, cache.TagDashboard)
	return &profile, nil
}

// linkOrCreateAmbassador attaches the invited profile to an ambassador
// record: an existing unlinked one with the same email wins, otherwise a new
// record is created.
func (s *UserService) linkOrCreateAmbassador(tx *gorm.DB, profile *models.UserProfile, input InviteUserInput) error {
	var existing models.Ambassador
	err := tx.Where("email = ? AND user_profile_id IS NULL", input.Email).First(&existing).Error
	if err == nil {
		if err := tx.Model(&existing).Update("user_profile_id", profile.ID).Error; err != nil {
			return fmt.Errorf("linking ambassador: %w", err)
		}
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("looking up ambassador: %w", err)
	}

	country := input.Country
	if country == "" {
		country = "Israel"
	}
	code, err := referral.UniqueCode(tx, input.FullName)
	if err != nil {
		return err
	}
	ambassador := models.Ambassador{
		FullName:      input.FullName,
		Email:         input.Email,
		Country:       country,
		City:          input.City,
		Languages:     input.Languages,
		ReferralCode:  code,
		UserProfileID: &profile.ID,
	}
	if err := tx.Create(&ambassador).Error; err != nil {
		return fmt.Errorf("creating ambassador: %w", err)
	}
	return nil
}

// UpdateUserRole changes a profile's role and mirrors it into provider
// metadata.
func (s *UserService) UpdateUserRole(ctx context.Context, caller models.Role, profileID uuid.UUID, newRole models.Role) error {
	if caller != models.RoleAdmin {
		return fmt.Errorf("%w: only admins can change roles", errs.ErrForbidden)
	}
	if !newRole.Valid() {
		return fmt.Errorf("%w: unknown role %q", errs.ErrValidation, newRole)
	}

	profile, err := s.getProfile(ctx, profileID)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Model(profile).Update("role", newRole).Error; err != nil {
		return fmt.Errorf("updating role: %w", err)
	}

	if err := s.identity.UpdateUserMetadata(ctx, profile.UserID, map[string]interface{}{"role": string(newRole)}); err != nil {
		log.Printf("mirroring role for %s failed: %v", profile.UserID, err)
	}
	return nil
}

// ToggleUserActive flips a profile's active flag and mirrors it into provider
// metadata.
func (s *UserService) ToggleUserActive(ctx context.Context, caller models.Role, profileID uuid.UUID) (bool, error) {
	if caller != models.RoleAdmin {
		return false, fmt.Errorf("%w: only admins can manage users", errs.ErrForbidden)
	}

	profile, err := s.getProfile(ctx, profileID)
	if err != nil {
		return false, err
	}

	newActive := !profile.IsActive
	if err := s.db.WithContext(ctx).Model(profile).Update("is_active", newActive).Error; err != nil {
		return false, fmt.Errorf("updating active flag: %w", err)
	}

	if err := s.identity.UpdateUserMetadata(ctx, profile.UserID, map[string]interface{}{"is_active": newActive}); err != nil {
		log.Printf("mirroring active flag for %s failed: %v", profile.UserID, err)
	}
	return newActive, nil
}

// ResetUserPassword sets a new password through the identity provider.
func (s *UserService) ResetUserPassword(ctx context.Context, caller models.Role, profileID uuid.UUID, newPassword string) error {
	if caller != models.RoleAdmin {
		return fmt.Errorf("%w: only admins can reset passwords", errs.ErrForbidden)
	}
	if len(newPassword) < utils.MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", errs.ErrValidation, utils.MinPasswordLength)
	}

	profile, err := s.getProfile(ctx, profileID)
	if err != nil {
		return err
	}

	if err := s.identity.ResetPassword(ctx, profile.UserID, newPassword); err != nil {
		return fmt.Errorf("resetting password: %w", err)
	}
	return nil
}

// ListUsers returns all profiles ordered by name.
func (s *UserService) ListUsers(ctx context.Context, caller models.Role) ([]models.UserProfile, error) {
	if caller != models.RoleAdmin {
		return nil, fmt.Errorf("%w: only admins can list users", errs.ErrForbidden)
	}

	var profiles []models.UserProfile
	if err := s.db.WithContext(ctx).Order("full_name asc").Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return profiles, nil
}

func (s *UserService) getProfile(ctx context.Context, profileID uuid.UUID) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := s.db.WithContext(ctx).First(&profile, "id = ?", profileID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user", errs.ErrNotFound)
		}
		return nil, fmt.Errorf("loading user profile: %w", err)
	}
	return &profile, nil
}

func (s *UserService) invalidate(ctx context.Context, tags ...string) {
	if err := s.cache.InvalidateTags(ctx, tags...); err != nil {
		log.Printf("cache invalidation failed for %v: %v", tags, err)
	}
}
