package admin

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/estatelink/backend/internal/cache"
	"github.com/estatelink/backend/internal/errs"
	"github.com/estatelink/backend/internal/identity"
	"github.com/estatelink/backend/internal/models"
)

type fakeIdentity struct {
	created  []identity.User
	metadata map[string]map[string]interface{}
	resets   map[string]string
}

func newFakeIdentity() *fakeIdentity {
	return &fakeIdentity{
		metadata: make(map[string]map[string]interface{}),
		resets:   make(map[string]string),
	}
}

func (f *fakeIdentity) CreateUser(ctx context.Context, email, password, fullName, role string) (*identity.User, error) {
	user := identity.User{ID: uuid.NewString(), Email: email}
	f.created = append(f.created, user)
	return &user, nil
}

func (f *fakeIdentity) UpdateUserMetadata(ctx context.Context, userID string, metadata map[string]interface{}) error {
	f.metadata[userID] = metadata
	return nil
}

func (f *fakeIdentity) ResetPassword(ctx context.Context, userID, newPassword string) error {
	f.resets[userID] = newPassword
	return nil
}

type fakeMailer struct {
	sent []string
}

func (f *fakeMailer) Send(toEmail, subject, htmlBody string) error {
	f.sent = append(f.sent, toEmail)
	return nil
}

func newService(t *testing.T) (*UserService, *gorm.DB, *fakeIdentity, *fakeMailer) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.UserProfile{}, &models.Ambassador{}, &models.Lead{}, &models.Deal{},
	))
	provider := newFakeIdentity()
	mailer := &fakeMailer{}
	svc := NewUserService(db, cache.Noop{}, provider, mailer, "http://localhost:3000")
	return svc, db, provider, mailer
}

func TestInviteUserRequiresAdmin(t *testing.T) {
	svc, _, _, _ := newService(t)

	input := InviteUserInput{Email: "agent@example.com", FullName: "New Agent", Password: "secret-password", Role: models.RoleAgent}
	for _, caller := range []models.Role{models.RoleAgent, models.RoleAmbassador} {
		_, err := svc.InviteUser(context.Background(), caller, input)
		assert.ErrorIs(t, err, errs.ErrForbidden)
	}
}

func TestInviteUserCreatesProfileAndSendsMail(t *testing.T) {
	svc, db, provider, mailer := newService(t)

	profile, err := svc.InviteUser(context.Background(), models.RoleAdmin, InviteUserInput{
		Email:    "agent@example.com",
		FullName: "New Agent",
		Password: "secret-password",
		Role:     models.RoleAgent,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAgent, profile.Role)
	assert.True(t, profile.IsActive)
	require.Len(t, provider.created, 1)
	assert.Equal(t, []string{"agent@example.com"}, mailer.sent)

	var count int64
	require.NoError(t, db.Model(&models.Ambassador{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestInviteAmbassadorLinksExistingRecord(t *testing.T) {
	svc, db, _, _ := newService(t)

	existing := models.Ambassador{
		FullName:     "Noa Shapira",
		Email:        "noa@example.com",
		ReferralCode: "noa-shapira-ab12",
	}
	require.NoError(t, db.Create(&existing).Error)

	profile, err := svc.InviteUser(context.Background(), models.RoleAdmin, InviteUserInput{
		Email:    "noa@example.com",
		FullName: "Noa Shapira",
		Password: "secret-password",
		Role:     models.RoleAmbassador,
	})
	require.NoError(t, err)

	var reloaded models.Ambassador
	require.NoError(t, db.First(&reloaded, "id = ?", existing.ID).Error)
	require.NotNil(t, reloaded.UserProfileID)
	assert.Equal(t, profile.ID, *reloaded.UserProfileID)

	var count int64
	require.NoError(t, db.Model(&models.Ambassador{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestInviteAmbassadorCreatesRecordWhenNoneExists(t *testing.T) {
	svc, db, _, _ := newService(t)

	profile, err := svc.InviteUser(context.Background(), models.RoleAdmin, InviteUserInput{
		Email:    "noa@example.com",
		FullName: "Noa Shapira",
		Password: "secret-password",
		Role:     models.RoleAmbassador,
		City:     "Jerusalem",
	})
	require.NoError(t, err)

	var ambassador models.Ambassador
	require.NoError(t, db.First(&ambassador, "email = ?", "noa@example.com").Error)
	require.NotNil(t, ambassador.UserProfileID)
	assert.Equal(t, profile.ID, *ambassador.UserProfileID)
	assert.NotEmpty(t, ambassador.ReferralCode)
	assert.Equal(t, "Jerusalem", ambassador.City)
}

func TestInviteUserValidation(t *testing.T) {
	svc, _, _, _ := newService(t)

	_, err := svc.InviteUser(context.Background(), models.RoleAdmin, InviteUserInput{
		Email: "x@example.com", FullName: "X", Password: "secret-password", Role: "SUPERUSER",
	})
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = svc.InviteUser(context.Background(), models.RoleAdmin, InviteUserInput{
		Email: "x@example.com", FullName: "X", Password: "abc", Role: models.RoleAgent,
	})
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestUpdateUserRoleMirrorsMetadata(t *testing.T) {
	svc, db, provider, _ := newService(t)

	profile := models.UserProfile{UserID: uuid.NewString(), FullName: "A", Email: "a@b.c", Role: models.RoleAgent, IsActive: true}
	require.NoError(t, db.Create(&profile).Error)

	require.NoError(t, svc.UpdateUserRole(context.Background(), models.RoleAdmin, profile.ID, models.RoleAdmin))

	var reloaded models.UserProfile
	require.NoError(t, db.First(&reloaded, "id = ?", profile.ID).Error)
	assert.Equal(t, models.RoleAdmin, reloaded.Role)
	assert.Equal(t, "ADMIN", provider.metadata[profile.UserID]["role"])

	assert.ErrorIs(t, svc.UpdateUserRole(context.Background(), models.RoleAgent, profile.ID, models.RoleAdmin), errs.ErrForbidden)
	assert.ErrorIs(t, svc.UpdateUserRole(context.Background(), models.RoleAdmin, uuid.New(), models.RoleAgent), errs.ErrNotFound)
}

func TestToggleUserActive(t *testing.T) {
	svc, db, provider, _ := newService(t)

	profile := models.UserProfile{UserID: uuid.NewString(), FullName: "A", Email: "a@b.c", Role: models.RoleAgent, IsActive: true}
	require.NoError(t, db.Create(&profile).Error)

	active, err := svc.ToggleUserActive(context.Background(), models.RoleAdmin, profile.ID)
	require.NoError(t, err)
	assert.False(t, active)
	assert.Equal(t, false, provider.metadata[profile.UserID]["is_active"])

	active, err = svc.ToggleUserActive(context.Background(), models.RoleAdmin, profile.ID)
	require.NoError(t, err)
	assert.True(t, active)
}

func TestResetUserPassword(t *testing.T) {
	svc, db, provider, _ := newService(t)

	profile := models.UserProfile{UserID: uuid.NewString(), FullName: "A", Email: "a@b.c", Role: models.RoleAgent, IsActive: true}
	require.NoError(t, db.Create(&profile).Error)

	require.NoError(t, svc.ResetUserPassword(context.Background(), models.RoleAdmin, profile.ID, "brand-new-password"))
	assert.Equal(t, "brand-new-password", provider.resets[profile.UserID])

	assert.ErrorIs(t, svc.ResetUserPassword(context.Background(), models.RoleAdmin, profile.ID, "abc"), errs.ErrValidation)
	assert.ErrorIs(t, svc.ResetUserPassword(context.Background(), models.RoleAgent, profile.ID, "brand-new-password"), errs.ErrForbidden)
}

func TestListUsers(t *testing.T) {
	svc, db, _, _ := newService(t)

	for _, email := range []string{"a@b.c", "b@b.c"} {
		require.NoError(t, db.Create(&models.UserProfile{UserID: uuid.NewString(), FullName: email, Email: email, Role: models.RoleAgent}).Error)
	}

	users, err := svc.ListUsers(context.Background(), models.RoleAdmin)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	_, err = svc.ListUsers(context.Background(), models.RoleAgent)
	assert.ErrorIs(t, err, errs.ErrForbidden)
}
