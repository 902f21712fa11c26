package lead

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/estatelink/backend/internal/cache"
	"github.com/estatelink/backend/internal/errs"
	"github.com/estatelink/backend/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Ambassador{}, &models.Developer{}, &models.Lead{},
		&models.Deal{}, &models.LeadNote{}, &models.LeadTask{},
	))
	return db
}

func seedAmbassador(t *testing.T, db *gorm.DB) *models.Ambassador {
	t.Helper()
	ambassador := models.Ambassador{
		FullName:     "Yael Cohen",
		Email:        "yael@example.com",
		ReferralCode: "yael-cohen-" + uuid.NewString()[:4],
	}
	require.NoError(t, db.Create(&ambassador).Error)
	return &ambassador
}

func TestCreateLeadAttributedIncrementsCounter(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeadService(db, cache.Noop{})
	ambassador := seedAmbassador(t, db)

	id := ambassador.ID.String()
	lead, err := svc.CreateLead(context.Background(), CreateLeadInput{
		FullName:     "Michael Green",
		Email:        "michael@example.com",
		AmbassadorID: &id,
	})
	require.NoError(t, err)
	assert.Equal(t, models.LeadStatusNew, lead.Status)
	assert.Equal(t, models.LeadSourceManual, lead.Source)
	assert.Equal(t, "Israel", lead.Country)

	var reloaded models.Ambassador
	require.NoError(t, db.First(&reloaded, "id = ?", ambassador.ID).Error)
	assert.Equal(t, 1, reloaded.TotalReferrals)
}

func TestCreateLeadUnknownAmbassador(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeadService(db, cache.Noop{})

	id := uuid.NewString()
	_, err := svc.CreateLead(context.Background(), CreateLeadInput{
		FullName:     "Michael Green",
		Email:        "michael@example.com",
		AmbassadorID: &id,
	})
	assert.ErrorIs(t, err, errs.ErrNotFound)

	var count int64
	require.NoError(t, db.Model(&models.Lead{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateLeadUnattributed(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeadService(db, cache.Noop{})

	lead, err := svc.CreateLead(context.Background(), CreateLeadInput{
		FullName: "Michael Green",
		Email:    "michael@example.com",
	})
	require.NoError(t, err)
	assert.Nil(t, lead.AmbassadorID)
}

func TestUpdateLeadStatusNotRelevantRequiresReason(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeadService(db, cache.Noop{})

	lead, err := svc.CreateLead(context.Background(), CreateLeadInput{FullName: "A", Email: "a@b.c"})
	require.NoError(t, err)

	err = svc.UpdateLeadStatus(context.Background(), lead.ID, models.LeadStatusNotRelevant, nil)
	assert.ErrorIs(t, err, errs.ErrValidation)

	reason := models.NotRelevantNoBudget
	require.NoError(t, svc.UpdateLeadStatus(context.Background(), lead.ID, models.LeadStatusNotRelevant, &reason))

	var reloaded models.Lead
	require.NoError(t, db.First(&reloaded, "id = ?", lead.ID).Error)
	assert.Equal(t, models.LeadStatusNotRelevant, reloaded.Status)
	require.NotNil(t, reloaded.NotRelevantReason)
	assert.Equal(t, models.NotRelevantNoBudget, *reloaded.NotRelevantReason)

	// Moving back to an active status clears the reason.
	require.NoError(t, svc.UpdateLeadStatus(context.Background(), lead.ID, models.LeadStatusContacted, nil))
	require.NoError(t, db.First(&reloaded, "id = ?", lead.ID).Error)
	assert.Nil(t, reloaded.NotRelevantReason)
}

func TestUpdateLeadStatusRejectsUnknownValues(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeadService(db, cache.Noop{})

	err := svc.UpdateLeadStatus(context.Background(), uuid.New(), "Bogus", nil)
	assert.ErrorIs(t, err, errs.ErrValidation)

	err = svc.UpdateLeadStatus(context.Background(), uuid.New(), models.LeadStatusContacted, nil)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestDeleteLeadDecrementsAndCascades(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeadService(db, cache.Noop{})
	ambassador := seedAmbassador(t, db)

	id := ambassador.ID.String()
	lead, err := svc.CreateLead(context.Background(), CreateLeadInput{
		FullName:     "Michael Green",
		Email:        "michael@example.com",
		AmbassadorID: &id,
	})
	require.NoError(t, err)

	developer := models.Developer{CompanyName: "Azorim"}
	require.NoError(t, db.Create(&developer).Error)
	require.NoError(t, db.Create(&models.Deal{LeadID: lead.ID, DeveloperID: developer.ID}).Error)
	_, err = svc.AddNote(context.Background(), lead.ID, "called twice")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteLead(context.Background(), lead.ID))

	var reloaded models.Ambassador
	require.NoError(t, db.First(&reloaded, "id = ?", ambassador.ID).Error)
	assert.Zero(t, reloaded.TotalReferrals)

	var deals, notes int64
	require.NoError(t, db.Model(&models.Deal{}).Count(&deals).Error)
	require.NoError(t, db.Model(&models.LeadNote{}).Count(&notes).Error)
	assert.Zero(t, deals)
	assert.Zero(t, notes)
}

func TestDeleteLeadCounterNeverGoesNegative(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeadService(db, cache.Noop{})
	ambassador := seedAmbassador(t, db)

	// Counter already at zero despite an attributed lead (simulated drift).
	lead := models.Lead{FullName: "A", Email: "a@b.c", AmbassadorID: &ambassador.ID}
	require.NoError(t, db.Create(&lead).Error)

	require.NoError(t, svc.DeleteLead(context.Background(), lead.ID))

	var reloaded models.Ambassador
	require.NoError(t, db.First(&reloaded, "id = ?", ambassador.ID).Error)
	assert.Zero(t, reloaded.TotalReferrals)
}

func TestListLeadsFilters(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeadService(db, cache.Noop{})
	ambassador := seedAmbassador(t, db)

	leads := []models.Lead{
		{FullName: "A", Email: "a@b.c", Country: "Israel", Status: models.LeadStatusNew, Source: models.LeadSourceManual},
		{FullName: "B", Email: "b@b.c", Country: "USA", Status: models.LeadStatusQualified, Source: models.LeadSourceReferral, AmbassadorID: &ambassador.ID},
		{FullName: "C", Email: "c@b.c", Country: "Israel", Status: models.LeadStatusQualified, Source: models.LeadSourceReferral, AmbassadorID: &ambassador.ID},
	}
	for i := range leads {
		require.NoError(t, db.Create(&leads[i]).Error)
	}

	byStatus, err := svc.ListLeads(context.Background(), ListLeadsFilter{Status: string(models.LeadStatusQualified)})
	require.NoError(t, err)
	assert.Len(t, byStatus, 2)

	byCountry, err := svc.ListLeads(context.Background(), ListLeadsFilter{Country: "USA"})
	require.NoError(t, err)
	assert.Len(t, byCountry, 1)

	byAmbassador, err := svc.ListLeads(context.Background(), ListLeadsFilter{AmbassadorID: ambassador.ID.String()})
	require.NoError(t, err)
	assert.Len(t, byAmbassador, 2)

	future := time.Now().Add(24 * time.Hour)
	none, err := svc.ListLeads(context.Background(), ListLeadsFilter{From: &future})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestNotesAndTasks(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeadService(db, cache.Noop{})

	lead, err := svc.CreateLead(context.Background(), CreateLeadInput{FullName: "A", Email: "a@b.c"})
	require.NoError(t, err)

	_, err = svc.AddNote(context.Background(), lead.ID, "  ")
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = svc.AddNote(context.Background(), uuid.New(), "orphan")
	assert.ErrorIs(t, err, errs.ErrNotFound)

	_, err = svc.AddNote(context.Background(), lead.ID, "spoke on the phone")
	require.NoError(t, err)
	notes, err := svc.ListNotes(context.Background(), lead.ID)
	require.NoError(t, err)
	assert.Len(t, notes, 1)

	task, err := svc.CreateTask(context.Background(), lead.ID, "Send brochure", time.Now().Add(48*time.Hour), nil)
	require.NoError(t, err)
	assert.False(t, task.Completed)

	require.NoError(t, svc.ToggleTask(context.Background(), task.ID))
	var reloaded models.LeadTask
	require.NoError(t, db.First(&reloaded, "id = ?", task.ID).Error)
	assert.True(t, reloaded.Completed)

	require.NoError(t, svc.ToggleTask(context.Background(), task.ID))
	require.NoError(t, db.First(&reloaded, "id = ?", task.ID).Error)
	assert.False(t, reloaded.Completed)

	assert.ErrorIs(t, svc.ToggleTask(context.Background(), uuid.New()), errs.ErrNotFound)
}
