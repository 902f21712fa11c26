package jobs

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/estatelink/backend/internal/cache"
	"github.com/estatelink/backend/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Ambassador{}, &models.Developer{}, &models.Lead{}, &models.Deal{}, &models.LeadTask{},
	))
	return db
}

func TestReconcileRepairsDriftedCounters(t *testing.T) {
	db := newTestDB(t)

	// Counters deliberately wrong: 2 attributed leads, 1 ClosedWon deal.
	ambassador := models.Ambassador{
		FullName:       "Yael Cohen",
		Email:          "yael@example.com",
		ReferralCode:   "yael-cohen-ab12",
		TotalReferrals: 9,
		ClosedDeals:    0,
	}
	require.NoError(t, db.Create(&ambassador).Error)

	developer := models.Developer{CompanyName: "Azorim"}
	require.NoError(t, db.Create(&developer).Error)

	for i := 0; i < 2; i++ {
		lead := models.Lead{FullName: "L", Email: "l@b.c", AmbassadorID: &ambassador.ID}
		require.NoError(t, db.Create(&lead).Error)
		if i == 0 {
			deal := models.Deal{LeadID: lead.ID, DeveloperID: developer.ID, AmbassadorID: &ambassador.ID, Stage: models.DealStageClosedWon}
			require.NoError(t, db.Create(&deal).Error)
		}
	}

	job := NewReconcileCountersJob(db, cache.Noop{})
	repaired, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, repaired)

	var reloaded models.Ambassador
	require.NoError(t, db.First(&reloaded, "id = ?", ambassador.ID).Error)
	assert.Equal(t, 2, reloaded.TotalReferrals)
	assert.Equal(t, 1, reloaded.ClosedDeals)
}

func TestReconcileLeavesConsistentCountersAlone(t *testing.T) {
	db := newTestDB(t)

	ambassador := models.Ambassador{
		FullName:       "David Levi",
		Email:          "david@example.com",
		ReferralCode:   "david-levi-cd34",
		TotalReferrals: 1,
	}
	require.NoError(t, db.Create(&ambassador).Error)
	lead := models.Lead{FullName: "L", Email: "l@b.c", AmbassadorID: &ambassador.ID}
	require.NoError(t, db.Create(&lead).Error)

	job := NewReconcileCountersJob(db, cache.Noop{})
	repaired, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, repaired)
}
