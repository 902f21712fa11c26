package analytics

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/estatelink/backend/internal/cache"
	"github.com/estatelink/backend/internal/models"
)

func newService(t *testing.T) (*AnalyticsService, *gorm.DB, *cache.Cache) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Ambassador{}, &models.Developer{}, &models.Lead{}, &models.Deal{},
	))

	mr := miniredis.RunT(t)
	c := cache.New(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	return NewAnalyticsService(db, c), db, c
}

func seedCRM(t *testing.T, db *gorm.DB) {
	t.Helper()
	ambassador := models.Ambassador{FullName: "Yael Cohen", Email: "yael@example.com", ReferralCode: "yael-cohen-ab12", TotalReferrals: 2, ClosedDeals: 1}
	require.NoError(t, db.Create(&ambassador).Error)
	developer := models.Developer{CompanyName: "Azorim", BuildAreas: "Tel Aviv"}
	require.NoError(t, db.Create(&developer).Error)

	leads := []models.Lead{
		{FullName: "A", Email: "a@b.c", Status: models.LeadStatusNew, Source: models.LeadSourceManual},
		{FullName: "B", Email: "b@b.c", Status: models.LeadStatusClosedWon, Source: models.LeadSourceReferral, AmbassadorID: &ambassador.ID},
	}
	for i := range leads {
		require.NoError(t, db.Create(&leads[i]).Error)
	}
	deal := models.Deal{LeadID: leads[1].ID, DeveloperID: developer.ID, AmbassadorID: &ambassador.ID, Stage: models.DealStageClosedWon}
	require.NoError(t, db.Create(&deal).Error)
}

func TestGetDashboardAggregates(t *testing.T) {
	svc, db, _ := newService(t)
	seedCRM(t, db)

	dashboard, err := svc.GetDashboard(context.Background())
	require.NoError(t, err)

	assert.EqualValues(t, 2, dashboard.TotalLeads)
	assert.EqualValues(t, 1, dashboard.TotalAmbassadors)
	assert.EqualValues(t, 1, dashboard.TotalDevelopers)
	assert.EqualValues(t, 1, dashboard.ClosedWonDeals)
	assert.EqualValues(t, 0, dashboard.ActiveDeals)
	assert.Len(t, dashboard.RecentLeads, 2)
	require.Len(t, dashboard.TopAmbassadors, 1)
	assert.Equal(t, "Yael Cohen", dashboard.TopAmbassadors[0].FullName)
}

func TestGetDashboardServesFromCacheUntilInvalidated(t *testing.T) {
	svc, db, c := newService(t)
	seedCRM(t, db)

	first, err := svc.GetDashboard(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, first.TotalLeads)

	// A write the cache has not seen yet.
	require.NoError(t, db.Create(&models.Lead{FullName: "C", Email: "c@b.c", Status: models.LeadStatusNew, Source: models.LeadSourceManual}).Error)

	cached, err := svc.GetDashboard(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, cached.TotalLeads)

	require.NoError(t, c.InvalidateTags(context.Background(), cache.TagDashboard))

	fresh, err := svc.GetDashboard(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 3, fresh.TotalLeads)
}

func TestDirectories(t *testing.T) {
	svc, db, _ := newService(t)
	seedCRM(t, db)

	ambassadors, err := svc.AmbassadorDirectory(context.Background())
	require.NoError(t, err)
	require.Len(t, ambassadors, 1)
	assert.Equal(t, "Yael Cohen", ambassadors[0].Name)

	developers, err := svc.DeveloperDirectory(context.Background())
	require.NoError(t, err)
	require.Len(t, developers, 1)
	assert.Equal(t, "Azorim", developers[0].Name)
	assert.Equal(t, "Tel Aviv", developers[0].BuildAreas)
}
