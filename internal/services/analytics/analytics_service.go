package analytics

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/estatelink/backend/internal/cache"
	"github.com/estatelink/backend/internal/models"
)

// cacheTTL is the read-through TTL for list and dashboard views. Mutations
// invalidate the tags explicitly; the TTL is the backstop.
const cacheTTL = 60 * time.Second

// AnalyticsService serves the dashboard aggregates and the cached
// directories.
type AnalyticsService struct {
	db    *gorm.DB
	cache *cache.Cache
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(db *gorm.DB, c *cache.Cache) *AnalyticsService {
	return &AnalyticsService{db: db, cache: c}
}

// GroupCount is one bucket of a grouped count.
type GroupCount struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

// TopAmbassador is a dashboard leaderboard row.
type TopAmbassador struct {
	ID             uuid.UUID `json:"id"`
	FullName       string    `json:"full_name"`
	TotalReferrals int       `json:"total_referrals"`
	ClosedDeals    int       `json:"closed_deals"`
}

// RecentLead is a dashboard row for the latest leads.
type RecentLead struct {
	ID             uuid.UUID         `json:"id"`
	FullName       string            `json:"full_name"`
	Status         models.LeadStatus `json:"status"`
	Budget         *string           `json:"budget"`
	PreferredArea  *string           `json:"preferred_area"`
	AmbassadorName string            `json:"ambassador_name"`
	CreatedAt      time.Time         `json:"created_at"`
}

// Dashboard is the aggregate view behind the main dashboard page.
type Dashboard struct {
	LeadsByStatus    []GroupCount    `json:"leads_by_status"`
	LeadsBySource    []GroupCount    `json:"leads_by_source"`
	DealsByStage     []GroupCount    `json:"deals_by_stage"`
	TopAmbassadors   []TopAmbassador `json:"top_ambassadors"`
	TotalLeads       int64           `json:"total_leads"`
	TotalAmbassadors int64           `json:"total_ambassadors"`
	TotalDevelopers  int64           `json:"total_developers"`
	ClosedWonDeals   int64           `json:"closed_won_deals"`
	ActiveDeals      int64           `json:"active_deals"`
	RecentLeads      []RecentLead    `json:"recent_leads"`
}

// GetDashboard computes the dashboard aggregates, read through the cache
// under the dashboard tag.
func (s *AnalyticsService) GetDashboard(ctx context.Context) (*Dashboard, error) {
	var dashboard Dashboard
	if s.tryGet(ctx, "dashboard-analytics", &dashboard) {
		return &dashboard, nil
	}

	if err := s.groupCount(ctx, &models.Lead{}, "status", &dashboard.LeadsByStatus); err != nil {
		return nil, err
	}
	if err := s.groupCount(ctx, &models.Lead{}, "source", &dashboard.LeadsBySource); err != nil {
		return nil, err
	}
	if err := s.groupCount(ctx, &models.Deal{}, "stage", &dashboard.DealsByStage); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(&models.Ambassador{}).
		Select("id, full_name, total_referrals, closed_deals").
		Order("closed_deals desc").Limit(5).Scan(&dashboard.TopAmbassadors).Error; err != nil {
		return nil, fmt.Errorf("top ambassadors: %w", err)
	}

	counts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&dashboard.TotalLeads, s.db.WithContext(ctx).Model(&models.Lead{})},
		{&dashboard.TotalAmbassadors, s.db.WithContext(ctx).Model(&models.Ambassador{})},
		{&dashboard.TotalDevelopers, s.db.WithContext(ctx).Model(&models.Developer{})},
		{&dashboard.ClosedWonDeals, s.db.WithContext(ctx).Model(&models.Deal{}).Where("stage = ?", models.DealStageClosedWon)},
		{&dashboard.ActiveDeals, s.db.WithContext(ctx).Model(&models.Deal{}).Where("stage IN ?", []models.DealStage{models.DealStageNegotiation, models.DealStageContract})},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return nil, fmt.Errorf("dashboard count: %w", err)
		}
	}

	var recent []models.Lead
	if err := s.db.WithContext(ctx).Preload("Ambassador").
		Order("created_at desc").Limit(5).Find(&recent).Error; err != nil {
		return nil, fmt.Errorf("recent leads: %w", err)
	}
	dashboard.RecentLeads = make([]RecentLead, 0, len(recent))
	for _, l := range recent {
		row := RecentLead{
			ID:            l.ID,
			FullName:      l.FullName,
			Status:        l.Status,
			Budget:        l.Budget,
			PreferredArea: l.PreferredArea,
			CreatedAt:     l.CreatedAt,
		}
		if l.Ambassador != nil {
			row.AmbassadorName = l.Ambassador.FullName
		}
		dashboard.RecentLeads = append(dashboard.RecentLeads, row)
	}

	s.trySet(ctx, "dashboard-analytics", &dashboard, cache.TagDashboard)
	return &dashboard, nil
}

// DirectoryEntry is one row of the ambassador or developer directory.
type DirectoryEntry struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	ContactName string    `json:"contact_name,omitempty"`
	BuildAreas  string    `json:"build_areas,omitempty"`
}

// AmbassadorDirectory returns the cached id/name directory used by pickers.
func (s *AnalyticsService) AmbassadorDirectory(ctx context.Context) ([]DirectoryEntry, error) {
	var entries []DirectoryEntry
	if s.tryGet(ctx, "ambassador-list", &entries) {
		return entries, nil
	}

	if err := s.db.WithContext(ctx).Model(&models.Ambassador{}).
		Select("id, full_name as name").Order("full_name asc").Scan(&entries).Error; err != nil {
		return nil, fmt.Errorf("ambassador directory: %w", err)
	}

	s.trySet(ctx, "ambassador-list", entries, cache.TagAmbassadors)
	return entries, nil
}

// DeveloperDirectory returns the cached developer directory used by pickers
// and suggestion views.
func (s *AnalyticsService) DeveloperDirectory(ctx context.Context) ([]DirectoryEntry, error) {
	var entries []DirectoryEntry
	if s.tryGet(ctx, "developer-list", &entries) {
		return entries, nil
	}

	if err := s.db.WithContext(ctx).Model(&models.Developer{}).
		Select("id, company_name as name, contact_name, build_areas").
		Order("company_name asc").Scan(&entries).Error; err != nil {
		return nil, fmt.Errorf("developer directory: %w", err)
	}

	s.trySet(ctx, "developer-list", entries, cache.TagDevelopers)
	return entries, nil
}

func (s *AnalyticsService) groupCount(ctx context.Context, model interface{}, column string, dest *[]GroupCount) error {
	if err := s.db.WithContext(ctx).Model(model).
		Select(column + " as key, count(*) as count").Group(column).Scan(dest).Error; err != nil {
		return fmt.Errorf("grouping by %s: %w", column, err)
	}
	return nil
}

// tryGet and trySet treat the cache as best effort; a broken cache degrades
// to direct reads rather than failing the request.
func (s *AnalyticsService) tryGet(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	hit, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		log.Printf("cache read failed for %s: %v", key, err)
		return false
	}
	return hit
}

func (s *AnalyticsService) trySet(ctx context.Context, key string, value interface{}, tags ...string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, cacheTTL, tags...); err != nil {
		log.Printf("cache write failed for %s: %v", key, err)
	}
}
