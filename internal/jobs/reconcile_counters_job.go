package jobs

import (
	"context"
	"log"

	"gorm.io/gorm"

	"github.com/estatelink/backend/internal/cache"
	"github.com/estatelink/backend/internal/models"
)

// ReconcileCountersJob repairs drift between the denormalized ambassador
// counters and the relationship graph they summarize.
type ReconcileCountersJob struct {
	db    *gorm.DB
	cache cache.Invalidator
}

// NewReconcileCountersJob creates a new counter reconciliation job
func NewReconcileCountersJob(db *gorm.DB, c cache.Invalidator) *ReconcileCountersJob {
	return &ReconcileCountersJob{db: db, cache: c}
}

// Run recomputes both counters for every ambassador and fixes any rows that
// drifted. Returns the number of repaired ambassadors.
func (j *ReconcileCountersJob) Run(ctx context.Context) (int, error) {
	var ambassadors []models.Ambassador
	if err := j.db.WithContext(ctx).Find(&ambassadors).Error; err != nil {
		return 0, err
	}

	repaired := 0
	for _, ambassador := range ambassadors {
		var referralCount, closedCount int64
		if err := j.db.WithContext(ctx).Model(&models.Lead{}).
			Where("ambassador_id = ?", ambassador.ID).Count(&referralCount).Error; err != nil {
			return repaired, err
		}
		if err := j.db.WithContext(ctx).Model(&models.Deal{}).
			Where("ambassador_id = ? AND stage = ?", ambassador.ID, models.DealStageClosedWon).
			Count(&closedCount).Error; err != nil {
			return repaired, err
		}

		if int(referralCount) == ambassador.TotalReferrals && int(closedCount) == ambassador.ClosedDeals {
			continue
		}

		log.Printf("reconciling counters for ambassador %s: referrals %d->%d, closed %d->%d",
			ambassador.ID, ambassador.TotalReferrals, referralCount, ambassador.ClosedDeals, closedCount)
		err := j.db.WithContext(ctx).Model(&models.Ambassador{}).
			Where("id = ?", ambassador.ID).
			Updates(map[string]interface{}{
				"total_referrals": referralCount,
				"closed_deals":    closedCount,
			}).Error
		if err != nil {
			return repaired, err
		}
		repaired++
	}

	if repaired > 0 {
		if err := j.cache.InvalidateTags(ctx, cache.TagAmbassadors, cache.TagDashboard); err != nil {
			log.Printf("cache invalidation after reconciliation failed: %v", err)
		}
	}
	return repaired, nil
}
