package jobs

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"
	"gorm.io/gorm"

	"github.com/estatelink/backend/internal/cache"
	"github.com/estatelink/backend/internal/services/email"
)

// StartScheduler registers the recurring jobs and starts them in the
// background. The returned scheduler is stopped by the caller on shutdown.
func StartScheduler(db *gorm.DB, c cache.Invalidator, mailer email.Sender, reminderEmail string) (*gocron.Scheduler, error) {
	scheduler := gocron.NewScheduler(time.UTC)

	reconcile := NewReconcileCountersJob(db, c)
	_, err := scheduler.Every(1).Hour().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		repaired, err := reconcile.Run(ctx)
		if err != nil {
			log.Printf("counter reconciliation failed: %v", err)
			return
		}
		if repaired > 0 {
			log.Printf("counter reconciliation repaired %d ambassadors", repaired)
		}
	})
	if err != nil {
		return nil, err
	}

	reminder := NewTaskReminderJob(db, mailer, reminderEmail)
	_, err = scheduler.Every(1).Day().At("07:00").Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := reminder.Run(ctx); err != nil {
			log.Printf("task reminder failed: %v", err)
		}
	})
	if err != nil {
		return nil, err
	}

	scheduler.StartAsync()
	return scheduler, nil
}
