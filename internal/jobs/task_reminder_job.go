package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/estatelink/backend/internal/models"
	"github.com/estatelink/backend/internal/services/email"
)

// TaskReminderJob mails a digest of overdue open lead tasks to the staff
// inbox.
type TaskReminderJob struct {
	db      *gorm.DB
	mailer  email.Sender
	toEmail string
}

// NewTaskReminderJob creates a new task reminder job
func NewTaskReminderJob(db *gorm.DB, mailer email.Sender, toEmail string) *TaskReminderJob {
	return &TaskReminderJob{db: db, mailer: mailer, toEmail: toEmail}
}

// Run collects overdue open tasks and sends the digest. A day with nothing
// overdue sends no mail.
func (j *TaskReminderJob) Run(ctx context.Context) error {
	if j.toEmail == "" {
		return nil
	}

	var tasks []models.LeadTask
	err := j.db.WithContext(ctx).
		Where("completed = ? AND due_date < ?", false, time.Now()).
		Order("due_date asc").Find(&tasks).Error
	if err != nil {
		return fmt.Errorf("listing overdue tasks: %w", err)
	}
	if len(tasks) == 0 {
		return nil
	}

	lines := make([]string, 0, len(tasks))
	for _, task := range tasks {
		var leadName string
		if err := j.db.WithContext(ctx).Model(&models.Lead{}).
			Where("id = ?", task.LeadID).Pluck("full_name", &leadName).Error; err != nil {
			log.Printf("loading lead for task %s failed: %v", task.ID, err)
		}
		lines = append(lines, fmt.Sprintf("%s (%s, due %s)", task.Subject, leadName, task.DueDate.Format("2006-01-02")))
	}

	subject := fmt.Sprintf("%d overdue lead tasks", len(tasks))
	if err := j.mailer.Send(j.toEmail, subject, email.TaskDigestBody(lines)); err != nil {
		return fmt.Errorf("sending task digest: %w", err)
	}
	return nil
}
