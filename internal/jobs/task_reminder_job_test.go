package jobs

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estatelink/backend/internal/models"
)

type fakeMailer struct {
	to      string
	subject string
	body    string
	sends   int
}

func (f *fakeMailer) Send(toEmail, subject, htmlBody string) error {
	f.to = toEmail
	f.subject = subject
	f.body = htmlBody
	f.sends++
	return nil
}

func TestTaskReminderSendsDigestForOverdueTasks(t *testing.T) {
	db := newTestDB(t)

	lead := models.Lead{FullName: "Michael Green", Email: "michael@example.com"}
	require.NoError(t, db.Create(&lead).Error)

	overdue := models.LeadTask{LeadID: lead.ID, Subject: "Send brochure", DueDate: time.Now().Add(-48 * time.Hour)}
	done := models.LeadTask{LeadID: lead.ID, Subject: "Call back", DueDate: time.Now().Add(-24 * time.Hour), Completed: true}
	upcoming := models.LeadTask{LeadID: lead.ID, Subject: "Schedule visit", DueDate: time.Now().Add(24 * time.Hour)}
	for _, task := range []*models.LeadTask{&overdue, &done, &upcoming} {
		require.NoError(t, db.Create(task).Error)
	}

	mailer := &fakeMailer{}
	job := NewTaskReminderJob(db, mailer, "ops@example.com")
	require.NoError(t, job.Run(context.Background()))

	assert.Equal(t, 1, mailer.sends)
	assert.Equal(t, "ops@example.com", mailer.to)
	assert.Contains(t, mailer.subject, "1 overdue")
	assert.True(t, strings.Contains(mailer.body, "Send brochure"))
	assert.False(t, strings.Contains(mailer.body, "Schedule visit"))
}

func TestTaskReminderSkipsWhenNothingOverdue(t *testing.T) {
	db := newTestDB(t)

	mailer := &fakeMailer{}
	job := NewTaskReminderJob(db, mailer, "ops@example.com")
	require.NoError(t, job.Run(context.Background()))
	assert.Zero(t, mailer.sends)
}

func TestTaskReminderSkipsWithoutRecipient(t *testing.T) {
	db := newTestDB(t)

	mailer := &fakeMailer{}
	job := NewTaskReminderJob(db, mailer, "")
	require.NoError(t, job.Run(context.Background()))
	assert.Zero(t, mailer.sends)
}
