package email

import (
	"fmt"
	"log"

	"github.com/resend/resend-go/v3"

	"github.com/estatelink/backend/internal/config"
)

// Sender sends transactional email. The zero-value Service is a configured
// no-op so callers never have to nil-check.
type Sender interface {
	Send(toEmail, subject, htmlBody string) error
}

// Service sends email through Resend.
type Service struct {
	client    *resend.Client
	fromEmail string
	fromName  string
}

// NewService returns a configured Resend-backed sender. When no API key is
// configured it returns a service that logs and drops mail, which keeps local
// development working without credentials.
func NewService(cfg config.EmailConfig) *Service {
	s := &Service{
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
	}
	if cfg.ResendAPIKey != "" {
		s.client = resend.NewClient(cfg.ResendAPIKey)
	}
	return s
}

// Send sends an email to the given address.
func (s *Service) Send(toEmail, subject, htmlBody string) error {
	if s.client == nil {
		log.Printf("email not configured, dropping %q to %s", subject, toEmail)
		return nil
	}

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail),
		To:      []string{toEmail},
		Subject: subject,
		Html:    htmlBody,
	}

	sent, err := s.client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("resend send: %w", err)
	}
	log.Printf("email sent to %s: %s [id=%s]", toEmail, subject, sent.Id)
	return nil
}

// InvitationBody renders the HTML body for a user invitation.
func InvitationBody(fullName, role, frontendURL string) string {
	return fmt.Sprintf(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <div style="background: #0073ea; color: white; padding: 20px; text-align: center; border-radius: 8px 8px 0 0;">
    <h1 style="margin: 0;">EstateLink</h1>
  </div>
  <div style="padding: 20px; background: #f9f9f9; border-radius: 0 0 8px 8px;">
    <p>Hi <strong>%s</strong>,</p>
    <p>You have been invited to EstateLink with the <strong>%s</strong> role.</p>
    <p><a href="%s/login" style="display: inline-block; background: #0073ea; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px;">Sign in</a></p>
    <p>If you were not expecting this invitation, you can ignore this email.</p>
  </div>
</div>`, fullName, role, frontendURL)
}

// TaskDigestBody renders the HTML body for the overdue-task digest.
func TaskDigestBody(lines []string) string {
	items := ""
	for _, l := range lines {
		items += "<li>" + l + "</li>"
	}
	return fmt.Sprintf(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Overdue lead tasks</h2>
  <ul>%s</ul>
</div>`, items)
}
