package notify

import (
	"context"
	"fmt"

	"complaintdesk/backend/internal/config"
	"complaintdesk/backend/internal/models"

	"gopkg.in/gomail.v2"
)

// EmailSink sends notifications by SMTP.
type EmailSink struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmailSink(cfg config.SMTP) *EmailSink {
	return &EmailSink{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *EmailSink) Name() string { return "email" }

func (s *EmailSink) Send(_ context.Context, u *models.User, n models.Notification) error {
	if u.Email == "" {
		return nil
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", u.Email)
	msg.SetHeader("Subject", Subject(n))
	msg.SetBody("text/plain", EmailBody(u, n))

	if err := s.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send e-mail to user %d: %w", u.ID, err)
	}
	return nil
}

// Subject is the e-mail subject for n.
func Subject(n models.Notification) string {
	if n.ComplaintID == nil {
		return "Complaint desk notification"
	}
	return fmt.Sprintf("Update on complaint #%d", *n.ComplaintID)
}

func EmailBody(u *models.User, n models.Notification) string {
	return fmt.Sprintf("Hello %s,\n\n%s\n\nSign in to the complaint desk to see the details.\n", u.FirstName, n.Description)
}
