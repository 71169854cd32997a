package mail

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/ocanamx/salud-rural/backend/internal/config"
)

// SMTPMessenger sends plain-text mail through the configured relay.
type SMTPMessenger struct {
	cfg config.MailConfig
}

func NewSMTPMessenger(cfg config.MailConfig) *SMTPMessenger {
	return &SMTPMessenger{cfg: cfg}
}

// Send delivers one message. The context is honoured only up front; the
// smtp package itself has no cancellation hooks.
func (m *SMTPMessenger) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !m.cfg.Enabled() {
		return fmt.Errorf("mail relay not configured")
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		m.cfg.From, to, subject, body)

	addr := m.cfg.Host + ":" + m.cfg.Port
	auth := smtp.PlainAuth("", m.cfg.User, m.cfg.Pass, m.cfg.Host)
	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}
	return nil
}
