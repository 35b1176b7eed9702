// Package mailer sends transactional email. Delivery is best-effort:
// callers log failures and never let them roll back an order mutation.
package mailer

import (
	"fmt"

	"github.com/wneessen/go-mail"

	"github.com/greencart/greencart-golang/internal/config"
)

// Mailer is the interface order and account flows send email through.
type Mailer interface {
	Send(to, subject, html string) error
}

// SMTPMailer delivers through an SMTP relay (Gmail in the original
// deployment, hence the defaults in config).
type SMTPMailer struct {
	client *mail.Client
	from   string
}

func NewSMTP(cfg config.SMTPConfig) (*SMTPMailer, error) {
	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}

	return &SMTPMailer{client: client, from: cfg.From}, nil
}

func (m *SMTPMailer) Send(to, subject, html string) error {
	msg := mail.NewMsg()
	if err := msg.FromFormat("GreenCart", m.from); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid to address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, html)

	if err := m.client.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
