// Package mail sends transactional email through a pluggable provider.
package mail

import (
	"context"
	"fmt"

	"github.com/clubware/taskhub/internal/config"
)

// Message is a provider-independent email.
type Message struct {
	To      []string
	Subject string
	HTML    string
}

// Mailer delivers messages through a concrete provider.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// NewFromConfig selects the provider from MAIL_PROVIDER. An empty
// provider returns a nil Mailer, which callers treat as email disabled.
func NewFromConfig(cfg *config.Config) (Mailer, error) {
	switch cfg.MailProvider {
	case "resend":
		if cfg.ResendAPIKey == "" {
			return nil, fmt.Errorf("RESEND_API_KEY is required for the resend provider")
		}
		return NewResendMailer(cfg.ResendAPIKey, cfg.MailFrom), nil
	case "smtp":
		if cfg.SMTPHost == "" {
			return nil, fmt.Errorf("SMTP_HOST is required for the smtp provider")
		}
		return NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailFrom), nil
	case "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported MAIL_PROVIDER %q", cfg.MailProvider)
	}
}
