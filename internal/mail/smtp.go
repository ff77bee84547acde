package mail

import (
	"context"
	"fmt"

	gomail "gopkg.in/gomail.v2"
)

// SMTPMailer delivers mail through a plain SMTP relay.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPMailer creates an SMTPMailer.
func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

// Send sends a single email. gomail dials per call, which is fine for
// the low volume of assignment notifications.
func (m *SMTPMailer) Send(_ context.Context, msg Message) error {
	gm := gomail.NewMessage()
	gm.SetHeader("From", m.from)
	gm.SetHeader("To", msg.To...)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/html", msg.HTML)

	if err := m.dialer.DialAndSend(gm); err != nil {
		return fmt.Errorf("smtp: %w", err)
	}
	return nil
}
