package mail

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
)

// ResendMailer delivers mail through the Resend API.
type ResendMailer struct {
	client *resend.Client
	from   string
}

// NewResendMailer creates a ResendMailer.
func NewResendMailer(apiKey, from string) *ResendMailer {
	return &ResendMailer{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

// Send sends a single email.
func (m *ResendMailer) Send(ctx context.Context, msg Message) error {
	_, err := m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.from,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
	})
	if err != nil {
		return fmt.Errorf("resend: %w", err)
	}
	return nil
}
