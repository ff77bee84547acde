package mail

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubware/taskhub/internal/config"
)

func TestNewFromConfig_EmptyProviderDisablesMail(t *testing.T) {
	mailer, err := NewFromConfig(&config.Config{})
	require.NoError(t, err)
	assert.Nil(t, mailer)
}

func TestNewFromConfig_Resend(t *testing.T) {
	mailer, err := NewFromConfig(&config.Config{
		MailProvider: "resend",
		ResendAPIKey: "re_test_key",
		MailFrom:     "TaskHub <noreply@club.example>",
	})
	require.NoError(t, err)
	assert.IsType(t, &ResendMailer{}, mailer)
}

func TestNewFromConfig_ResendRequiresAPIKey(t *testing.T) {
	_, err := NewFromConfig(&config.Config{MailProvider: "resend"})
	assert.Error(t, err)
}

func TestNewFromConfig_SMTP(t *testing.T) {
	mailer, err := NewFromConfig(&config.Config{
		MailProvider: "smtp",
		SMTPHost:     "smtp.club.example",
		SMTPPort:     587,
		MailFrom:     "noreply@club.example",
	})
	require.NoError(t, err)
	assert.IsType(t, &SMTPMailer{}, mailer)
}

func TestNewFromConfig_SMTPRequiresHost(t *testing.T) {
	_, err := NewFromConfig(&config.Config{MailProvider: "smtp"})
	assert.Error(t, err)
}

func TestNewFromConfig_RejectsUnknownProvider(t *testing.T) {
	_, err := NewFromConfig(&config.Config{MailProvider: "carrier-pigeon"})
	assert.Error(t, err)
}
