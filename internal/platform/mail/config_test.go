package mail

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearMailEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"MAIL_PROVIDER", "MAIL_FROM_NAME", "MAIL_FROM_EMAIL",
		"SMTP_HOST", "SMTP_PORT", "SMTP_USER", "SMTP_PASSWORD",
		"MAILGUN_DOMAIN", "MAILGUN_API_KEY", "MAILGUN_API_BASE",
		"SENDGRID_API_KEY", "SENDGRID_HOST",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearMailEnv(t)

	cfg := LoadConfig()

	assert.Equal(t, ProviderLog, cfg.Provider)
	assert.Equal(t, "Your App", cfg.From.Name)
	assert.Equal(t, "587", cfg.SMTP.Port)
}

func TestLoadConfig_SMTPFromHost(t *testing.T) {
	clearMailEnv(t)
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_USER", "mailer@example.com")

	cfg := LoadConfig()

	assert.Equal(t, ProviderSMTP, cfg.Provider)
	assert.Equal(t, "mailer@example.com", cfg.From.Email, "from falls back to SMTP_USER")
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_ExplicitProvider(t *testing.T) {
	clearMailEnv(t)
	t.Setenv("MAIL_PROVIDER", " SendGrid ")
	t.Setenv("SENDGRID_API_KEY", "key")
	t.Setenv("MAIL_FROM_EMAIL", "noreply@example.com")

	cfg := LoadConfig()

	assert.Equal(t, ProviderSendGrid, cfg.Provider)
	assert.Equal(t, "key", cfg.SendGrid.APIKey)
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	from := Address{Email: "noreply@example.com"}
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "log needs nothing", cfg: Config{Provider: ProviderLog}},
		{name: "smtp ok", cfg: Config{Provider: ProviderSMTP, From: from, SMTP: SMTPConfig{Host: "h", Port: "25"}}},
		{name: "smtp missing host", cfg: Config{Provider: ProviderSMTP, From: from, SMTP: SMTPConfig{Port: "25"}}, wantErr: true},
		{name: "mailgun ok", cfg: Config{Provider: ProviderMailgun, From: from, Mailgun: MailgunConfig{Domain: "d", APIKey: "k"}}},
		{name: "mailgun missing key", cfg: Config{Provider: ProviderMailgun, From: from, Mailgun: MailgunConfig{Domain: "d"}}, wantErr: true},
		{name: "sendgrid ok", cfg: Config{Provider: ProviderSendGrid, From: from, SendGrid: SendGridConfig{APIKey: "k"}}},
		{name: "sendgrid missing key", cfg: Config{Provider: ProviderSendGrid, From: from}, wantErr: true},
		{name: "missing from", cfg: Config{Provider: ProviderSMTP, SMTP: SMTPConfig{Host: "h", Port: "25"}}, wantErr: true},
		{name: "unknown provider", cfg: Config{Provider: "pigeon", From: from}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNewSender(t *testing.T) {
	t.Parallel()

	from := Address{Email: "noreply@example.com"}

	s, err := NewSender(Config{Provider: ProviderLog})
	require.NoError(t, err)
	assert.IsType(t, LogSender{}, s)

	s, err = NewSender(Config{Provider: ProviderSMTP, From: from, SMTP: SMTPConfig{Host: "h", Port: "25"}})
	require.NoError(t, err)
	assert.IsType(t, &SMTPSender{}, s)

	s, err = NewSender(Config{Provider: ProviderMailgun, From: from, Mailgun: MailgunConfig{Domain: "d", APIKey: "k"}})
	require.NoError(t, err)
	assert.IsType(t, &MailgunSender{}, s)

	s, err = NewSender(Config{Provider: ProviderSendGrid, From: from, SendGrid: SendGridConfig{APIKey: "k"}})
	require.NoError(t, err)
	assert.IsType(t, &SendGridSender{}, s)

	_, err = NewSender(Config{Provider: "pigeon", From: from})
	assert.Error(t, err)
}
