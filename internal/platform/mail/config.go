package mail

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// プロバイダ名です。MAIL_PROVIDERで選択します。
const (
	ProviderSMTP     = "smtp"
	ProviderMailgun  = "mailgun"
	ProviderSendGrid = "sendgrid"
	ProviderLog      = "log"
)

// SMTPConfig はSMTPサーバーの接続情報です。
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
}

// MailgunConfig はMailgunの設定です。APIBaseは空の場合ライブラリの既定値を使います。
type MailgunConfig struct {
	Domain  string
	APIKey  string
	APIBase string
}

// SendGridConfig はSendGridの設定です。Hostは空の場合 https://api.sendgrid.com を使います。
type SendGridConfig struct {
	APIKey string
	Host   string
}

// Config はメール送信の設定です。
type Config struct {
	Provider string
	From     Address
	SMTP     SMTPConfig
	Mailgun  MailgunConfig
	SendGrid SendGridConfig
}

// LoadConfig は環境変数からメール設定を読み込みます。
// MAIL_PROVIDER が未設定の場合、SMTP_HOST があればsmtp、なければlogを選びます。
func LoadConfig() Config {
	cfg := Config{
		Provider: strings.ToLower(strings.TrimSpace(os.Getenv("MAIL_PROVIDER"))),
		From: Address{
			Name:  getenv("MAIL_FROM_NAME", "Your App"),
			Email: firstNonEmpty(os.Getenv("MAIL_FROM_EMAIL"), os.Getenv("SMTP_USER")),
		},
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     getenv("SMTP_PORT", "587"),
			Username: os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASSWORD"),
		},
		Mailgun: MailgunConfig{
			Domain:  os.Getenv("MAILGUN_DOMAIN"),
			APIKey:  os.Getenv("MAILGUN_API_KEY"),
			APIBase: os.Getenv("MAILGUN_API_BASE"),
		},
		SendGrid: SendGridConfig{
			APIKey: os.Getenv("SENDGRID_API_KEY"),
			Host:   os.Getenv("SENDGRID_HOST"),
		},
	}
	if cfg.Provider == "" {
		cfg.Provider = ProviderLog
		if cfg.SMTP.Host != "" {
			cfg.Provider = ProviderSMTP
		}
	}
	return cfg
}

// Validate は選択されたプロバイダに必要な値が揃っているかを検証します。
func (c Config) Validate() error {
	if c.Provider == ProviderLog {
		return nil
	}
	if c.From.Email == "" {
		return errors.New("mail: MAIL_FROM_EMAIL is required")
	}
	switch c.Provider {
	case ProviderSMTP:
		if c.SMTP.Host == "" || c.SMTP.Port == "" {
			return errors.New("mail: SMTP_HOST and SMTP_PORT are required")
		}
	case ProviderMailgun:
		if c.Mailgun.Domain == "" || c.Mailgun.APIKey == "" {
			return errors.New("mail: MAILGUN_DOMAIN and MAILGUN_API_KEY are required")
		}
	case ProviderSendGrid:
		if c.SendGrid.APIKey == "" {
			return errors.New("mail: SENDGRID_API_KEY is required")
		}
	default:
		return fmt.Errorf("mail: unknown provider %q", c.Provider)
	}
	return nil
}

// NewSender は設定に応じたSenderを生成します。
func NewSender(cfg Config) (Sender, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Provider {
	case ProviderSMTP:
		return NewSMTPSender(cfg.SMTP, cfg.From), nil
	case ProviderMailgun:
		return NewMailgunSender(cfg.Mailgun, cfg.From), nil
	case ProviderSendGrid:
		return NewSendGridSender(cfg.SendGrid, cfg.From), nil
	default:
		return LogSender{}, nil
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
