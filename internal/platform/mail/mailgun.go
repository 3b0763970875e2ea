package mail

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mailgun/mailgun-go/v4"
)

// MailgunSender はMailgun APIでメールを送信します。
type MailgunSender struct {
	mg   *mailgun.MailgunImpl
	from Address
}

var _ Sender = (*MailgunSender)(nil)

// NewMailgunSender はMailgunSenderを生成します。
func NewMailgunSender(cfg MailgunConfig, from Address) *MailgunSender {
	mg := mailgun.NewMailgun(cfg.Domain, cfg.APIKey)
	if cfg.APIBase != "" {
		mg.SetAPIBase(cfg.APIBase)
	}
	return &MailgunSender{mg: mg, from: from}
}

// Send はメッセージをMailgunのキューに登録し、メッセージIDを返します。
func (s *MailgunSender) Send(ctx context.Context, msg Message) (string, error) {
	if err := msg.Validate(); err != nil {
		return "", err
	}

	m := s.mg.NewMessage(s.from.String(), msg.Subject, msg.Text)
	if msg.HTML != "" {
		m.SetHtml(msg.HTML)
	}
	if err := m.AddRecipient(msg.To); err != nil {
		return "", fmt.Errorf("mailgun: invalid recipient: %w", err)
	}

	_, id, err := s.mg.Send(ctx, m)
	if err != nil {
		return "", fmt.Errorf("mailgun: send failed: %w", err)
	}

	slog.Info("email queued", "provider", ProviderMailgun, "id", id, "subject", msg.Subject)
	return id, nil
}
