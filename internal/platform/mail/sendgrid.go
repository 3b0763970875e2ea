package mail

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const defaultSendGridHost = "https://api.sendgrid.com"

// SendGridSender はSendGrid v3 APIでメールを送信します。
type SendGridSender struct {
	apiKey string
	host   string
	from   Address
}

var _ Sender = (*SendGridSender)(nil)

// NewSendGridSender はSendGridSenderを生成します。
func NewSendGridSender(cfg SendGridConfig, from Address) *SendGridSender {
	host := cfg.Host
	if host == "" {
		host = defaultSendGridHost
	}
	return &SendGridSender{apiKey: cfg.APIKey, host: host, from: from}
}

// Send はメッセージを送信し、X-Message-Idヘッダーの値を返します。
func (s *SendGridSender) Send(ctx context.Context, msg Message) (string, error) {
	if err := msg.Validate(); err != nil {
		return "", err
	}

	from := sgmail.NewEmail(s.from.Name, s.from.Email)
	to := sgmail.NewEmail("", msg.To)
	message := sgmail.NewSingleEmail(from, msg.Subject, to, msg.Text, msg.HTML)

	request := sendgrid.GetRequest(s.apiKey, "/v3/mail/send", s.host)
	request.Method = http.MethodPost
	request.Body = sgmail.GetRequestBody(message)

	response, err := sendgrid.MakeRequestWithContext(ctx, request)
	if err != nil {
		return "", fmt.Errorf("sendgrid: send failed: %w", err)
	}
	if response.StatusCode != http.StatusAccepted {
		return "", fmt.Errorf("sendgrid: unexpected status code %d", response.StatusCode)
	}

	var id string
	if ids := response.Headers["X-Message-Id"]; len(ids) > 0 {
		id = ids[0]
	}
	slog.Info("email sent", "provider", ProviderSendGrid, "id", id, "subject", msg.Subject)
	return id, nil
}
