// Package mail はメール送信プロバイダ(SMTP, Mailgun, SendGrid)を共通のSenderとして提供します。
package mail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
)

// ErrInvalidMessage は宛先や件名が欠けているメッセージに対して返されます。
var ErrInvalidMessage = errors.New("invalid mail message")

// Address は表示名付きのメールアドレスです。
type Address struct {
	Name  string
	Email string
}

// String は "Name <email>" 形式で返します。
func (a Address) String() string {
	if a.Name == "" {
		return a.Email
	}
	return (&mail.Address{Name: a.Name, Address: a.Email}).String()
}

// Message は1通のメールです。HTMLとTextの両方を持てます。
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Validate はメッセージが送信可能かを検証します。
func (m Message) Validate() error {
	if m.To == "" || m.Subject == "" {
		return fmt.Errorf("%w: recipient and subject are required", ErrInvalidMessage)
	}
	if _, err := mail.ParseAddress(m.To); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if m.Text == "" && m.HTML == "" {
		return fmt.Errorf("%w: body is empty", ErrInvalidMessage)
	}
	return nil
}

// Sender はメールを送信します。戻り値はプロバイダのメッセージIDです（不明な場合は空文字）。
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// LogSender はメールを送信せずにログへ出力します。開発環境とプロバイダ未設定時に使います。
type LogSender struct{}

var _ Sender = LogSender{}

// Send はメッセージの宛先と件名をログに出力します。
func (LogSender) Send(_ context.Context, msg Message) (string, error) {
	if err := msg.Validate(); err != nil {
		return "", err
	}
	slog.Info("mail not sent (log provider)", "to", msg.To, "subject", msg.Subject)
	return "", nil
}
