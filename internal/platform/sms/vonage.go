// Package sms はVonage SMS APIのクライアントを提供します。
package sms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	httpclient "profile_backend/internal/platform/http"
)

const (
	defaultBaseURL = "https://rest.nexmo.com"
	defaultFrom    = "ProfileApp"
	requestTimeout = 10 * time.Second
)

var (
	// ErrNotConfigured はAPIキーが未設定の場合に返されます。
	ErrNotConfigured = errors.New("sms: vonage is not configured")

	// ErrRejected はVonageがメッセージを拒否した場合に返されます。
	ErrRejected = errors.New("sms: message rejected")
)

// Config はVonageの設定です。
type Config struct {
	APIKey    string
	APISecret string
	From      string
	BaseURL   string
}

// LoadConfig は環境変数からVonageの設定を読み込みます。
func LoadConfig() Config {
	cfg := Config{
		APIKey:    os.Getenv("VONAGE_API_KEY"),
		APISecret: os.Getenv("VONAGE_API_SECRET"),
		From:      os.Getenv("VONAGE_FROM"),
		BaseURL:   os.Getenv("VONAGE_BASE_URL"),
	}
	if cfg.From == "" {
		cfg.From = defaultFrom
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	return cfg
}

// Configured はAPIキーとシークレットが揃っているかを返します。
func (c Config) Configured() bool {
	return c.APIKey != "" && c.APISecret != ""
}

// Result は送信結果です。
type Result struct {
	MessageID        string `json:"messageId"`
	To               string `json:"to"`
	Status           string `json:"status"`
	RemainingBalance string `json:"remainingBalance,omitempty"`
	MessagePrice     string `json:"messagePrice,omitempty"`
	Network          string `json:"network,omitempty"`
}

type vonageMessage struct {
	To               string `json:"to"`
	MessageID        string `json:"message-id"`
	Status           string `json:"status"`
	ErrorText        string `json:"error-text"`
	RemainingBalance string `json:"remaining-balance"`
	MessagePrice     string `json:"message-price"`
	Network          string `json:"network"`
}

type vonageResponse struct {
	MessageCount string          `json:"message-count"`
	Messages     []vonageMessage `json:"messages"`
}

// Client はVonage SMS APIのクライアントです。
type Client struct {
	cfg  Config
	http *http.Client
	cb   *gobreaker.CircuitBreaker
}

// NewClient はClientを生成します。未設定の場合は ErrNotConfigured を返します。
func NewClient(cfg Config) (*Client, error) {
	if !cfg.Configured() {
		return nil, ErrNotConfigured
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.From == "" {
		cfg.From = defaultFrom
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "vonage-sms",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrRejected)
		},
	})
	return &Client{cfg: cfg, http: httpclient.NewHTTPClient(requestTimeout, httpclient.WithResponseHeaderTimeout(5*time.Second)), cb: cb}, nil
}

// Send はtoにtextを送信します。Vonageが拒否した場合は ErrRejected を包んだエラーを返します。
func (c *Client) Send(ctx context.Context, to, text string) (*Result, error) {
	res, err := c.cb.Execute(func() (interface{}, error) {
		return c.send(ctx, to, text)
	})
	if err != nil {
		return nil, err
	}
	return res.(*Result), nil
}

func (c *Client) send(ctx context.Context, to, text string) (*Result, error) {
	form := url.Values{
		"api_key":    {c.cfg.APIKey},
		"api_secret": {c.cfg.APISecret},
		"from":       {c.cfg.From},
		"to":         {strings.TrimPrefix(to, "+")},
		"text":       {text},
	}
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/sms/json"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("sms: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sms: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("sms: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out vonageResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("sms: decode response: %w", err)
	}
	if len(out.Messages) == 0 {
		return nil, fmt.Errorf("sms: empty response")
	}

	m := out.Messages[0]
	if m.Status != "0" {
		slog.Warn("sms rejected", "status", m.Status, "error", m.ErrorText)
		return nil, fmt.Errorf("%w: status %s: %s", ErrRejected, m.Status, m.ErrorText)
	}

	slog.Info("sms sent", "message_id", m.MessageID, "network", m.Network)
	return &Result{
		MessageID:        m.MessageID,
		To:               m.To,
		Status:           m.Status,
		RemainingBalance: m.RemainingBalance,
		MessagePrice:     m.MessagePrice,
		Network:          m.Network,
	}, nil
}
