package sms

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{APIKey: "key", APISecret: "secret", From: "Acme", BaseURL: srv.URL})
	require.NoError(t, err)
	return c
}

func TestNewClient_NotConfigured(t *testing.T) {
	t.Parallel()

	_, err := NewClient(Config{APIKey: "key"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("VONAGE_API_KEY", "k")
	t.Setenv("VONAGE_API_SECRET", "s")
	t.Setenv("VONAGE_FROM", "")
	t.Setenv("VONAGE_BASE_URL", "")

	cfg := LoadConfig()

	assert.True(t, cfg.Configured())
	assert.Equal(t, defaultFrom, cfg.From)
	assert.Equal(t, defaultBaseURL, cfg.BaseURL)
}

func TestClient_Send(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sms/json", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "key", r.PostForm.Get("api_key"))
		assert.Equal(t, "secret", r.PostForm.Get("api_secret"))
		assert.Equal(t, "Acme", r.PostForm.Get("from"))
		assert.Equal(t, "15551234567", r.PostForm.Get("to"))
		assert.Equal(t, "hello", r.PostForm.Get("text"))
		_, _ = w.Write([]byte(`{"message-count":"1","messages":[{"to":"15551234567","message-id":"abc","status":"0","network":"12345"}]}`))
	})

	res, err := c.Send(context.Background(), "+15551234567", "hello")

	require.NoError(t, err)
	assert.Equal(t, "abc", res.MessageID)
	assert.Equal(t, "12345", res.Network)
}

func TestClient_Send_Rejected(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message-count":"1","messages":[{"status":"2","error-text":"Missing to param"}]}`))
	})

	_, err := c.Send(context.Background(), "", "hello")

	assert.ErrorIs(t, err, ErrRejected)
	assert.Equal(t, gobreaker.StateClosed, c.cb.State(), "rejections do not trip the breaker")
}

func TestClient_Send_ServerErrorTripsBreaker(t *testing.T) {
	t.Parallel()

	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	})

	for range 5 {
		_, err := c.Send(context.Background(), "1555", "hello")
		require.Error(t, err)
	}
	_, err := c.Send(context.Background(), "1555", "hello")

	assert.True(t, errors.Is(err, gobreaker.ErrOpenState))
	assert.Equal(t, 5, calls)
}
