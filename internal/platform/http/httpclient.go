// Package http は外部API(S3, Vonage)を呼び出すためのHTTPクライアントを提供します。
package http

import (
	"net"
	"net/http"
	"time"
)

// ClientOption はNewHTTPClientのTransport設定を変更します。
type ClientOption func(*http.Transport)

// WithMaxIdleConnsPerHost はホストごとのアイドル接続数を設定します。
func WithMaxIdleConnsPerHost(n int) ClientOption {
	return func(t *http.Transport) { t.MaxIdleConnsPerHost = n }
}

// WithResponseHeaderTimeout はレスポンスヘッダー受信までの最大時間を設定します。
func WithResponseHeaderTimeout(d time.Duration) ClientOption {
	return func(t *http.Transport) { t.ResponseHeaderTimeout = d }
}

// NewHTTPClient はタイムアウト付きのHTTPクライアントを生成します。
//   - timeout はリクエスト全体の上限です。http.DefaultClient は無制限なので使いません。
//   - 接続は5秒、TLSハンドシェイクは5秒で打ち切ります。
//   - プロキシは HTTP_PROXY などの環境変数に従います。
func NewHTTPClient(timeout time.Duration, opts ...ClientOption) *http.Client {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:   true,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(t)
	}
	return &http.Client{Timeout: timeout, Transport: t}
}
