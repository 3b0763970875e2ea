// Package config はアプリケーション全体の設定を環境変数から読み込みます。
// 接続先ごとの設定（DB, Redis, メール, S3, SMS, レート制限）は各パッケージの LoadConfig が読み込みます。
package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

// Config はアプリケーションの設定を保持します。
type Config struct {
	Port       string        // HTTPサーバーのポート
	JWTSecret  string        // セッショントークンの署名鍵
	SessionTTL time.Duration // セッションとトークンの有効期間
	CacheTTL   time.Duration // ユーザーキャッシュのTTL

	AppName string // メールに記載するアプリ名
	AppURL  string // メール内リンクのベースURL

	CookieSecure bool
	CookieDomain string

	CronSecret        string        // /api/cron/* のBearerトークン
	ReminderAfter     time.Duration // 更新からリマインドまでの猶予（最小1時間）
	ReminderPerMinute int           // リマインドメールの送信ペース

	AvatarSmall int // プロフィール画像（小）の一辺のピクセル数
	AvatarLarge int // プロフィール画像（大）の一辺のピクセル数
}

// LoadConfig は環境変数から設定を読み込みます。不正な値は警告を出して既定値を使います。
func LoadConfig() Config {
	cfg := Config{
		Port:              getenv("PORT", "8080"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		SessionTTL:        duration("SESSION_TTL", 7*24*time.Hour),
		CacheTTL:          time.Duration(integer("REDIS_CACHE_TTL", 60)) * time.Second,
		AppName:           getenv("APP_NAME", "Profile App"),
		AppURL:            getenv("APP_URL", "http://localhost:3000"),
		CookieSecure:      os.Getenv("COOKIE_SECURE") == "true",
		CookieDomain:      os.Getenv("COOKIE_DOMAIN"),
		CronSecret:        os.Getenv("CRON_SECRET"),
		ReminderAfter:     time.Duration(integer("AVATAR_REMINDER_AFTER_HOURS", 24)) * time.Hour,
		ReminderPerMinute: integer("AVATAR_REMINDER_PER_MINUTE", 60),
		AvatarSmall:       128,
		AvatarLarge:       512,
	}
	if cfg.ReminderAfter < time.Hour {
		cfg.ReminderAfter = time.Hour
	}
	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// integer reads a positive integer.
func integer(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		slog.Warn("ignoring invalid config value", "env", key, "value", v)
		return def
	}
	return n
}

// duration reads a Go duration ("168h") or a number of seconds.
func duration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	slog.Warn("ignoring invalid config value", "env", key, "value", v)
	return def
}
