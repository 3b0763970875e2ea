// Package di provides dependency injection factories for creating application components.
// Optional collaborators (Redis, S3, Vonage) are returned as nil interfaces when not configured.
package di

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	notificationhandler "profile_backend/internal/feature/notification/transport/handler"
	"profile_backend/internal/feature/user/usecase"
	"profile_backend/internal/platform/cache"
	"profile_backend/internal/platform/mail"
	"profile_backend/internal/platform/ratelimit"
	infraredis "profile_backend/internal/platform/redis"
	"profile_backend/internal/platform/sms"
	"profile_backend/internal/platform/storage"
	"profile_backend/internal/shared/ratelimiter"
)

// NewRedisClient connects to Redis. It returns nil when Redis is not configured or unreachable.
func NewRedisClient() *redis.Client {
	rdb, err := infraredis.NewRedisClient(infraredis.LoadConfig())
	if err != nil {
		slog.Warn("Redis unavailable. Running without cache, rate limiting and Redis sessions.", "error", err)
		return nil
	}
	return rdb
}

// NewLimiters creates the per-class rate limiters on top of the cache store.
// Without Redis every request is allowed.
func NewLimiters(store *cache.Store) *ratelimit.Limiters {
	return ratelimit.NewLimiters(store, ratelimit.LoadConfig())
}

// NewMailSender creates the configured mail provider wrapped in a circuit breaker.
// An invalid configuration falls back to logging messages instead of sending them.
func NewMailSender() mail.Sender {
	cfg := mail.LoadConfig()
	sender, err := mail.NewSender(cfg)
	if err != nil {
		slog.Error("mail is misconfigured, messages will only be logged", "provider", cfg.Provider, "error", err)
		return mail.LogSender{}
	}
	if cfg.Provider == mail.ProviderLog {
		slog.Warn("MAIL_PROVIDER is log; emails will not be delivered")
		return sender
	}
	slog.Info("mail provider configured", "provider", cfg.Provider)
	return mail.NewBreakerSender("mail-"+cfg.Provider, sender)
}

// NewObjectStorage creates the S3 storage used for profile pictures.
func NewObjectStorage(ctx context.Context) usecase.ObjectStorage {
	cfg := storage.LoadConfig()
	if !cfg.Configured() {
		slog.Warn("S3 is not configured; profile picture upload is disabled")
		return nil
	}
	s, err := storage.NewS3Storage(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialise S3 storage", "error", err)
		return nil
	}
	return s
}

// NewSMSSender creates the Vonage SMS client.
func NewSMSSender() notificationhandler.SMSSender {
	c, err := sms.NewClient(sms.LoadConfig())
	if err != nil {
		slog.Warn("SMS is not configured", "error", err)
		return nil
	}
	return c
}

// NewReminderMarker returns the cache store when Redis is available.
func NewReminderMarker(store *cache.Store) usecase.ReminderMarker {
	if !store.Available() {
		return nil
	}
	return store
}

// NewReminderPacer caps reminder emails at perMinute per minute. Each minute's
// quota goes out as a burst, then senders wait for the next minute.
func NewReminderPacer(perMinute int) *ratelimiter.RateLimiter {
	return ratelimiter.NewRateLimiter(perMinute, time.Minute)
}
