package di

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"profile_backend/internal/app/config"
	"profile_backend/internal/platform/cache"
	"profile_backend/internal/platform/mail"
	"profile_backend/internal/platform/session"
)

func newRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func newDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	return db
}

func TestNewSessionRepository(t *testing.T) {
	t.Parallel()

	db := newDB(t)

	_, isRedis := NewSessionRepository(newRedis(t), db).(*session.SessionRedis)
	assert.True(t, isRedis)

	_, isRedis = NewSessionRepository(nil, db).(*session.SessionRedis)
	assert.False(t, isRedis)
}

func TestNewExpiredSessionPruner(t *testing.T) {
	t.Parallel()

	db := newDB(t)
	assert.Nil(t, NewExpiredSessionPruner(newRedis(t), db))
	assert.NotNil(t, NewExpiredSessionPruner(nil, db))
}

func TestNewMailSender(t *testing.T) {
	t.Run("log provider is not wrapped", func(t *testing.T) {
		t.Setenv("MAIL_PROVIDER", "log")
		_, ok := NewMailSender().(mail.LogSender)
		assert.True(t, ok)
	})

	t.Run("invalid configuration falls back to log", func(t *testing.T) {
		t.Setenv("MAIL_PROVIDER", "sendgrid")
		t.Setenv("SENDGRID_API_KEY", "")
		_, ok := NewMailSender().(mail.LogSender)
		assert.True(t, ok)
	})

	t.Run("configured provider gets a breaker", func(t *testing.T) {
		t.Setenv("MAIL_PROVIDER", "sendgrid")
		t.Setenv("SENDGRID_API_KEY", "SG.key")
		t.Setenv("MAIL_FROM_EMAIL", "noreply@example.com")
		_, ok := NewMailSender().(*mail.BreakerSender)
		assert.True(t, ok)
	})
}

func TestOptionalCollaboratorsAreNilInterfaces(t *testing.T) {
	t.Setenv("AWS_BUCKET_NAME", "")
	t.Setenv("AWS_REGION", "")
	t.Setenv("VONAGE_API_KEY", "")
	t.Setenv("VONAGE_API_SECRET", "")

	assert.True(t, NewObjectStorage(context.Background()) == nil)
	assert.True(t, NewSMSSender() == nil)
	assert.True(t, NewReminderMarker(cache.NewStore(nil)) == nil)
	assert.NotNil(t, NewReminderMarker(cache.NewStore(newRedis(t))))
}

func TestNewLimiters_FailOpenWithoutRedis(t *testing.T) {
	t.Parallel()

	l := NewLimiters(cache.NewStore(nil))
	for i := 0; i < 10; i++ {
		assert.True(t, l.Auth.Allow(context.Background(), "ip:1.2.3.4", 1).Allowed)
	}
}

func TestNewReminderUsecase(t *testing.T) {
	t.Parallel()

	cfg := config.Config{AppName: "Profile App", AppURL: "http://localhost:3000", ReminderAfter: 0, ReminderPerMinute: 60}
	uc := NewReminderUsecase(cfg, newDB(t), cache.NewStore(nil), mail.LogSender{})
	assert.NotNil(t, uc)
}
