package di

import (
	"context"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	authadapters "profile_backend/internal/feature/auth/adapters"
	"profile_backend/internal/feature/auth/usecase"
	"profile_backend/internal/platform/session"
)

// NewSessionRepository creates a SessionRepository implementation.
// If Redis is available, it returns a Redis-backed implementation.
// Otherwise, it falls back to the SQL sessions table.
func NewSessionRepository(rdb *redis.Client, db *gorm.DB) usecase.SessionRepository {
	if rdb != nil {
		return session.NewSessionRedis(rdb, "session")
	}
	return authadapters.NewSessionGorm(db)
}

// ExpiredSessionPruner deletes expired sessions from the SQL store.
type ExpiredSessionPruner interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// NewExpiredSessionPruner returns the SQL session store when it is the active store.
// Redis sessions expire by TTL, so nil is returned when rdb is set.
func NewExpiredSessionPruner(rdb *redis.Client, db *gorm.DB) ExpiredSessionPruner {
	if rdb != nil {
		return nil
	}
	return authadapters.NewSessionGorm(db)
}
