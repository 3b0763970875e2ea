package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"profile_backend/internal/feature/user/domain/entity"
	"profile_backend/internal/feature/user/usecase"
)

const (
	// userKeyPrefix はユーザー単体のキャッシュキーの接頭辞です。
	userKeyPrefix = "cache:user:"
	// AllUsersKey は全ユーザー一覧のキャッシュキーです。
	AllUsersKey = "cache:users:all"
)

// UserKey はユーザー単体のキャッシュキーを返します。
func UserKey(id string) string {
	return userKeyPrefix + safe(id)
}

// CachingProfileRepository decorates a ProfileReader with cache-aside reads.
// The cached value is the same UserProfile the inner reader returns, so hits and
// misses produce identical JSON.
type CachingProfileRepository struct {
	inner usecase.ProfileReader
	store *Store
	ttl   time.Duration
}

var (
	_ usecase.ProfileReader    = (*CachingProfileRepository)(nil)
	_ usecase.CacheInvalidator = (*CachingProfileRepository)(nil)
)

// NewCachingProfileRepository decorates inner with the given store.
// If ttl is 0 or negative, it defaults to 60 seconds.
func NewCachingProfileRepository(store *Store, ttl time.Duration, inner usecase.ProfileReader) *CachingProfileRepository {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &CachingProfileRepository{
		inner: inner,
		store: store,
		ttl:   ttl,
	}
}

// FindProfile returns the profile from the cache, falling back to the inner reader.
func (c *CachingProfileRepository) FindProfile(ctx context.Context, id string) (*entity.UserProfile, error) {
	// Bypass cache if Redis is not configured
	if !c.store.Available() {
		return c.inner.FindProfile(ctx, id)
	}

	key := UserKey(id)

	// 1) Check cache
	var cached entity.UserProfile
	if c.load(ctx, key, &cached) {
		return &cached, nil
	}

	// 2) Fallback to database
	out, err := c.inner.FindProfile(ctx, id)
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort)
	c.save(ctx, key, out)
	return out, nil
}

// ListProfiles returns every profile from the cache, falling back to the inner reader.
func (c *CachingProfileRepository) ListProfiles(ctx context.Context) ([]entity.UserProfile, error) {
	if !c.store.Available() {
		return c.inner.ListProfiles(ctx)
	}

	var cached []entity.UserProfile
	if c.load(ctx, AllUsersKey, &cached) && cached != nil {
		return cached, nil
	}

	out, err := c.inner.ListProfiles(ctx)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []entity.UserProfile{}
	}

	c.save(ctx, AllUsersKey, out)
	return out, nil
}

// Invalidate deletes the user's entry and the full listing in one command.
func (c *CachingProfileRepository) Invalidate(ctx context.Context, userID string) error {
	if !c.store.Available() {
		return nil
	}
	return c.store.Delete(ctx, UserKey(userID), AllUsersKey)
}

// load decodes a cached value into dst. A corrupted entry is deleted and reported as a miss.
func (c *CachingProfileRepository) load(ctx context.Context, key string, dst any) bool {
	b, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			slog.Warn("cache read failed", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(b, dst); err != nil {
		slog.Warn("discarding corrupted cache entry", "key", key, "error", err)
		_ = c.store.Delete(ctx, key)
		return false
	}
	return true
}

// save encodes v and stores it with the configured TTL. Failures are logged only.
func (c *CachingProfileRepository) save(ctx context.Context, key string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		slog.Warn("cache encode failed", "key", key, "error", err)
		return
	}
	if err := c.store.Set(ctx, key, b, c.ttl); err != nil {
		slog.Warn("cache write failed", "key", key, "error", err)
	}
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
