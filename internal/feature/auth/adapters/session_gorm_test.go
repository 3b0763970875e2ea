package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"profile_backend/internal/feature/auth/domain/entity"
	"profile_backend/internal/feature/auth/usecase"
)

// setupSessionTestDB prepares an in-memory SQLite database for session testing.
func setupSessionTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to initialize test database")

	err = db.AutoMigrate(&SessionModel{})
	require.NoError(t, err, "failed to migrate table")

	return db
}

// seedSession creates a test session in the database.
func seedSession(t *testing.T, db *gorm.DB, id, userID string, createdAt, expiresAt time.Time, revokedAt *time.Time) *entity.Session {
	t.Helper()

	session := &SessionModel{
		ID:        id,
		UserID:    userID,
		UserAgent: "test-agent",
		IPAddress: "127.0.0.1",
		CreatedAt: createdAt,
		ExpiresAt: expiresAt,
		RevokedAt: revokedAt,
	}
	require.NoError(t, db.Create(session).Error, "failed to seed session")

	return session.ToEntity()
}

func TestNewSessionGorm(t *testing.T) {
	db := setupSessionTestDB(t)

	repo := NewSessionGorm(db)

	assert.NotNil(t, repo, "repository is nil")
	assert.NotNil(t, repo.db, "database connection is nil")
}

func TestSessionGorm_CreateAndFind(t *testing.T) {
	t.Parallel()

	db := setupSessionTestDB(t)
	repo := NewSessionGorm(db)
	ctx := context.Background()

	now := time.Now().Truncate(time.Second)
	s := &entity.Session{ID: "s1", UserID: "u1", UserAgent: "ua", IPAddress: "::1", CreatedAt: now, ExpiresAt: now.Add(time.Hour)}
	require.NoError(t, repo.Create(ctx, s))

	got, err := repo.FindByID(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, "ua", got.UserAgent)
	assert.True(t, got.IsValid())

	assert.Error(t, repo.Create(ctx, s), "duplicate session ID")

	_, err = repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, usecase.ErrSessionNotFound)
}

func TestSessionModelFromEntity_Truncates(t *testing.T) {
	t.Parallel()

	long := make([]byte, 600)
	for i := range long {
		long[i] = 'a'
	}
	m := SessionModelFromEntity(&entity.Session{UserAgent: string(long)})
	assert.Len(t, m.UserAgent, 512)
}

// TestSessionGorm_FindByUserID は有効なセッションのみが古い順に返されることを検証します。
func TestSessionGorm_FindByUserID(t *testing.T) {
	t.Parallel()

	db := setupSessionTestDB(t)
	repo := NewSessionGorm(db)
	now := time.Now()
	past := now.Add(-time.Minute)

	seedSession(t, db, "newer", "u1", now, now.Add(time.Hour), nil)
	seedSession(t, db, "older", "u1", now.Add(-time.Hour), now.Add(time.Hour), nil)
	seedSession(t, db, "revoked", "u1", now, now.Add(time.Hour), &past)
	seedSession(t, db, "expired", "u1", now.Add(-2*time.Hour), past, nil)
	seedSession(t, db, "other", "u2", now, now.Add(time.Hour), nil)

	sessions, err := repo.FindByUserID(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "older", sessions[0].ID)
	assert.Equal(t, "newer", sessions[1].ID)

	count, err := repo.CountByUserID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	none, err := repo.FindByUserID(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSessionGorm_Revoke(t *testing.T) {
	t.Parallel()

	db := setupSessionTestDB(t)
	repo := NewSessionGorm(db)
	ctx := context.Background()
	now := time.Now()

	seedSession(t, db, "s1", "u1", now, now.Add(time.Hour), nil)

	require.NoError(t, repo.Revoke(ctx, "s1"))
	got, err := repo.FindByID(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, got.IsRevoked())

	assert.ErrorIs(t, repo.Revoke(ctx, "missing"), usecase.ErrSessionNotFound)
}

func TestSessionGorm_RevokeAllByUserID(t *testing.T) {
	t.Parallel()

	db := setupSessionTestDB(t)
	repo := NewSessionGorm(db)
	ctx := context.Background()
	now := time.Now()

	seedSession(t, db, "a", "u1", now, now.Add(time.Hour), nil)
	seedSession(t, db, "b", "u1", now, now.Add(time.Hour), nil)
	seedSession(t, db, "c", "u2", now, now.Add(time.Hour), nil)

	require.NoError(t, repo.RevokeAllByUserID(ctx, "u1"))

	count, err := repo.CountByUserID(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, count)

	count, err = repo.CountByUserID(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestSessionGorm_DeleteOldestByUserID(t *testing.T) {
	t.Parallel()

	db := setupSessionTestDB(t)
	repo := NewSessionGorm(db)
	ctx := context.Background()
	now := time.Now()

	seedSession(t, db, "old", "u1", now.Add(-time.Hour), now.Add(time.Hour), nil)
	seedSession(t, db, "new", "u1", now, now.Add(time.Hour), nil)

	require.NoError(t, repo.DeleteOldestByUserID(ctx, "u1"))

	_, err := repo.FindByID(ctx, "old")
	assert.ErrorIs(t, err, usecase.ErrSessionNotFound)
	_, err = repo.FindByID(ctx, "new")
	assert.NoError(t, err)

	assert.NoError(t, repo.DeleteOldestByUserID(ctx, "nobody"))
}

func TestSessionGorm_DeleteExpired(t *testing.T) {
	t.Parallel()

	db := setupSessionTestDB(t)
	repo := NewSessionGorm(db)
	now := time.Now()

	seedSession(t, db, "expired1", "u1", now.Add(-2*time.Hour), now.Add(-time.Hour), nil)
	seedSession(t, db, "expired2", "u2", now.Add(-2*time.Hour), now.Add(-time.Minute), nil)
	seedSession(t, db, "active", "u1", now, now.Add(time.Hour), nil)

	n, err := repo.DeleteExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
