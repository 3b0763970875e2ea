package usecase

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"profile_backend/internal/feature/auth/domain/entity"
	userentity "profile_backend/internal/feature/user/domain/entity"
	userusecase "profile_backend/internal/feature/user/usecase"
	"profile_backend/internal/platform/validation"
)

// mockUserRepository is an in-memory UserRepository keyed by email.
type mockUserRepository struct {
	byEmail   map[string]*userentity.User
	createErr error
	findErr   error
}

func newMockUserRepository(users ...*userentity.User) *mockUserRepository {
	m := &mockUserRepository{byEmail: map[string]*userentity.User{}}
	for _, u := range users {
		m.byEmail[u.Email] = u
	}
	return m
}

func (m *mockUserRepository) Create(ctx context.Context, user *userentity.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	if _, ok := m.byEmail[user.Email]; ok {
		return userusecase.ErrEmailAlreadyExists
	}
	user.ID = "id-" + user.Email
	m.byEmail[user.Email] = user
	return nil
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*userentity.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	u, ok := m.byEmail[email]
	if !ok {
		return nil, userusecase.ErrUserNotFound
	}
	return u, nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id string) (*userentity.User, error) {
	for _, u := range m.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, userusecase.ErrUserNotFound
}

// memorySessions is an in-memory SessionRepository.
type memorySessions struct {
	sessions map[string]*entity.Session
	evicted  []string
}

func newMemorySessions() *memorySessions {
	return &memorySessions{sessions: map[string]*entity.Session{}}
}

func (m *memorySessions) Create(ctx context.Context, s *entity.Session) error {
	m.sessions[s.ID] = s
	return nil
}

func (m *memorySessions) FindByID(ctx context.Context, id string) (*entity.Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (m *memorySessions) FindByUserID(ctx context.Context, userID string) ([]*entity.Session, error) {
	var out []*entity.Session
	for _, s := range m.sessions {
		if s.UserID == userID && s.IsValid() {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memorySessions) Revoke(ctx context.Context, id string) error {
	s, ok := m.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	now := time.Now()
	s.RevokedAt = &now
	return nil
}

func (m *memorySessions) RevokeAllByUserID(ctx context.Context, userID string) error {
	for _, s := range m.sessions {
		if s.UserID == userID {
			now := time.Now()
			s.RevokedAt = &now
		}
	}
	return nil
}

func (m *memorySessions) CountByUserID(ctx context.Context, userID string) (int64, error) {
	s, _ := m.FindByUserID(ctx, userID)
	return int64(len(s)), nil
}

func (m *memorySessions) DeleteOldestByUserID(ctx context.Context, userID string) error {
	s, _ := m.FindByUserID(ctx, userID)
	if len(s) == 0 {
		return nil
	}
	m.evicted = append(m.evicted, s[0].ID)
	delete(m.sessions, s[0].ID)
	return nil
}

// mockTokenIssuer returns a token derived from the session ID.
type mockTokenIssuer struct {
	err error
}

func (m *mockTokenIssuer) GenerateToken(userID, sessionID string) (string, time.Time, error) {
	if m.err != nil {
		return "", time.Time{}, m.err
	}
	return "token-" + sessionID, time.Now().Add(time.Hour), nil
}

func hashPassword(t *testing.T, pw string) string {
	t.Helper()

	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestAuthUsecase_Signup(t *testing.T) {
	t.Parallel()

	users := newMockUserRepository()
	uc := NewAuthUsecase(users, newMemorySessions(), &mockTokenIssuer{})

	u, err := uc.Signup(context.Background(), SignupInput{Email: "  New@Example.com ", Password: "password123"})
	require.NoError(t, err)

	assert.Equal(t, "new@example.com", u.Email)
	assert.Equal(t, "new", u.Name, "name defaults to the email local part")
	assert.Equal(t, userentity.RoleUser, u.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("password123")))
}

// TestAuthUsecase_Signup_Invalid は入力検証エラーと重複メールを検証します。
func TestAuthUsecase_Signup_Invalid(t *testing.T) {
	t.Parallel()

	existing := &userentity.User{ID: "u1", Email: "taken@example.com"}

	tests := []struct {
		name      string
		in        SignupInput
		wantField string
		wantErr   error
	}{
		{name: "short password", in: SignupInput{Email: "a@example.com", Password: "short"}, wantField: "password"},
		{name: "invalid email", in: SignupInput{Email: "not-an-email", Password: "password123"}, wantField: "email"},
		{name: "duplicate email", in: SignupInput{Email: "TAKEN@example.com", Password: "password123"}, wantErr: userusecase.ErrEmailAlreadyExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			uc := NewAuthUsecase(newMockUserRepository(existing), newMemorySessions(), &mockTokenIssuer{})
			_, err := uc.Signup(context.Background(), tt.in)
			require.Error(t, err)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			var verr *validation.Error
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.wantField, verr.Fields[0].Field)
		})
	}
}

// TestAuthUsecase_Login はログイン成功時にセッションが作成され、トークンがそれを参照することを検証します。
func TestAuthUsecase_Login(t *testing.T) {
	t.Parallel()

	user := &userentity.User{ID: "u1", Email: "user@example.com", PasswordHash: hashPassword(t, "password123")}
	sessions := newMemorySessions()
	uc := NewAuthUsecase(newMockUserRepository(user), sessions, &mockTokenIssuer{})

	res, err := uc.Login(context.Background(), LoginInput{Email: "USER@example.com", Password: "password123", UserAgent: "ua", IPAddress: "10.0.0.1"})
	require.NoError(t, err)

	assert.Equal(t, "token-"+res.Session.ID, res.Token)
	assert.Len(t, res.Session.ID, 64)
	assert.Equal(t, "u1", res.Session.UserID)
	assert.Equal(t, "ua", res.Session.UserAgent)
	assert.Equal(t, res.ExpiresAt, res.Session.ExpiresAt)
	assert.Contains(t, sessions.sessions, res.Session.ID)
}

func TestAuthUsecase_Login_InvalidCredentials(t *testing.T) {
	t.Parallel()

	user := &userentity.User{ID: "u1", Email: "user@example.com", PasswordHash: hashPassword(t, "password123")}

	tests := []struct {
		name  string
		email string
		pw    string
	}{
		{"wrong password", "user@example.com", "wrong-password"},
		{"unknown user", "ghost@example.com", "password123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sessions := newMemorySessions()
			uc := NewAuthUsecase(newMockUserRepository(user), sessions, &mockTokenIssuer{})

			_, err := uc.Login(context.Background(), LoginInput{Email: tt.email, Password: tt.pw})
			assert.ErrorIs(t, err, ErrInvalidCredentials)
			assert.Empty(t, sessions.sessions)
		})
	}
}

func TestAuthUsecase_Login_Failures(t *testing.T) {
	t.Parallel()

	user := &userentity.User{ID: "u1", Email: "user@example.com", PasswordHash: hashPassword(t, "password123")}

	users := newMockUserRepository(user)
	users.findErr = errors.New("db down")
	_, err := NewAuthUsecase(users, newMemorySessions(), &mockTokenIssuer{}).
		Login(context.Background(), LoginInput{Email: "user@example.com", Password: "password123"})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)

	sessions := newMemorySessions()
	_, err = NewAuthUsecase(newMockUserRepository(user), sessions, &mockTokenIssuer{err: errors.New("no secret")}).
		Login(context.Background(), LoginInput{Email: "user@example.com", Password: "password123"})
	assert.Error(t, err)
	assert.Empty(t, sessions.sessions)
}

// TestAuthUsecase_Login_EvictsOldestSession はセッション数が上限に達すると最も古いものを削除することを検証します。
func TestAuthUsecase_Login_EvictsOldestSession(t *testing.T) {
	t.Parallel()

	user := &userentity.User{ID: "u1", Email: "user@example.com", PasswordHash: hashPassword(t, "password123")}
	sessions := newMemorySessions()
	base := time.Now().Add(-time.Hour)
	for i := 0; i < maxSessionsPerUser; i++ {
		id := string(rune('a' + i))
		sessions.sessions[id] = &entity.Session{ID: id, UserID: "u1", CreatedAt: base.Add(time.Duration(i) * time.Minute), ExpiresAt: time.Now().Add(time.Hour)}
	}
	uc := NewAuthUsecase(newMockUserRepository(user), sessions, &mockTokenIssuer{})

	_, err := uc.Login(context.Background(), LoginInput{Email: "user@example.com", Password: "password123"})
	require.NoError(t, err)

	assert.Equal(t, []string{"a"}, sessions.evicted)
	count, _ := sessions.CountByUserID(context.Background(), "u1")
	assert.Equal(t, int64(maxSessionsPerUser), count)
}

// TestAuthUsecase_ValidateSession は失効・期限切れ・他人のセッションを拒否することを検証します。
func TestAuthUsecase_ValidateSession(t *testing.T) {
	t.Parallel()

	past := time.Now().Add(-time.Minute)
	sessions := newMemorySessions()
	sessions.sessions["active"] = &entity.Session{ID: "active", UserID: "u1", ExpiresAt: time.Now().Add(time.Hour)}
	sessions.sessions["revoked"] = &entity.Session{ID: "revoked", UserID: "u1", ExpiresAt: time.Now().Add(time.Hour), RevokedAt: &past}
	sessions.sessions["expired"] = &entity.Session{ID: "expired", UserID: "u1", ExpiresAt: past}
	uc := NewAuthUsecase(newMockUserRepository(), sessions, &mockTokenIssuer{})

	tests := []struct {
		name      string
		sessionID string
		userID    string
		wantErr   error
	}{
		{"active", "active", "u1", nil},
		{"revoked", "revoked", "u1", ErrSessionRevoked},
		{"expired", "expired", "u1", ErrSessionExpired},
		{"other user", "active", "u2", ErrSessionMismatch},
		{"missing", "missing", "u1", ErrSessionNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := uc.ValidateSession(context.Background(), tt.sessionID, tt.userID)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAuthUsecase_SignoutAndCurrentSession(t *testing.T) {
	t.Parallel()

	user := &userentity.User{ID: "u1", Email: "user@example.com"}
	sessions := newMemorySessions()
	sessions.sessions["s1"] = &entity.Session{ID: "s1", UserID: "u1", ExpiresAt: time.Now().Add(time.Hour)}
	sessions.sessions["s2"] = &entity.Session{ID: "s2", UserID: "u1", ExpiresAt: time.Now().Add(time.Hour)}
	uc := NewAuthUsecase(newMockUserRepository(user), sessions, &mockTokenIssuer{})
	ctx := context.Background()

	s, u, err := uc.CurrentSession(ctx, "s1", "u1")
	require.NoError(t, err)
	assert.Equal(t, "s1", s.ID)
	assert.Equal(t, "u1", u.ID)

	require.NoError(t, uc.Signout(ctx, "s1"))
	assert.ErrorIs(t, uc.ValidateSession(ctx, "s1", "u1"), ErrSessionRevoked)
	assert.NoError(t, uc.Signout(ctx, "does-not-exist"), "signout is idempotent")

	require.NoError(t, uc.SignoutAll(ctx, "u1"))
	assert.ErrorIs(t, uc.ValidateSession(ctx, "s2", "u1"), ErrSessionRevoked)
}
