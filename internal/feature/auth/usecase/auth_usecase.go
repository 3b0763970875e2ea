package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"profile_backend/internal/feature/auth/domain/entity"
	userentity "profile_backend/internal/feature/user/domain/entity"
	userusecase "profile_backend/internal/feature/user/usecase"
	"profile_backend/internal/platform/validation"
)

const (
	// maxSessionsPerUser はユーザーごとに同時に保持できるセッション数の上限です。
	maxSessionsPerUser = 5

	// sessionIDBytes はセッションIDの乱数バイト数です（hexで64文字）。
	sessionIDBytes = 32
)

// dummyHash はユーザーが存在しない場合にも比較時間を揃えるためのbcryptハッシュです。
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// UserRepository はユーザーエンティティの永続化層を抽象化します。
type UserRepository interface {
	// Create は新しいユーザーを永続化します。メールアドレスが重複する場合はErrEmailAlreadyExistsを返します。
	Create(ctx context.Context, user *userentity.User) error

	// FindByEmail はメールアドレスでユーザーを取得します。存在しない場合はErrUserNotFoundを返します。
	FindByEmail(ctx context.Context, email string) (*userentity.User, error)

	// FindByID はIDでユーザーを取得します。存在しない場合はErrUserNotFoundを返します。
	FindByID(ctx context.Context, id string) (*userentity.User, error)
}

// TokenIssuer はセッショントークンの発行を抽象化します。
type TokenIssuer interface {
	// GenerateToken は署名済みトークンと有効期限を返します。
	GenerateToken(userID, sessionID string) (string, time.Time, error)
}

// SignupInput はユーザー登録の入力です。
type SignupInput struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"max=100"`
}

// LoginInput はログインの入力です。
type LoginInput struct {
	Email     string
	Password  string
	UserAgent string
	IPAddress string
}

// LoginResult はログイン成功時の結果です。
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *userentity.User
	Session   *entity.Session
}

// AuthUsecase は登録・ログイン・ログアウト・セッション検証を実装します。
type AuthUsecase struct {
	users    UserRepository
	sessions SessionRepository
	tokens   TokenIssuer
	now      func() time.Time
}

// NewAuthUsecase はAuthUsecaseの新しいインスタンスを生成します。
func NewAuthUsecase(users UserRepository, sessions SessionRepository, tokens TokenIssuer) *AuthUsecase {
	return &AuthUsecase{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		now:      time.Now,
	}
}

// normalizeEmail はメールアドレスを比較用に正規化します。
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// newSessionID は暗号論的乱数からセッションIDを生成します。
func newSessionID() (string, error) {
	b := make([]byte, sessionIDBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Signup はハッシュ化されたパスワードで新規ユーザーを登録します。ロールは常にuserです。
// 名前が未指定の場合はメールアドレスのローカル部を使います。
func (u *AuthUsecase) Signup(ctx context.Context, in SignupInput) (*userentity.User, error) {
	in.Email = normalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}
	if in.Name == "" {
		in.Name, _, _ = strings.Cut(in.Email, "@")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user := &userentity.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hashed),
		Role:         userentity.RoleUser,
	}
	if err := u.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login はユーザーを認証し、新しいセッションとトークンを発行します。
// タイミング攻撃を防止するため、ユーザーが存在しない場合でもbcrypt比較を実行します。
// セッション数が上限に達している場合は最も古いセッションを削除します。
func (u *AuthUsecase) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	user, err := u.users.FindByEmail(ctx, normalizeEmail(in.Email))
	if err != nil && !errors.Is(err, userusecase.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	passwordHash := dummyHash
	if err == nil {
		passwordHash = user.PasswordHash
	}
	compareErr := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(in.Password))
	if err != nil || compareErr != nil {
		return nil, ErrInvalidCredentials
	}

	count, err := u.sessions.CountByUserID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count sessions: %w", err)
	}
	for ; count >= maxSessionsPerUser; count-- {
		if err := u.sessions.DeleteOldestByUserID(ctx, user.ID); err != nil {
			return nil, fmt.Errorf("failed to evict session: %w", err)
		}
	}

	sessionID, err := newSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session id: %w", err)
	}
	token, expiresAt, err := u.tokens.GenerateToken(user.ID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	session := &entity.Session{
		ID:        sessionID,
		UserID:    user.ID,
		UserAgent: in.UserAgent,
		IPAddress: in.IPAddress,
		CreatedAt: u.now(),
		ExpiresAt: expiresAt,
	}
	if err := u.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user, Session: session}, nil
}

// Signout はセッションを失効させます。既に存在しないセッションは成功として扱います。
func (u *AuthUsecase) Signout(ctx context.Context, sessionID string) error {
	if err := u.sessions.Revoke(ctx, sessionID); err != nil && !errors.Is(err, ErrSessionNotFound) {
		return err
	}
	return nil
}

// SignoutAll はユーザーの全セッションを失効させます。
func (u *AuthUsecase) SignoutAll(ctx context.Context, userID string) error {
	return u.sessions.RevokeAllByUserID(ctx, userID)
}

// session はセッションを取得し、有効性と所有者を検証します。
func (u *AuthUsecase) session(ctx context.Context, sessionID, userID string) (*entity.Session, error) {
	s, err := u.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	switch {
	case s.UserID != userID:
		return nil, ErrSessionMismatch
	case s.IsRevoked():
		return nil, ErrSessionRevoked
	case s.IsExpired():
		return nil, ErrSessionExpired
	}
	return s, nil
}

// ValidateSession はセッションが存在し、有効で、userIDのものであるかを検証します。
func (u *AuthUsecase) ValidateSession(ctx context.Context, sessionID, userID string) error {
	_, err := u.session(ctx, sessionID, userID)
	return err
}

// CurrentSession は検証済みのセッションとそのユーザーを返します。
func (u *AuthUsecase) CurrentSession(ctx context.Context, sessionID, userID string) (*entity.Session, *userentity.User, error) {
	s, err := u.session(ctx, sessionID, userID)
	if err != nil {
		return nil, nil, err
	}
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return s, user, nil
}
