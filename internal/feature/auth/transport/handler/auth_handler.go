// Package handler はauthフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"profile_backend/internal/api"
	"profile_backend/internal/feature/auth/domain/entity"
	"profile_backend/internal/feature/auth/transport/http/dto"
	"profile_backend/internal/feature/auth/usecase"
	userentity "profile_backend/internal/feature/user/domain/entity"
	userusecase "profile_backend/internal/feature/user/usecase"
	"profile_backend/internal/platform/http/respond"
	jwtmw "profile_backend/internal/platform/jwt"
)

// AuthUsecase は認証操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type AuthUsecase interface {
	Signup(ctx context.Context, in usecase.SignupInput) (*userentity.User, error)
	Login(ctx context.Context, in usecase.LoginInput) (*usecase.LoginResult, error)
	Signout(ctx context.Context, sessionID string) error
	CurrentSession(ctx context.Context, sessionID, userID string) (*entity.Session, *userentity.User, error)
}

// CookieConfig はセッションCookieの属性です。
type CookieConfig struct {
	Secure bool
	Domain string
}

// AuthHandler は認証操作のHTTPリクエストを処理します。
type AuthHandler struct {
	auth   AuthUsecase
	cookie CookieConfig
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成します。
func NewAuthHandler(auth AuthUsecase, cookie CookieConfig) *AuthHandler {
	return &AuthHandler{auth: auth, cookie: cookie}
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(jwtmw.SessionCookieName, token, maxAge, "/", h.cookie.Domain, h.cookie.Secure, true)
}

func (h *AuthHandler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(jwtmw.SessionCookieName, "", -1, "/", h.cookie.Domain, h.cookie.Secure, true)
}

// Signup はユーザー登録APIエンドポイントを処理します。
// - バリデーションエラー時は400を返却
// - メール重複時は409を返却（詳細は公開しない）
// - 成功時は201とユーザーのプロフィールを返却
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("signup validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request", Code: api.CodeValidationFailed})
		return
	}

	user, err := h.auth.Signup(c.Request.Context(), usecase.SignupInput{Email: req.Email, Password: req.Password, Name: req.Name})
	if err != nil {
		if errors.Is(err, userusecase.ErrEmailAlreadyExists) {
			// ユーザー列挙攻撃を防止するため、実際のエラーを公開しない
			slog.Warn("signup failed", "error", err, "remote_addr", c.ClientIP())
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: "signup failed", Code: api.CodeConflict})
			return
		}
		respond.Error(c, err, "signup failed")
		return
	}

	slog.Info("user signup successful", "user_id", user.ID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusCreated, api.UserEnvelope{User: user.Profile()})
}

// Login はユーザーログインAPIエンドポイントを処理します。
// - バリデーションエラー時は400を返却
// - 認証失敗時は401を返却
// - 成功時はトークンとセッションCookieを返却
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("login validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request", Code: api.CodeValidationFailed})
		return
	}

	res, err := h.auth.Login(c.Request.Context(), usecase.LoginInput{
		Email:     req.Email,
		Password:  req.Password,
		UserAgent: c.Request.UserAgent(),
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidCredentials) {
			slog.Warn("login failed", "remote_addr", c.ClientIP())
		}
		respond.Error(c, err, "login failed")
		return
	}

	h.setSessionCookie(c, res.Token, res.ExpiresAt)
	slog.Info("user login successful", "user_id", res.User.ID, "session_id", res.Session.ID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, api.TokenResponse{
		Token:     res.Token,
		ExpiresAt: userentity.FormatTimestamp(res.ExpiresAt),
		User:      res.User.Profile(),
	})
}

// Signout は現在のセッションを失効させ、セッションCookieを削除します。AuthRequired の後で使います。
func (h *AuthHandler) Signout(c *gin.Context) {
	p, ok := jwtmw.PrincipalFrom(c)
	if !ok {
		respond.Error(c, userusecase.ErrUnauthorized, "signout failed")
		return
	}
	if err := h.auth.Signout(c.Request.Context(), p.SessionID); err != nil {
		respond.Error(c, err, "signout failed")
		return
	}

	h.clearSessionCookie(c)
	slog.Info("user signed out", "user_id", p.UserID, "session_id", p.SessionID)
	c.JSON(http.StatusOK, api.MessageResponse{Message: "Signed out"})
}

// Session は現在のセッションとユーザーを返します。AuthRequired の後で使います。
func (h *AuthHandler) Session(c *gin.Context) {
	p, ok := jwtmw.PrincipalFrom(c)
	if !ok {
		respond.Error(c, userusecase.ErrUnauthorized, "failed to load session")
		return
	}
	s, user, err := h.auth.CurrentSession(c.Request.Context(), p.SessionID, p.UserID)
	if err != nil {
		if errors.Is(err, userusecase.ErrUserNotFound) {
			err = userusecase.ErrUnauthorized
		}
		respond.Error(c, err, "failed to load session")
		return
	}

	c.JSON(http.StatusOK, api.SessionResponse{
		User: user.Profile(),
		Session: api.SessionInfo{
			ID:        s.ID,
			UserAgent: s.UserAgent,
			IPAddress: s.IPAddress,
			CreatedAt: userentity.FormatTimestamp(s.CreatedAt),
			ExpiresAt: userentity.FormatTimestamp(s.ExpiresAt),
		},
	})
}
