// Package handler はページ遷移のガード（リダイレクト）を処理します。
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"profile_backend/internal/feature/navigation/rolegate"
	"profile_backend/internal/feature/user/domain/entity"
	jwtmw "profile_backend/internal/platform/jwt"
)

// protectedPrefixes はセッションが必要なページです。
var protectedPrefixes = []string{"/admin", "/user", "/dashboard"}

// SessionAuthenticator はトークンからセッションを解決します。*jwtmw.Authenticator が満たします。
type SessionAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*jwtmw.Principal, error)
}

// RoleResolver はユーザーのロールをストアから解決します。
type RoleResolver interface {
	RoleOf(ctx context.Context, userID string) (entity.Role, error)
}

// PageDescriptor は表示が許可されたページの情報です。
type PageDescriptor struct {
	Page string `json:"page"`
	Role string `json:"role"`
}

// PageHandler はページのロールゲートを処理します。
type PageHandler struct {
	sessions SessionAuthenticator
	roles    RoleResolver
}

// NewPageHandler はPageHandlerを生成します。
func NewPageHandler(sessions SessionAuthenticator, roles RoleResolver) *PageHandler {
	return &PageHandler{sessions: sessions, roles: roles}
}

// EdgeGuard はトークンの有無だけでページ遷移を振り分けます。
//   - トークンを持って /login, /register に来た場合は /user へ
//   - トークン無しで保護されたページに来た場合は /login へ
func EdgeGuard() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		hasToken := jwtmw.TokenFromRequest(c.Request) != ""

		if hasToken && (path == "/login" || path == "/register") {
			c.Redirect(http.StatusFound, entity.RoleUser.HomePath())
			c.Abort()
			return
		}
		if !hasToken {
			for _, p := range protectedPrefixes {
				if strings.HasPrefix(path, p) {
					c.Redirect(http.StatusFound, rolegate.LoginPath)
					c.Abort()
					return
				}
			}
		}
		c.Next()
	}
}

// Public はログイン・登録ページのようにゲートを持たないページを返します。
func (h *PageHandler) Public(c *gin.Context) {
	c.JSON(http.StatusOK, PageDescriptor{Page: c.Request.URL.Path})
}

// Guard はrolesのいずれかを持つユーザーだけにページを表示します。
// サーバー側ではセッションとロールを同期的に解決するため、Loading状態にはなりません。
//   - Allowed: 200とページ情報
//   - RedirectingToHome / RedirectingToLogin: 302
//   - Blocked: 204（何も表示しない）
func (h *PageHandler) Guard(roles ...entity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		path := c.Request.URL.Path
		gate := rolegate.New(path, roles...)

		p, err := h.sessions.Authenticate(ctx, jwtmw.TokenFromRequest(c.Request))
		d := gate.SessionSettled(err == nil)
		var role entity.Role
		if err == nil {
			role, err = h.roles.RoleOf(ctx, p.UserID)
			if err != nil {
				slog.Warn("page guard: failed to resolve role", "user_id", p.UserID, "error", err)
			}
			d = gate.RoleSettled(string(role), err)
		}

		switch d.State {
		case rolegate.Allowed:
			c.Header("Cache-Control", "no-store")
			c.JSON(http.StatusOK, PageDescriptor{Page: path, Role: string(role)})
		case rolegate.RedirectingToHome, rolegate.RedirectingToLogin:
			c.Redirect(http.StatusFound, d.Location)
		default:
			c.Status(http.StatusNoContent)
		}
	}
}
