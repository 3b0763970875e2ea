package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"profile_backend/internal/api"
	"profile_backend/internal/feature/user/domain/entity"
	"profile_backend/internal/feature/user/usecase"
	jwtmw "profile_backend/internal/platform/jwt"
)

// ContextRole はRequireRoleが解決したロールを保存するGinコンテキストのキーです。
const ContextRole = "role"

// RoleResolver はユーザーのロールをストアから解決します。*usecase.DirectoryUsecase が満たします。
type RoleResolver interface {
	RoleOf(ctx context.Context, userID string) (entity.Role, error)
}

// RequireRole は呼び出し元のロールがrolesに含まれる場合のみ通します。AuthRequired の後で使います。
// ロールが許可されない場合も401を返します（403は使いません）。
func RequireRole(resolver RoleResolver, roles ...entity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := jwtmw.PrincipalFrom(c)
		if !ok {
			abortUnauthorized(c)
			return
		}

		role, err := resolver.RoleOf(c.Request.Context(), p.UserID)
		if err != nil {
			if errors.Is(err, usecase.ErrUnauthorized) {
				abortUnauthorized(c)
				return
			}
			slog.Error("failed to resolve role", "user_id", p.UserID, "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Internal server error", Code: api.CodeInternal})
			return
		}

		if !slices.Contains(roles, role) {
			slog.Info("role not allowed", "user_id", p.UserID, "role", role, "path", c.FullPath())
			abortUnauthorized(c)
			return
		}

		c.Set(ContextRole, role)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Unauthorized", Code: api.CodeUnauthorized})
}
