// Package respond はユースケースのエラーをHTTPレスポンスに変換します。
package respond

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"profile_backend/internal/api"
	authusecase "profile_backend/internal/feature/auth/usecase"
	userusecase "profile_backend/internal/feature/user/usecase"
	"profile_backend/internal/platform/imaging"
	"profile_backend/internal/platform/validation"
)

// Status はエラーに対応するHTTPステータスとレスポンスボディを返します。
// 未知のエラーは500とし、fallbackをメッセージに使います。
//   - *validation.Error: 400（details付き）
//   - 未認証・権限不足・セッション無効: 401（403は使いません）
//   - ユーザー不在: 404
//   - メールアドレス重複: 409
//   - 画像サイズ超過: 413
//   - ストレージ未設定: 503
func Status(err error, fallback string) (int, api.ErrorResponse) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		details := make([]api.FieldError, len(verr.Fields))
		for i, f := range verr.Fields {
			details[i] = api.FieldError{Field: f.Field, Message: f.Message}
		}
		return http.StatusBadRequest, api.ErrorResponse{Error: "Validation failed", Code: api.CodeValidationFailed, Details: details}
	case errors.Is(err, authusecase.ErrInvalidCredentials):
		return http.StatusUnauthorized, api.ErrorResponse{Error: "invalid email or password", Code: api.CodeUnauthorized}
	case errors.Is(err, userusecase.ErrUnauthorized),
		errors.Is(err, userusecase.ErrForbidden),
		errors.Is(err, authusecase.ErrSessionNotFound),
		errors.Is(err, authusecase.ErrSessionRevoked),
		errors.Is(err, authusecase.ErrSessionExpired),
		errors.Is(err, authusecase.ErrSessionMismatch):
		return http.StatusUnauthorized, api.ErrorResponse{Error: "Unauthorized", Code: api.CodeUnauthorized}
	case errors.Is(err, userusecase.ErrUserNotFound):
		return http.StatusNotFound, api.ErrorResponse{Error: "User not found", Code: api.CodeNotFound}
	case errors.Is(err, userusecase.ErrEmailAlreadyExists):
		return http.StatusConflict, api.ErrorResponse{Error: "Email already registered", Code: api.CodeConflict}
	case errors.Is(err, imaging.ErrImageTooLarge):
		return http.StatusRequestEntityTooLarge, api.ErrorResponse{Error: "Image too large", Code: api.CodeValidationFailed}
	case errors.Is(err, userusecase.ErrStorageUnavailable):
		return http.StatusServiceUnavailable, api.ErrorResponse{Error: "Storage is not configured", Code: api.CodeUnavailable}
	default:
		return http.StatusInternalServerError, api.ErrorResponse{Error: fallback, Code: api.CodeInternal}
	}
}

// Error はエラーをレスポンスとして書き込みます。500の場合は詳細をログにのみ出力します。
func Error(c *gin.Context, err error, fallback string) {
	status, body := Status(err, fallback)
	if status >= http.StatusInternalServerError {
		slog.Error(fallback, "error", err, "method", c.Request.Method, "path", c.FullPath())
	}
	c.AbortWithStatusJSON(status, body)
}
