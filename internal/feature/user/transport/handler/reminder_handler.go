package handler

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"profile_backend/internal/api"
)

// ReminderRunner はリマインドメールのバッチを実行します。
type ReminderRunner interface {
	RunAvatarReminders(ctx context.Context) (int, error)
}

// ReminderHandler はスケジューラーから呼ばれるリマインドジョブを処理します。
type ReminderHandler struct {
	runner ReminderRunner
	secret string
}

// NewReminderHandler はReminderHandlerを生成します。secretが空の場合、全てのリクエストを拒否します。
func NewReminderHandler(runner ReminderRunner, secret string) *ReminderHandler {
	return &ReminderHandler{runner: runner, secret: secret}
}

func (h *ReminderHandler) authorized(r *http.Request) bool {
	if h.secret == "" {
		return false
	}
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.secret)) == 1
}

// AvatarReminder はプロフィール画像未設定のユーザーにリマインドを送信します。
//   - Authorization: Bearer $CRON_SECRET が一致しない場合は401
//   - 成功時は送信件数を返却
//
// エンドポイント: POST /api/cron/avatar-reminder
func (h *ReminderHandler) AvatarReminder(c *gin.Context) {
	if !h.authorized(c.Request) {
		slog.Warn("cron request rejected", "remote_addr", c.ClientIP())
		c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Unauthorized", Code: api.CodeUnauthorized})
		return
	}

	sent, err := h.runner.RunAvatarReminders(c.Request.Context())
	if err != nil {
		slog.Error("avatar reminder job failed", "error", err, "sent", sent)
		c.AbortWithStatusJSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to send reminders", Code: api.CodeInternal})
		return
	}
	c.JSON(http.StatusOK, api.SentResponse{Success: true, Sent: sent})
}
