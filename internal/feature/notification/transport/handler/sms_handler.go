// Package handler はnotificationフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sony/gobreaker"

	"profile_backend/internal/api"
	"profile_backend/internal/platform/sms"
)

// SMSSender はSMSを送信します。*sms.Client が満たします。
type SMSSender interface {
	Send(ctx context.Context, to, text string) (*sms.Result, error)
}

// SendSMSReq は POST /api/send-sms のボディです。
type SendSMSReq struct {
	To   string `json:"to" binding:"required,e164"`
	Text string `json:"text" binding:"required,max=918"`
}

// SendSMSResponse は送信成功時のレスポンスです。
type SendSMSResponse struct {
	Success  bool        `json:"success"`
	Response *sms.Result `json:"response"`
}

// SMSHandler はSMS送信のHTTPリクエストを処理します。
type SMSHandler struct {
	sender SMSSender
}

// NewSMSHandler はSMSHandlerを生成します。senderがnilの場合、送信は503になります。
func NewSMSHandler(sender SMSSender) *SMSHandler {
	return &SMSHandler{sender: sender}
}

// Send は管理者からのSMS送信リクエストを処理します。
//   - to がE.164形式でない場合は400
//   - Vonage未設定、またはサーキットブレーカーが開いている場合は503
//   - Vonageが拒否した場合は502
//
// エンドポイント: POST /api/send-sms
func (h *SMSHandler) Send(c *gin.Context) {
	var req SendSMSReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "to (E.164) and text are required", Code: api.CodeValidationFailed})
		return
	}
	if h.sender == nil {
		c.JSON(http.StatusServiceUnavailable, api.ErrorResponse{Error: "SMS is not configured", Code: api.CodeUnavailable})
		return
	}

	res, err := h.sender.Send(c.Request.Context(), req.To, req.Text)
	if err != nil {
		switch {
		case errors.Is(err, sms.ErrRejected):
			slog.Warn("sms rejected", "error", err)
			c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: "SMS was rejected by the provider", Code: api.CodeInternal})
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests), errors.Is(err, sms.ErrNotConfigured):
			c.JSON(http.StatusServiceUnavailable, api.ErrorResponse{Error: "SMS is temporarily unavailable", Code: api.CodeUnavailable})
		default:
			slog.Error("sms send failed", "error", err)
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to send SMS", Code: api.CodeInternal})
		}
		return
	}

	slog.Info("sms sent", "message_id", res.MessageID, "status", res.Status)
	c.JSON(http.StatusOK, SendSMSResponse{Success: true, Response: res})
}
