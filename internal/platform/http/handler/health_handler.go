// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"profile_backend/internal/api"
	"profile_backend/internal/feature/user/domain/entity"
)

const pingTimeout = 2 * time.Second

// Pinger は依存先への疎通確認です。*cache.Store が満たします。
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc は関数をPingerとして扱うためのアダプターです。
type PingFunc func(ctx context.Context) error

// Ping はf(ctx)を呼び出します。
func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthHandler はヘルスチェックとRedisの疎通確認を処理します。
type HealthHandler struct {
	db    Pinger
	redis Pinger
	now   func() time.Time
}

// NewHealthHandler はHealthHandlerを生成します。redisがnilの場合はRedis未設定として扱います。
func NewHealthHandler(db, redis Pinger) *HealthHandler {
	return &HealthHandler{db: db, redis: redis, now: time.Now}
}

func ping(ctx context.Context, p Pinger) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return p.Ping(ctx)
}

// Health はサービスヘルスチェック用の /healthz エンドポイントを処理します。
// データベースに到達できない場合は503を返します。Redisは任意のため、失敗しても200のままです。
func (h *HealthHandler) Health(c *gin.Context) {
	// 明示的にキャッシュを防止
	c.Header("Cache-Control", "no-store")

	switch c.Request.Method {
	case http.MethodOptions:
		c.Status(http.StatusNoContent)
		return
	case http.MethodHead:
		if h.db != nil && ping(c.Request.Context(), h.db) != nil {
			c.Status(http.StatusServiceUnavailable)
			return
		}
		c.Status(http.StatusOK)
		return
	}

	status := http.StatusOK
	checks := gin.H{}
	if h.db != nil {
		checks["database"] = "ok"
		if err := ping(c.Request.Context(), h.db); err != nil {
			slog.Error("health check: database unreachable", "error", err)
			checks["database"] = "unavailable"
			status = http.StatusServiceUnavailable
		}
	}
	switch {
	case h.redis == nil:
		checks["redis"] = "disabled"
	case ping(c.Request.Context(), h.redis) != nil:
		checks["redis"] = "unavailable"
	default:
		checks["redis"] = "ok"
	}

	state := "ok"
	if status != http.StatusOK {
		state = "unavailable"
	}
	c.JSON(status, gin.H{"status": state, "checks": checks})
}

// RedisPing はRedisへの疎通結果を返します。Redis未設定や到達不能でも200で ok=false を返します。
//
// エンドポイント: GET /api/redis/ping
func (h *HealthHandler) RedisPing(c *gin.Context) {
	ok := h.redis != nil && ping(c.Request.Context(), h.redis) == nil
	c.JSON(http.StatusOK, api.PingResponse{OK: ok, Timestamp: entity.FormatTimestamp(h.now())})
}
