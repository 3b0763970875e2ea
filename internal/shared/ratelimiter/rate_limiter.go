// Package ratelimiter はプロセス内で操作の頻度を制限するペーサーを提供します。
package ratelimiter

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// RateLimiter はinterval あたりlimit 回まで操作を通し、超えた場合は次の区間まで待機させます。
// 区間内ではlimit 回までまとめて通します（等間隔にはしません）。
// 複数のgoroutineから安全に利用できます。
type RateLimiter struct {
	mu        sync.Mutex
	limit     int
	interval  time.Duration
	count     int
	lastReset time.Time
	now       func() time.Time
}

// NewRateLimiter は新しいRateLimiterを生成します。limitが0以下の場合は制限しません。
func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:     limit,
		interval:  interval,
		lastReset: time.Now(),
		now:       time.Now,
	}
}

// reserve は枠を1つ確保し、確保前に待つべき時間を返します。
// 区間内の枠が埋まっている場合は次の区間の枠を予約し、その区間の開始までの時間を返します。
// lastReset は予約済みの最後の区間の開始時刻で、未来を指すことがあります。
func (rl *RateLimiter) reserve() time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if !now.Before(rl.lastReset.Add(rl.interval)) {
		rl.count = 0
		rl.lastReset = now
	}
	if rl.count >= rl.limit {
		rl.lastReset = rl.lastReset.Add(rl.interval)
		rl.count = 0
	}
	rl.count++

	return max(rl.lastReset.Sub(now), 0)
}

// Wait は上限に達している場合、次の区間まで待機します。
// ctxがキャンセルされた場合はctx.Err()を返します。
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if rl.limit <= 0 {
		return ctx.Err()
	}
	wait := rl.reserve()
	if wait <= 0 {
		return ctx.Err()
	}

	slog.Info("rate limit reached, waiting", "limit", rl.limit, "interval", rl.interval, "wait", wait)
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
