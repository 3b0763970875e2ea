// Package ratelimit はRedisの固定ウィンドウカウンタによるレート制限を提供します。
package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// Counter はレート制限に必要なカウンタ操作です。cache.Storeが満たします。
type Counter interface {
	IncrementBy(ctx context.Context, key string, n int64) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	TTL(ctx context.Context, key string) (time.Duration, error)
}

// Rule はウィンドウあたりの上限です。
type Rule struct {
	Limit  int64
	Window time.Duration
}

// String はRuleを "<limit>/<window>" 形式で返します。
func (r Rule) String() string {
	return fmt.Sprintf("%d/%s", r.Limit, r.Window)
}

// ParseRule は "5/15m" のような文字列をRuleに変換します。
func ParseRule(s string) (Rule, error) {
	limitStr, windowStr, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return Rule{}, fmt.Errorf("invalid rate limit rule %q: want <limit>/<window>", s)
	}
	limit, err := strconv.ParseInt(strings.TrimSpace(limitStr), 10, 64)
	if err != nil || limit <= 0 {
		return Rule{}, fmt.Errorf("invalid rate limit %q: limit must be a positive integer", s)
	}
	window, err := time.ParseDuration(strings.TrimSpace(windowStr))
	if err != nil || window < time.Second {
		return Rule{}, fmt.Errorf("invalid rate limit %q: window must be a duration of at least 1s", s)
	}
	return Rule{Limit: limit, Window: window}, nil
}

// Decision は1回の判定結果です。
type Decision struct {
	Allowed    bool
	Count      int64
	Limit      int64
	Remaining  int64
	RetryAfter time.Duration
}

// RetryAfterSeconds はRetry-Afterヘッダー用に秒数を切り上げて返します。
func (d Decision) RetryAfterSeconds() int {
	secs := int((d.RetryAfter + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}

// Limiter は1つのルートクラスの固定ウィンドウ制限です。
type Limiter struct {
	counter Counter
	class   string
	rule    Rule
}

// NewLimiter はLimiterを生成します。classはキーの名前空間として使われます。
func NewLimiter(counter Counter, class string, rule Rule) *Limiter {
	return &Limiter{counter: counter, class: class, rule: rule}
}

// Class はルートクラス名を返します。
func (l *Limiter) Class() string { return l.class }

// Rule は適用中のルールを返します。
func (l *Limiter) Rule() Rule { return l.rule }

// Key は識別子に対するRedisキーを返します。
func (l *Limiter) Key(identity string) string {
	return "rl:" + l.class + ":" + identity
}

// allow は判定をスキップした場合の結果です。
func (l *Limiter) allow() Decision {
	return Decision{Allowed: true, Limit: l.rule.Limit, Remaining: l.rule.Limit}
}

// Allow はidentityにpointsを加算し、上限以内かを判定します。
//   - 最初の加算（結果がpointsと等しい）でウィンドウの有効期限を設定します。
//   - 上限超過時は残りTTLをRetryAfterとして返します。TTLが取得できない場合はウィンドウ全体を返します。
//   - バックエンドが利用できない、またはエラーの場合は許可します（フェイルオープン）。
func (l *Limiter) Allow(ctx context.Context, identity string, points int64) Decision {
	if points <= 0 {
		points = 1
	}
	key := l.Key(identity)

	count, err := l.counter.IncrementBy(ctx, key, points)
	if err != nil {
		slog.Warn("rate limiter unavailable, allowing request", "class", l.class, "error", err)
		return l.allow()
	}

	if count == points {
		if err := l.counter.Expire(ctx, key, l.rule.Window); err != nil {
			slog.Warn("rate limiter failed to set window", "class", l.class, "key", key, "error", err)
		}
	}

	d := Decision{
		Allowed:   count <= l.rule.Limit,
		Count:     count,
		Limit:     l.rule.Limit,
		Remaining: max(l.rule.Limit-count, 0),
	}
	if d.Allowed {
		return d
	}

	ttl, err := l.counter.TTL(ctx, key)
	switch {
	case err != nil:
		slog.Warn("rate limiter failed to read window", "class", l.class, "key", key, "error", err)
		ttl = l.rule.Window
	case ttl == -1:
		// カウンタに期限がない場合は張り直す
		if err := l.counter.Expire(ctx, key, l.rule.Window); err != nil {
			slog.Warn("rate limiter failed to repair window", "class", l.class, "key", key, "error", err)
		}
		ttl = l.rule.Window
	case ttl <= 0:
		ttl = l.rule.Window
	}
	d.RetryAfter = ttl

	slog.Info("rate limit exceeded", "class", l.class, "key", key, "count", count, "limit", l.rule.Limit)
	return d
}
