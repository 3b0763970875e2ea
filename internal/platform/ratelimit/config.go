package ratelimit

import (
	"log/slog"
	"os"
	"time"
)

// ルートクラス名です。クラスごとにキーの名前空間が分かれます。
const (
	ClassAuth       = "auth"
	ClassWrite      = "write"
	ClassRead       = "read"
	ClassAPI        = "api"
	ClassUserLookup = "user_lookup"
)

// DefaultRules はクラスごとの既定ルールです。
var DefaultRules = map[string]Rule{
	ClassAuth:       {Limit: 5, Window: 15 * time.Minute},
	ClassWrite:      {Limit: 50, Window: 15 * time.Minute},
	ClassRead:       {Limit: 200, Window: 15 * time.Minute},
	ClassAPI:        {Limit: 100, Window: 15 * time.Minute},
	ClassUserLookup: {Limit: 10, Window: 60 * time.Second},
}

var envKeys = map[string]string{
	ClassAuth:       "RATE_LIMIT_AUTH",
	ClassWrite:      "RATE_LIMIT_WRITE",
	ClassRead:       "RATE_LIMIT_READ",
	ClassAPI:        "RATE_LIMIT_API",
	ClassUserLookup: "RATE_LIMIT_USER_LOOKUP",
}

// Config はクラスごとのルールです。
type Config struct {
	Rules map[string]Rule
}

// LoadConfig は RATE_LIMIT_<CLASS>=<limit>/<window> 形式の環境変数を読み込みます。
// 未設定や不正な値のクラスは既定ルールを使います。
func LoadConfig() Config {
	rules := make(map[string]Rule, len(DefaultRules))
	for class, def := range DefaultRules {
		rules[class] = def
		v := os.Getenv(envKeys[class])
		if v == "" {
			continue
		}
		r, err := ParseRule(v)
		if err != nil {
			slog.Warn("ignoring invalid rate limit override", "env", envKeys[class], "error", err)
			continue
		}
		rules[class] = r
	}
	return Config{Rules: rules}
}

// Limiters はルートクラスごとのLimiterです。
type Limiters struct {
	Auth       *Limiter
	Write      *Limiter
	Read       *Limiter
	API        *Limiter
	UserLookup *Limiter
}

// NewLimiters はConfigから全クラスのLimiterを生成します。
func NewLimiters(counter Counter, cfg Config) *Limiters {
	rule := func(class string) Rule {
		if r, ok := cfg.Rules[class]; ok {
			return r
		}
		return DefaultRules[class]
	}
	return &Limiters{
		Auth:       NewLimiter(counter, ClassAuth, rule(ClassAuth)),
		Write:      NewLimiter(counter, ClassWrite, rule(ClassWrite)),
		Read:       NewLimiter(counter, ClassRead, rule(ClassRead)),
		API:        NewLimiter(counter, ClassAPI, rule(ClassAPI)),
		UserLookup: NewLimiter(counter, ClassUserLookup, rule(ClassUserLookup)),
	}
}
