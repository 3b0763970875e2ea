package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestLoadConfig は環境変数による上書きと、不正値の無視を検証します。
func TestLoadConfig(t *testing.T) {
	t.Setenv("RATE_LIMIT_AUTH", "3/1m")
	t.Setenv("RATE_LIMIT_READ", "not-a-rule")
	t.Setenv("RATE_LIMIT_WRITE", "")
	t.Setenv("RATE_LIMIT_API", "")
	t.Setenv("RATE_LIMIT_USER_LOOKUP", "20/2m")

	cfg := LoadConfig()

	assert.Equal(t, Rule{Limit: 3, Window: time.Minute}, cfg.Rules[ClassAuth])
	assert.Equal(t, DefaultRules[ClassRead], cfg.Rules[ClassRead])
	assert.Equal(t, DefaultRules[ClassWrite], cfg.Rules[ClassWrite])
	assert.Equal(t, Rule{Limit: 20, Window: 2 * time.Minute}, cfg.Rules[ClassUserLookup])
}

func TestNewLimiters(t *testing.T) {
	t.Parallel()

	ls := NewLimiters(nil, Config{Rules: map[string]Rule{ClassAuth: {Limit: 1, Window: time.Second}}})

	assert.Equal(t, int64(1), ls.Auth.Rule().Limit)
	assert.Equal(t, DefaultRules[ClassRead], ls.Read.Rule(), "missing class falls back to default")
	assert.Equal(t, ClassUserLookup, ls.UserLookup.Class())
	assert.Equal(t, ClassWrite, ls.Write.Class())
	assert.Equal(t, ClassAPI, ls.API.Class())
}
