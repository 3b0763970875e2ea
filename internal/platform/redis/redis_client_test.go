package redis

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadConfig は環境変数からの設定読み込みを検証します。
func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		wantAddr string
		wantURL  string
		wantDB   int
	}{
		{
			name:     "host and port",
			env:      map[string]string{"REDIS_HOST": "cache", "REDIS_PORT": "6380", "REDIS_URL": "", "REDIS_DB": "2"},
			wantAddr: "cache:6380",
			wantDB:   2,
		},
		{
			name:     "host without port defaults to 6379",
			env:      map[string]string{"REDIS_HOST": "cache", "REDIS_PORT": "", "REDIS_URL": "", "REDIS_DB": ""},
			wantAddr: "cache:6379",
		},
		{
			name:    "url only",
			env:     map[string]string{"REDIS_HOST": "", "REDIS_PORT": "", "REDIS_URL": "redis://localhost:6379/1", "REDIS_DB": ""},
			wantURL: "redis://localhost:6379/1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg := LoadConfig()
			assert.Equal(t, tt.wantAddr, cfg.Addr)
			assert.Equal(t, tt.wantURL, cfg.URL)
			assert.Equal(t, tt.wantDB, cfg.DB)
			assert.True(t, cfg.Configured())
		})
	}
}

func TestNewRedisClient_NotConfigured(t *testing.T) {
	t.Parallel()

	rdb, err := NewRedisClient(Config{})
	assert.Error(t, err)
	assert.Nil(t, rdb)
}

func TestNewRedisClient_InvalidURL(t *testing.T) {
	t.Parallel()

	rdb, err := NewRedisClient(Config{URL: "http://not-redis"})
	assert.Error(t, err)
	assert.Nil(t, rdb)
}

func TestNewRedisClient_Success(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)

	rdb, err := NewRedisClient(Config{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	assert.NotNil(t, rdb)
}

func TestNewRedisClient_URL(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)

	rdb, err := NewRedisClient(Config{URL: "redis://" + mr.Addr() + "/0"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	rdb, err := NewRedisClient(Config{Addr: addr})
	assert.Error(t, err)
	assert.Nil(t, rdb)
}
