// Package redis は go-redis クライアントの生成と設定読み込みを提供します。
package redis

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config はRedis接続設定です。URLが設定されている場合はAddr/Passwordより優先されます。
type Config struct {
	URL      string
	Addr     string
	Password string
	DB       int
}

// LoadConfig は環境変数からRedis接続設定を読み込みます。
//   - REDIS_URL (例: redis://:pass@localhost:6379/0)
//   - REDIS_HOST / REDIS_PORT / REDIS_PASSWORD / REDIS_DB
func LoadConfig() Config {
	cfg := Config{
		URL:      os.Getenv("REDIS_URL"),
		Password: os.Getenv("REDIS_PASSWORD"),
	}
	host := os.Getenv("REDIS_HOST")
	port := os.Getenv("REDIS_PORT")
	if host != "" {
		if port == "" {
			port = "6379"
		}
		cfg.Addr = host + ":" + port
	}
	if v, err := strconv.Atoi(os.Getenv("REDIS_DB")); err == nil {
		cfg.DB = v
	}
	return cfg
}

// Configured はRedisの接続先が指定されているかを返します。
func (c Config) Configured() bool {
	return c.URL != "" || c.Addr != ""
}

// options はConfigからredis.Optionsを組み立てます。
func (c Config) options() (*redis.Options, error) {
	if c.URL != "" {
		opt, err := redis.ParseURL(c.URL)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		return opt, nil
	}
	return &redis.Options{
		Addr:     c.Addr,
		Password: c.Password,
		DB:       c.DB,
	}, nil
}

// NewRedisClient はRedisクライアントを生成し、PINGで疎通を確認します。
// 接続先が未設定、または疎通に失敗した場合はエラーを返します。呼び出し側はキャッシュなしで継続できます。
func NewRedisClient(cfg Config) (*redis.Client, error) {
	if !cfg.Configured() {
		return nil, fmt.Errorf("redis is not configured")
	}
	opt, err := cfg.options()
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opt)

	// 接続確認
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Error("Redis connection failed", "address", opt.Addr, "error", err)
		_ = rdb.Close()
		return nil, err
	}

	slog.Info("Redis connection successful", "address", opt.Addr)
	return rdb, nil
}
