// Package cache はRedisを使ったキー・バリューキャッシュとリポジトリのキャッシュデコレーターを提供します。
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrCacheMiss はキーが存在しない場合に返されます。
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheUnavailable はRedisが設定されていない場合に返されます。
	ErrCacheUnavailable = errors.New("cache unavailable")
)

// Store はRedisに対する最小限のキャッシュ操作をまとめた薄いラッパーです。
// rdbがnilの場合、すべての操作はErrCacheUnavailableを返します。
type Store struct {
	rdb *redis.Client
}

// NewStore はStoreを生成します。rdbはnilでも構いません。
func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

// Available はRedisクライアントが設定されているかを返します。
func (s *Store) Available() bool {
	return s != nil && s.rdb != nil
}

// Get はキーの値を取得します。存在しない場合はErrCacheMissを返します。
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if !s.Available() {
		return nil, ErrCacheUnavailable
	}
	b, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}
	return b, nil
}

// Set は値をTTL付きで保存します。ttlが0以下の場合は期限なしで保存します。
func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if !s.Available() {
		return ErrCacheUnavailable
	}
	if ttl < 0 {
		ttl = 0
	}
	return s.rdb.Set(ctx, key, value, ttl).Err()
}

// Delete は1つ以上のキーを1コマンドで削除します。
func (s *Store) Delete(ctx context.Context, keys ...string) error {
	if !s.Available() {
		return ErrCacheUnavailable
	}
	if len(keys) == 0 {
		return nil
	}
	return s.rdb.Del(ctx, keys...).Err()
}

// Increment はカウンタを1増やし、増加後の値を返します。
func (s *Store) Increment(ctx context.Context, key string) (int64, error) {
	return s.IncrementBy(ctx, key, 1)
}

// IncrementBy はカウンタをn増やし、増加後の値を返します。キーが存在しない場合は0から数えます。
func (s *Store) IncrementBy(ctx context.Context, key string, n int64) (int64, error) {
	if !s.Available() {
		return 0, ErrCacheUnavailable
	}
	return s.rdb.IncrBy(ctx, key, n).Result()
}

// Expire はキーの有効期限を設定します。
func (s *Store) Expire(ctx context.Context, key string, ttl time.Duration) error {
	if !s.Available() {
		return ErrCacheUnavailable
	}
	return s.rdb.Expire(ctx, key, ttl).Err()
}

// TTL はキーの残り有効期間を返します。
// キーが存在しない場合は-2、期限が設定されていない場合は-1（いずれもナノ秒単位のDuration）を返します。
func (s *Store) TTL(ctx context.Context, key string) (time.Duration, error) {
	if !s.Available() {
		return 0, ErrCacheUnavailable
	}
	return s.rdb.TTL(ctx, key).Result()
}

// SetNX はキーが存在しない場合のみ値を保存し、保存できたかどうかを返します。
func (s *Store) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	if !s.Available() {
		return false, ErrCacheUnavailable
	}
	return s.rdb.SetNX(ctx, key, value, ttl).Result()
}

// Ping はRedisへの疎通を確認します。
func (s *Store) Ping(ctx context.Context) error {
	if !s.Available() {
		return ErrCacheUnavailable
	}
	return s.rdb.Ping(ctx).Err()
}
