package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore はRedisを保存先とするStore実装。
// DiscourseのキャッシュがRedisで運用されている構成に合わせた本番向けの選択。
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore はRedisStoreを生成する。
// prefixは全キーの前に付与される名前空間（例: "llms_txt"）。
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + ":" + key
}

// Get は指定キーの値を返す。未登録・期限切れはErrCacheMiss。
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redisからの読み取りに失敗しました: %w", err)
	}
	return value, nil
}

// Set は値をTTL付きで保存する。ttl<=0はRedis側の無期限保存。
func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := s.client.Set(ctx, s.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("redisへの書き込みに失敗しました: %w", err)
	}
	return nil
}

// Delete は指定キーを削除する。
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("redisからの削除に失敗しました: %w", err)
	}
	return nil
}
