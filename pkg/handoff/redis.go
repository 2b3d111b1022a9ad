package handoff

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "pathway:session:"

// RedisBackend keeps each session's values in one hash whose expiry is pushed
// forward on every write.
type RedisBackend struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisBackend(client *redis.Client, ttl time.Duration) *RedisBackend {
	return &RedisBackend{client: client, ttl: ttl}
}

func (b *RedisBackend) Session(id string) Store {
	return &redisStore{backend: b, key: redisKeyPrefix + id}
}

func (b *RedisBackend) Clear(ctx context.Context, id string) error {
	if err := b.client.Del(ctx, redisKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("clearing session %s: %w", id, err)
	}
	return nil
}

func (b *RedisBackend) Close() error {
	return b.client.Close()
}

type redisStore struct {
	backend *RedisBackend
	key     string
}

func (s *redisStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.backend.client.HGet(ctx, s.key, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading %s: %w", key, err)
	}
	return value, true, nil
}

func (s *redisStore) Set(ctx context.Context, key, value string) error {
	pipe := s.backend.client.TxPipeline()
	pipe.HSet(ctx, s.key, key, value)
	if s.backend.ttl > 0 {
		pipe.Expire(ctx, s.key, s.backend.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}
