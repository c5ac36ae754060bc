package session

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps session values in a redis hash, one hash per user.
type RedisStore struct {
	redis *redis.Client
	key   string
}

// NewRedisStore scopes the store to the hash "session:<owner>".
func NewRedisStore(client *redis.Client, owner string) *RedisStore {
	return &RedisStore{
		redis: client,
		key:   "session:" + owner,
	}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.redis.HGet(ctx, s.key, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	return s.redis.HSet(ctx, s.key, key, value).Err()
}

func (s *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.redis.HDel(ctx, s.key, keys...).Err()
}
