package session

import (
	"context"
	"errors"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "hospital:session:"

// RedisBackend keeps tab sessions in Redis, for kiosks that share a cache.
// Keys stay tab-scoped and expire after ttl.
type RedisBackend struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func NewRedisBackend(client *redis.Client, tab string, ttl time.Duration) *RedisBackend {
	return &RedisBackend{client: client, key: redisKeyPrefix + tab, ttl: ttl}
}

func (r *RedisBackend) Load(ctx context.Context) (map[string]string, error) {
	data, err := r.client.Get(ctx, r.key).Result()
	if errors.Is(err, redis.Nil) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}
	vals := map[string]string{}
	if err := json.Unmarshal([]byte(data), &vals); err != nil {
		return nil, err
	}
	return vals, nil
}

func (r *RedisBackend) Save(ctx context.Context, values map[string]string) error {
	b, err := json.Marshal(values)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key, b, r.ttl).Err()
}

func (r *RedisBackend) Remove(ctx context.Context) error {
	return r.client.Del(ctx, r.key).Err()
}
