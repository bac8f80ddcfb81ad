package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/seu-repo/imob-crm/internal/ports"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// RedisCache shares the client opened for the snapshot store; keys are
// namespaced so both can live in one database.
type RedisCache struct {
	client *goredis.Client
	prefix string
	log    *zap.Logger
}

var _ ports.Cache = (*RedisCache)(nil)

func NewRedisCache(client *goredis.Client, prefix string, log *zap.Logger) *RedisCache {
	return &RedisCache{client: client, prefix: prefix + "cache:", log: log}
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	val, err := c.client.Get(ctx, c.prefix+key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", fmt.Errorf("%w: %s", ErrMiss, key)
	}
	return val, err
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	s, err := encode(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.prefix+key, s, expiration).Err()
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.prefix+key).Err()
}

func (c *RedisCache) Ping() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return c.client.Ping(ctx).Err()
}

// Close is a no-op; the client belongs to whoever opened it.
func (c *RedisCache) Close() error {
	return nil
}

// encode stores strings and bytes as-is and anything else as JSON, so both
// caches hand back the same text for the same value.
func encode(value interface{}) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("failed to encode cache value: %w", err)
	}
	return string(data), nil
}
