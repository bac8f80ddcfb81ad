package redis

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
)

// raiseScript sets the counter to ARGV[1] only when that is higher.
var raiseScript = goredis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
local wanted = tonumber(ARGV[1])
if wanted > current then
	redis.call('SET', KEYS[1], wanted)
	return wanted
end
return current
`)

// IDAllocator shares sequence counters between instances with INCR.
type IDAllocator struct {
	client *goredis.Client
	prefix string
}

func NewIDAllocator(client *goredis.Client, prefix string) *IDAllocator {
	return &IDAllocator{client: client, prefix: prefix}
}

func (a *IDAllocator) key(idPrefix string) string {
	return a.prefix + "seq:" + idPrefix
}

func (a *IDAllocator) Next(ctx context.Context, prefix string) (int64, error) {
	n, err := a.client.Incr(ctx, a.key(prefix)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to allocate %s id: %w", prefix, err)
	}
	return n, nil
}

func (a *IDAllocator) Observe(ctx context.Context, prefix string, n int64) error {
	if err := raiseScript.Run(ctx, a.client, []string{a.key(prefix)}, n).Err(); err != nil {
		return fmt.Errorf("failed to raise %s counter: %w", prefix, err)
	}
	return nil
}
