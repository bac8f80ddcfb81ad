package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/imob-crm/internal/ports"
)

type entry struct {
	value     string
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// LocalCache keeps sessions and revoked token ids in process memory.
// Used when no Redis client is configured. Entries do not survive a restart,
// so a restart logs every user out of the revocation list but not out of
// their tokens.
type LocalCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
	log     *zap.Logger

	stop     chan struct{}
	stopOnce sync.Once
}

var _ ports.Cache = (*LocalCache)(nil)

func NewLocalCache(sweepEvery time.Duration, log *zap.Logger) *LocalCache {
	if sweepEvery <= 0 {
		sweepEvery = time.Minute
	}
	c := &LocalCache{
		entries: make(map[string]entry),
		now:     time.Now,
		log:     log,
		stop:    make(chan struct{}),
	}
	go c.sweepLoop(sweepEvery)

	log.Info("Local cache ready", zap.Duration("sweep_every", sweepEvery))
	return c
}

func (c *LocalCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || e.expired(c.now()) {
		return "", fmt.Errorf("%w: %s", ErrMiss, key)
	}
	return e.value, nil
}

func (c *LocalCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	s, err := encode(value)
	if err != nil {
		return err
	}

	e := entry{value: s}
	if expiration > 0 {
		e.expiresAt = c.now().Add(expiration)
	}

	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
	return nil
}

func (c *LocalCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

func (c *LocalCache) Ping() error { return nil }

func (c *LocalCache) Close() error {
	c.stopOnce.Do(func() { close(c.stop) })
	return nil
}

func (c *LocalCache) sweepLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.sweep()
		case <-c.stop:
			return
		}
	}
}

// sweep drops expired entries so revoked token ids do not pile up.
func (c *LocalCache) sweep() int {
	now := c.now()

	c.mu.Lock()
	removed := 0
	for key, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, key)
			removed++
		}
	}
	c.mu.Unlock()

	if removed > 0 {
		c.log.Debug("Expired cache entries removed", zap.Int("count", removed))
	}
	return removed
}
