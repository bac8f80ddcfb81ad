//go:build integration

package redis

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"go.uber.org/zap"

	"github.com/seu-repo/imob-crm/internal/ports"
	"github.com/seu-repo/imob-crm/pkg/config"
)

func TestRedis_Container(t *testing.T) {
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	url, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	client, err := NewClient(config.RedisConfig{URL: url}, zap.NewNop())
	require.NoError(t, err)

	t.Run("SnapshotStore", func(t *testing.T) {
		s := NewSnapshotStore(client, "it:", zap.NewNop())

		require.NoError(t, s.Save(ctx, ports.Snapshot{Key: ports.KeyUsers, Data: []byte(`[{"id":"U0001"}]`)}))
		got, err := s.Load(ctx, ports.KeyUsers)
		require.NoError(t, err)
		assert.JSONEq(t, `[{"id":"U0001"}]`, string(got))
		assert.NoError(t, s.Ping(ctx))
	})

	t.Run("IDAllocatorConcurrent", func(t *testing.T) {
		a := NewIDAllocator(client, "it:")
		require.NoError(t, a.Observe(ctx, "L", 10))

		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			seen = make(map[int64]bool)
		)
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				n, err := a.Next(ctx, "L")
				assert.NoError(t, err)
				mu.Lock()
				seen[n] = true
				mu.Unlock()
			}()
		}
		wg.Wait()

		assert.Len(t, seen, 20)
		for n := range seen {
			assert.Greater(t, n, int64(10))
		}
	})
}
