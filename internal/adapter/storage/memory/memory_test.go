package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seu-repo/imob-crm/internal/ports"
)

func TestSnapshotStore_LoadMissingKey(t *testing.T) {
	s := NewSnapshotStore()

	data, err := s.Load(context.Background(), ports.KeyLeads)

	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestSnapshotStore_SaveCopiesData(t *testing.T) {
	s := NewSnapshotStore()
	ctx := context.Background()
	payload := []byte(`[{"id":"L0001"}]`)

	require.NoError(t, s.Save(ctx, ports.Snapshot{Key: ports.KeyLeads, Data: payload}))
	payload[0] = 'X'

	data, err := s.Load(ctx, ports.KeyLeads)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"L0001"}]`, string(data))
}

func TestIDAllocator_Monotonic(t *testing.T) {
	a := NewIDAllocator()
	ctx := context.Background()

	require.NoError(t, a.Observe(ctx, "L", 41))
	n, err := a.Next(ctx, "L")
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)

	// Observing a lower value never moves the counter back.
	require.NoError(t, a.Observe(ctx, "L", 3))
	n, _ = a.Next(ctx, "L")
	assert.Equal(t, int64(43), n)

	n, _ = a.Next(ctx, "T")
	assert.Equal(t, int64(1), n)
}

func TestIDAllocator_ConcurrentNextIsUnique(t *testing.T) {
	a := NewIDAllocator()
	ctx := context.Background()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[int64]bool)
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := a.Next(ctx, "U")
			assert.NoError(t, err)
			mu.Lock()
			seen[n] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 50)
}
