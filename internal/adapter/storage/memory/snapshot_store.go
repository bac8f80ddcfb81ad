package memory

import (
	"context"
	"sync"
	"time"

	"github.com/seu-repo/imob-crm/internal/observability/telemetry"
	"github.com/seu-repo/imob-crm/internal/ports"
)

// SnapshotStore keeps snapshots in a map. Data is lost on restart.
type SnapshotStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{data: make(map[string][]byte)}
}

func (s *SnapshotStore) Load(ctx context.Context, key string) ([]byte, error) {
	defer observe("load", time.Now())

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.data[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), data...), nil
}

func (s *SnapshotStore) Save(ctx context.Context, snapshots ...ports.Snapshot) error {
	defer observe("save", time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, snap := range snapshots {
		s.data[snap.Key] = append([]byte(nil), snap.Data...)
	}
	return nil
}

func (s *SnapshotStore) Ping(ctx context.Context) error { return nil }

func (s *SnapshotStore) Close() error { return nil }

func observe(op string, start time.Time) {
	telemetry.StorageLatency.WithLabelValues("memory", op).Observe(time.Since(start).Seconds())
}
