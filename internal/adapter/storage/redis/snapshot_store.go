package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/seu-repo/imob-crm/internal/observability/telemetry"
	"github.com/seu-repo/imob-crm/internal/ports"
)

// SnapshotStore keeps each snapshot under <prefix><key>.
type SnapshotStore struct {
	client *goredis.Client
	prefix string
	log    *zap.Logger
}

func NewSnapshotStore(client *goredis.Client, prefix string, log *zap.Logger) *SnapshotStore {
	return &SnapshotStore{client: client, prefix: prefix, log: log}
}

func (s *SnapshotStore) Load(ctx context.Context, key string) ([]byte, error) {
	defer observe("load", time.Now())

	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get snapshot %s: %w", key, err)
	}
	return data, nil
}

// Save writes every snapshot inside one MULTI/EXEC block.
func (s *SnapshotStore) Save(ctx context.Context, snapshots ...ports.Snapshot) error {
	defer observe("save", time.Now())

	_, err := s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		for _, snap := range snapshots {
			pipe.Set(ctx, s.prefix+snap.Key, snap.Data, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save snapshots: %w", err)
	}
	return nil
}

func (s *SnapshotStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *SnapshotStore) Close() error {
	return s.client.Close()
}

func observe(op string, start time.Time) {
	telemetry.StorageLatency.WithLabelValues("redis", op).Observe(time.Since(start).Seconds())
}
