package ports

import "context"

// Snapshot storage keys. Each key holds one JSON array.
const (
	KeyUsers   = "appUsers"
	KeyLeads   = "crm-leads"
	KeyClients = "crm-clients"
	KeyTasks   = "crm-tasks"
)

type Snapshot struct {
	Key  string
	Data []byte
}

// SnapshotStore persists whole collections as opaque blobs.
// Load returns nil, nil when the key has never been written.
// Save writes all given snapshots atomically.
type SnapshotStore interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, snapshots ...Snapshot) error
	Ping(ctx context.Context) error
	Close() error
}

// IDAllocator hands out monotonic sequence numbers per id prefix.
type IDAllocator interface {
	Next(ctx context.Context, prefix string) (int64, error)
	// Observe raises the counter to at least n.
	Observe(ctx context.Context, prefix string, n int64) error
}
