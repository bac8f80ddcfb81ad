package ports

import (
	"context"
	"time"

	"github.com/seu-repo/imob-crm/internal/domain"
)

// MessageQueue defines the interface for a message queue adapter
type MessageQueue interface {
	Publish(subject string, data []byte) error
	Subscribe(subject string, handler func(data []byte) error) error
	Close() error
}

// EventPublisher emits domain events after a mutation has been committed.
// Implementations must not fail the caller; delivery problems are theirs to report.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.Event)
}

type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping() error
	Close() error
}
