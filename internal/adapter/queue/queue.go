package queue

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/seu-repo/imob-crm/internal/ports"
	"github.com/seu-repo/imob-crm/pkg/config"
)

// New opens the transport selected by cfg.Driver.
func New(cfg config.QueueConfig, log *zap.Logger) (ports.MessageQueue, error) {
	switch cfg.Driver {
	case "nats":
		return NewNATSQueue(cfg, log)
	case "rabbitmq":
		return NewRabbitMQQueue(cfg, log)
	case "memory", "":
		return NewMemoryQueue(cfg.BufferSize, log), nil
	default:
		return nil, fmt.Errorf("unknown queue driver: %q", cfg.Driver)
	}
}
