// Package events carries domain events from the services onto the message queue.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/seu-repo/imob-crm/internal/domain"
	"github.com/seu-repo/imob-crm/internal/observability/telemetry"
	"github.com/seu-repo/imob-crm/internal/ports"
)

// DefaultSubject is used when the queue configuration leaves the subject empty.
const DefaultSubject = "crm.events"

// QueuePublisher serialises events as JSON onto one queue subject.
type QueuePublisher struct {
	queue   ports.MessageQueue
	subject string
	log     *zap.Logger
}

var _ ports.EventPublisher = (*QueuePublisher)(nil)

func NewQueuePublisher(queue ports.MessageQueue, subject string, log *zap.Logger) *QueuePublisher {
	if subject == "" {
		subject = DefaultSubject
	}
	return &QueuePublisher{queue: queue, subject: subject, log: log}
}

func (p *QueuePublisher) Subject() string {
	return p.subject
}

// Publish never reports failure to the caller; the mutation is already stored.
func (p *QueuePublisher) Publish(ctx context.Context, event domain.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		p.fail(event, err)
		return
	}
	if err := p.queue.Publish(p.subject, data); err != nil {
		p.fail(event, err)
		return
	}

	telemetry.EventsPublishedTotal.WithLabelValues(string(event.Type), "ok").Inc()
	p.log.Debug("Event published",
		zap.String("type", string(event.Type)),
		zap.String("subject_id", event.SubjectID),
	)
}

func (p *QueuePublisher) fail(event domain.Event, err error) {
	telemetry.EventsPublishedTotal.WithLabelValues(string(event.Type), "error").Inc()
	p.log.Error("Failed to publish event",
		zap.String("type", string(event.Type)),
		zap.String("event_id", event.ID),
		zap.Error(err),
	)
}

// Decode parses a queue message back into an event.
func Decode(data []byte) (domain.Event, error) {
	var event domain.Event
	if err := json.Unmarshal(data, &event); err != nil {
		return domain.Event{}, fmt.Errorf("decode event: %w", err)
	}
	if event.Type == "" {
		return domain.Event{}, fmt.Errorf("decode event: missing type")
	}
	return event, nil
}
