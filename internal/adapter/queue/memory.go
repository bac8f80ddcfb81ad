package queue

import (
	"errors"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/seu-repo/imob-crm/internal/observability/telemetry"
	"github.com/seu-repo/imob-crm/internal/ports"
)

var ErrQueueClosed = errors.New("queue closed")

// MemoryQueue delivers messages in-process. Each subscription has its own
// buffered channel and goroutine. Publish never blocks: a message for a
// subscriber whose buffer is full is dropped and counted.
type MemoryQueue struct {
	mu      sync.RWMutex
	subs    map[string][]chan []byte
	buffer  int
	closed  bool
	dropped atomic.Int64
	wg      sync.WaitGroup
	log     *zap.Logger
}

var _ ports.MessageQueue = (*MemoryQueue)(nil)

func NewMemoryQueue(buffer int, log *zap.Logger) *MemoryQueue {
	if buffer <= 0 {
		buffer = 64
	}
	return &MemoryQueue{
		subs:   make(map[string][]chan []byte),
		buffer: buffer,
		log:    log,
	}
}

func (q *MemoryQueue) Publish(subject string, data []byte) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}
	for _, ch := range q.subs[subject] {
		msg := append([]byte(nil), data...)
		select {
		case ch <- msg:
		default:
			q.dropped.Add(1)
			telemetry.QueueDroppedTotal.WithLabelValues(subject).Inc()
			q.log.Warn("Subscriber buffer full, message dropped",
				zap.String("subject", subject),
				zap.Int("buffer", q.buffer),
			)
		}
	}
	return nil
}

// Dropped reports how many deliveries were lost to full buffers.
func (q *MemoryQueue) Dropped() int64 {
	return q.dropped.Load()
}

func (q *MemoryQueue) Subscribe(subject string, handler func(data []byte) error) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}
	ch := make(chan []byte, q.buffer)
	q.subs[subject] = append(q.subs[subject], ch)

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		for msg := range ch {
			if err := handler(msg); err != nil {
				q.log.Error("Error processing message", zap.String("subject", subject), zap.Error(err))
			}
		}
	}()
	return nil
}

// Close stops accepting messages and waits for handlers to drain their buffers.
func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	for _, chans := range q.subs {
		for _, ch := range chans {
			close(ch)
		}
	}
	q.mu.Unlock()

	q.wg.Wait()
	return nil
}
