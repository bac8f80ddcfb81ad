package memory

import (
	"context"
	"sync"
)

// IDAllocator is a process-local counter per prefix.
type IDAllocator struct {
	mu       sync.Mutex
	counters map[string]int64
}

func NewIDAllocator() *IDAllocator {
	return &IDAllocator{counters: make(map[string]int64)}
}

func (a *IDAllocator) Next(ctx context.Context, prefix string) (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.counters[prefix]++
	return a.counters[prefix], nil
}

func (a *IDAllocator) Observe(ctx context.Context, prefix string, n int64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if n > a.counters[prefix] {
		a.counters[prefix] = n
	}
	return nil
}
