package mocks

import (
	"context"
	"sync"

	"github.com/seu-repo/imob-crm/internal/ports"
)

// MockSnapshotStore keeps snapshots in a map unless a func field overrides it.
type MockSnapshotStore struct {
	mu        sync.Mutex
	data      map[string][]byte
	SaveCalls int
	LoadFunc  func(ctx context.Context, key string) ([]byte, error)
	SaveFunc  func(ctx context.Context, snapshots ...ports.Snapshot) error
	PingFunc  func(ctx context.Context) error
}

func NewMockSnapshotStore() *MockSnapshotStore {
	return &MockSnapshotStore{data: make(map[string][]byte)}
}

func (m *MockSnapshotStore) Load(ctx context.Context, key string) ([]byte, error) {
	if m.LoadFunc != nil {
		return m.LoadFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key], nil
}

func (m *MockSnapshotStore) Save(ctx context.Context, snapshots ...ports.Snapshot) error {
	m.mu.Lock()
	m.SaveCalls++
	m.mu.Unlock()
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, snapshots...)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range snapshots {
		m.data[s.Key] = append([]byte(nil), s.Data...)
	}
	return nil
}

func (m *MockSnapshotStore) Ping(ctx context.Context) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil
}

func (m *MockSnapshotStore) Close() error {
	return nil
}

// Put seeds raw data for a key.
func (m *MockSnapshotStore) Put(key string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = data
}

// Get returns the raw data last saved for a key.
func (m *MockSnapshotStore) Get(key string) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key]
}

// MockIDAllocator counts per prefix unless NextFunc is set.
type MockIDAllocator struct {
	mu          sync.Mutex
	counters    map[string]int64
	NextFunc    func(ctx context.Context, prefix string) (int64, error)
	ObserveFunc func(ctx context.Context, prefix string, n int64) error
}

func NewMockIDAllocator() *MockIDAllocator {
	return &MockIDAllocator{counters: make(map[string]int64)}
}

func (m *MockIDAllocator) Next(ctx context.Context, prefix string) (int64, error) {
	if m.NextFunc != nil {
		return m.NextFunc(ctx, prefix)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[prefix]++
	return m.counters[prefix], nil
}

func (m *MockIDAllocator) Observe(ctx context.Context, prefix string, n int64) error {
	if m.ObserveFunc != nil {
		return m.ObserveFunc(ctx, prefix, n)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if n > m.counters[prefix] {
		m.counters[prefix] = n
	}
	return nil
}

// Current returns the last value handed out or observed for prefix.
func (m *MockIDAllocator) Current(prefix string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[prefix]
}
