// Package snapshot keeps the CRM collections in memory and writes each
// collection back to a ports.SnapshotStore as one JSON array.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/seu-repo/imob-crm/internal/domain"
	"github.com/seu-repo/imob-crm/internal/observability/telemetry"
	"github.com/seu-repo/imob-crm/internal/ports"
)

type Store struct {
	mu      sync.RWMutex
	backend ports.SnapshotStore
	log     *zap.Logger

	leads   []domain.Lead
	clients []domain.Client
	tasks   []domain.Task
	users   []domain.User
}

// errUnchanged tells mutate that fn found nothing to change.
var errUnchanged = errors.New("unchanged")

func errIDTaken(kind, id string) error {
	return fmt.Errorf("%s %s already exists", kind, id)
}

type state struct {
	leads   []domain.Lead
	clients []domain.Client
	tasks   []domain.Task
	users   []domain.User
}

// Open loads every collection from backend and raises the id counters past the
// highest id already stored.
func Open(ctx context.Context, backend ports.SnapshotStore, ids ports.IDAllocator, log *zap.Logger) (*Store, error) {
	s := &Store{backend: backend, log: log}

	if err := load(ctx, backend, ports.KeyLeads, &s.leads); err != nil {
		return nil, err
	}
	if err := load(ctx, backend, ports.KeyClients, &s.clients); err != nil {
		return nil, err
	}
	if err := load(ctx, backend, ports.KeyTasks, &s.tasks); err != nil {
		return nil, err
	}
	if err := load(ctx, backend, ports.KeyUsers, &s.users); err != nil {
		return nil, err
	}

	if ids != nil {
		if err := s.seed(ctx, ids); err != nil {
			return nil, err
		}
	}

	log.Info("CRM snapshots loaded",
		zap.Int("leads", len(s.leads)),
		zap.Int("clients", len(s.clients)),
		zap.Int("tasks", len(s.tasks)),
		zap.Int("users", len(s.users)),
	)
	return s, nil
}

func load[T any](ctx context.Context, backend ports.SnapshotStore, key string, dst *[]T) error {
	data, err := backend.Load(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", key, err)
	}
	if len(data) == 0 {
		*dst = []T{}
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	if *dst == nil {
		*dst = []T{}
	}
	return nil
}

func (s *Store) seed(ctx context.Context, ids ports.IDAllocator) error {
	highest := map[string]int64{}
	observe := func(prefix, id string) {
		if n, ok := domain.ParseID(prefix, id); ok && n > highest[prefix] {
			highest[prefix] = n
		}
	}
	for _, l := range s.leads {
		observe(domain.PrefixLead, l.ID)
	}
	for _, c := range s.clients {
		observe(domain.PrefixClient, c.ID)
	}
	for _, t := range s.tasks {
		observe(domain.PrefixTask, t.ID)
	}
	for _, u := range s.users {
		observe(domain.PrefixUser, u.ID)
	}
	for prefix, n := range highest {
		if err := ids.Observe(ctx, prefix, n); err != nil {
			return fmt.Errorf("failed to seed id allocator for %s: %w", prefix, err)
		}
	}
	return nil
}

func (s *Store) Leads() ports.LeadRepository { return &leadRepository{s: s} }
func (s *Store) Clients() ports.ClientRepository { return &clientRepository{s: s} }
func (s *Store) Tasks() ports.TaskRepository { return &taskRepository{s: s} }
func (s *Store) Users() ports.UserRepository { return &userRepository{s: s} }

// Ping checks the backend.
func (s *Store) Ping(ctx context.Context) error {
	return s.backend.Ping(ctx)
}

func (s *Store) snapshot() state {
	return state{
		leads:   append([]domain.Lead(nil), s.leads...),
		clients: append([]domain.Client(nil), s.clients...),
		tasks:   append([]domain.Task(nil), s.tasks...),
		users:   append([]domain.User(nil), s.users...),
	}
}

func (s *Store) restore(st state) {
	s.leads = st.leads
	s.clients = st.clients
	s.tasks = st.tasks
	s.users = st.users
}

// mutate runs fn under the write lock and persists keys. A failed write puts the
// collections back the way they were.
func (s *Store) mutate(ctx context.Context, op string, keys []string, fn func() error) error {
	ctx, span := telemetry.Tracer().Start(ctx, "snapshot."+op)
	defer span.End()
	span.SetAttributes(attribute.StringSlice("snapshot.keys", keys))

	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.snapshot()
	if err := fn(); err != nil {
		if errors.Is(err, errUnchanged) {
			return nil
		}
		return err
	}
	if err := s.persist(ctx, keys...); err != nil {
		s.restore(before)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.log.Error("Failed to persist snapshot, changes reverted",
			zap.String("operation", op),
			zap.Strings("keys", keys),
			zap.Error(err),
		)
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Store) persist(ctx context.Context, keys ...string) error {
	snaps := make([]ports.Snapshot, 0, len(keys))
	for _, key := range keys {
		var (
			data []byte
			err  error
		)
		switch key {
		case ports.KeyLeads:
			data, err = encode(s.leads)
		case ports.KeyClients:
			data, err = encode(s.clients)
		case ports.KeyTasks:
			data, err = encode(s.tasks)
		case ports.KeyUsers:
			data, err = encode(s.users)
		default:
			return fmt.Errorf("unknown snapshot key %q", key)
		}
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", key, err)
		}
		snaps = append(snaps, ports.Snapshot{Key: key, Data: data})
	}
	return s.backend.Save(ctx, snaps...)
}

func encode[T any](items []T) ([]byte, error) {
	if items == nil {
		items = []T{}
	}
	return json.Marshal(items)
}
