package snapshot

import (
	"context"

	"github.com/seu-repo/imob-crm/internal/domain"
	"github.com/seu-repo/imob-crm/internal/ports"
)

type clientRepository struct {
	s *Store
}

func (r *clientRepository) Create(ctx context.Context, client *domain.Client) error {
	s := r.s
	return s.mutate(ctx, "client.create", []string{ports.KeyClients}, func() error {
		if indexClient(s.clients, client.ID) >= 0 {
			return errIDTaken("client", client.ID)
		}
		s.clients = append([]domain.Client{client.Clone()}, s.clients...)
		return nil
	})
}

func (r *clientRepository) Update(ctx context.Context, client *domain.Client) (bool, error) {
	s := r.s
	found := false
	err := s.mutate(ctx, "client.update", []string{ports.KeyClients}, func() error {
		i := indexClient(s.clients, client.ID)
		if i < 0 {
			return errUnchanged
		}
		found = true
		out := append([]domain.Client(nil), s.clients...)
		out[i] = client.Clone()
		s.clients = out
		return nil
	})
	return found, err
}

func (r *clientRepository) FindByID(ctx context.Context, id string) (*domain.Client, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if i := indexClient(r.s.clients, id); i >= 0 {
		c := r.s.clients[i].Clone()
		return &c, nil
	}
	return nil, nil
}

func (r *clientRepository) FindAll(ctx context.Context, filter domain.LeadFilter) ([]domain.Client, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]domain.Client, 0, len(r.s.clients))
	for _, c := range r.s.clients {
		if matchLead(c.Lead, filter) {
			out = append(out, c.Clone())
		}
	}
	return out, nil
}

func (r *clientRepository) Delete(ctx context.Context, id string) (bool, error) {
	s := r.s
	found := false
	err := s.mutate(ctx, "client.delete", []string{ports.KeyClients}, func() error {
		i := indexClient(s.clients, id)
		if i < 0 {
			return errUnchanged
		}
		found = true
		s.clients = append(s.clients[:i:i], s.clients[i+1:]...)
		return nil
	})
	return found, err
}

func indexClient(clients []domain.Client, id string) int {
	for i := range clients {
		if clients[i].ID == id {
			return i
		}
	}
	return -1
}
