package snapshot

import (
	"context"

	"github.com/seu-repo/imob-crm/internal/domain"
	"github.com/seu-repo/imob-crm/internal/ports"
)

type leadRepository struct {
	s *Store
}

func (r *leadRepository) Create(ctx context.Context, lead *domain.Lead) error {
	s := r.s
	return s.mutate(ctx, "lead.create", []string{ports.KeyLeads}, func() error {
		if indexLead(s.leads, lead.ID) >= 0 {
			return errIDTaken("lead", lead.ID)
		}
		s.leads = append([]domain.Lead{lead.Clone()}, s.leads...)
		return nil
	})
}

func (r *leadRepository) Update(ctx context.Context, lead *domain.Lead) (bool, error) {
	s := r.s
	found := false
	err := s.mutate(ctx, "lead.update", []string{ports.KeyLeads}, func() error {
		i := indexLead(s.leads, lead.ID)
		if i < 0 {
			return errUnchanged
		}
		found = true
		out := append([]domain.Lead(nil), s.leads...)
		out[i] = lead.Clone()
		s.leads = out
		return nil
	})
	return found, err
}

func (r *leadRepository) FindByID(ctx context.Context, id string) (*domain.Lead, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if i := indexLead(r.s.leads, id); i >= 0 {
		l := r.s.leads[i].Clone()
		return &l, nil
	}
	return nil, nil
}

func (r *leadRepository) FindAll(ctx context.Context, filter domain.LeadFilter) ([]domain.Lead, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]domain.Lead, 0, len(r.s.leads))
	for _, l := range r.s.leads {
		if matchLead(l, filter) {
			out = append(out, l.Clone())
		}
	}
	return out, nil
}

func (r *leadRepository) Delete(ctx context.Context, id string) (bool, error) {
	s := r.s
	found := false
	err := s.mutate(ctx, "lead.delete", []string{ports.KeyLeads}, func() error {
		i := indexLead(s.leads, id)
		if i < 0 {
			return errUnchanged
		}
		found = true
		s.leads = append(s.leads[:i:i], s.leads[i+1:]...)
		return nil
	})
	return found, err
}

func (r *leadRepository) CreateWithClient(ctx context.Context, lead *domain.Lead, client *domain.Client) error {
	s := r.s
	return s.mutate(ctx, "lead.create_with_client", []string{ports.KeyLeads, ports.KeyClients}, func() error {
		if indexLead(s.leads, lead.ID) >= 0 {
			return errIDTaken("lead", lead.ID)
		}
		if indexClient(s.clients, client.ID) >= 0 {
			return errIDTaken("client", client.ID)
		}
		s.leads = append([]domain.Lead{lead.Clone()}, s.leads...)
		s.clients = append([]domain.Client{client.Clone()}, s.clients...)
		return nil
	})
}

func (r *leadRepository) Convert(ctx context.Context, leadID string, client *domain.Client) (bool, error) {
	s := r.s
	found := false
	err := s.mutate(ctx, "lead.convert", []string{ports.KeyLeads, ports.KeyClients}, func() error {
		i := indexLead(s.leads, leadID)
		if i < 0 {
			return errUnchanged
		}
		if indexClient(s.clients, client.ID) >= 0 {
			return errIDTaken("client", client.ID)
		}
		found = true
		s.leads = append(s.leads[:i:i], s.leads[i+1:]...)
		s.clients = append([]domain.Client{client.Clone()}, s.clients...)
		return nil
	})
	return found, err
}

func indexLead(leads []domain.Lead, id string) int {
	for i := range leads {
		if leads[i].ID == id {
			return i
		}
	}
	return -1
}
