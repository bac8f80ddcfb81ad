package snapshot

import (
	"context"
	"fmt"

	"github.com/seu-repo/imob-crm/internal/domain"
	"github.com/seu-repo/imob-crm/internal/ports"
)

type userRepository struct {
	s *Store
}

// Create appends new users at the end, keeping creation order. The email
// check runs under the write lock, so two concurrent creations with the same
// address cannot both succeed.
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	s := r.s
	return s.mutate(ctx, "user.create", []string{ports.KeyUsers}, func() error {
		if indexUser(s.users, user.ID) >= 0 {
			return errIDTaken("user", user.ID)
		}
		if err := emailFree(s.users, user.Email, ""); err != nil {
			return err
		}
		s.users = append(append([]domain.User(nil), s.users...), user.Clone())
		return nil
	})
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) (bool, error) {
	s := r.s
	found := false
	err := s.mutate(ctx, "user.update", []string{ports.KeyUsers}, func() error {
		i := indexUser(s.users, user.ID)
		if i < 0 {
			return errUnchanged
		}
		if err := emailFree(s.users, user.Email, user.ID); err != nil {
			return err
		}
		found = true
		out := append([]domain.User(nil), s.users...)
		out[i] = user.Clone()
		s.users = out
		return nil
	})
	return found, err
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if i := indexUser(r.s.users, id); i >= 0 {
		u := r.s.users[i].Clone()
		return &u, nil
	}
	return nil, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	want := domain.NormalizeEmail(email)
	for _, u := range r.s.users {
		if domain.NormalizeEmail(u.Email) == want {
			out := u.Clone()
			return &out, nil
		}
	}
	return nil, nil
}

func (r *userRepository) FindAll(ctx context.Context, filter domain.UserFilter) ([]domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]domain.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		if matchUser(u, filter) {
			out = append(out, u.Clone())
		}
	}
	return out, nil
}

func (r *userRepository) Delete(ctx context.Context, id string) (bool, error) {
	s := r.s
	found := false
	err := s.mutate(ctx, "user.delete", []string{ports.KeyUsers}, func() error {
		i := indexUser(s.users, id)
		if i < 0 {
			return errUnchanged
		}
		found = true
		s.users = append(s.users[:i:i], s.users[i+1:]...)
		return nil
	})
	return found, err
}

func (r *userRepository) Count(ctx context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.users), nil
}

func indexUser(users []domain.User, id string) int {
	for i := range users {
		if users[i].ID == id {
			return i
		}
	}
	return -1
}

func emailFree(users []domain.User, email, selfID string) error {
	want := domain.NormalizeEmail(email)
	for _, u := range users {
		if u.ID != selfID && domain.NormalizeEmail(u.Email) == want {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateEmail, email)
		}
	}
	return nil
}
