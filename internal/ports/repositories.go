package ports

import (
	"context"

	"github.com/seu-repo/imob-crm/internal/domain"
)

// Repositories return nil, nil from FindByID when nothing matches. Create
// inserts and fails when the id is taken. Update replaces a stored record and
// reports false, writing nothing, when the id is gone, so a record converted
// or deleted after it was read is never written back.
type LeadRepository interface {
	Create(ctx context.Context, lead *domain.Lead) error
	Update(ctx context.Context, lead *domain.Lead) (bool, error)
	FindByID(ctx context.Context, id string) (*domain.Lead, error)
	FindAll(ctx context.Context, filter domain.LeadFilter) ([]domain.Lead, error)
	Delete(ctx context.Context, id string) (bool, error)
	// CreateWithClient stores a new lead and its mirrored client in one write.
	CreateWithClient(ctx context.Context, lead *domain.Lead, client *domain.Client) error
	// Convert removes the lead and stores the client in one write.
	// It reports false when the lead does not exist.
	Convert(ctx context.Context, leadID string, client *domain.Client) (bool, error)
}

type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) error
	Update(ctx context.Context, client *domain.Client) (bool, error)
	FindByID(ctx context.Context, id string) (*domain.Client, error)
	FindAll(ctx context.Context, filter domain.LeadFilter) ([]domain.Client, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	Update(ctx context.Context, task *domain.Task) (bool, error)
	FindByID(ctx context.Context, id string) (*domain.Task, error)
	FindAll(ctx context.Context, filter domain.TaskFilter) ([]domain.Task, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// UserRepository keeps emails unique, case-insensitively: Create and Update
// return domain.ErrDuplicateEmail when another user holds the address.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) (bool, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindAll(ctx context.Context, filter domain.UserFilter) ([]domain.User, error)
	Delete(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int, error)
}
