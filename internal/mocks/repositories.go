package mocks

import (
	"context"

	"github.com/seu-repo/imob-crm/internal/domain"
)

// MockLeadRepository is a mock implementation of LeadRepository
type MockLeadRepository struct {
	CreateFunc           func(ctx context.Context, lead *domain.Lead) error
	UpdateFunc           func(ctx context.Context, lead *domain.Lead) (bool, error)
	FindByIDFunc         func(ctx context.Context, id string) (*domain.Lead, error)
	FindAllFunc          func(ctx context.Context, filter domain.LeadFilter) ([]domain.Lead, error)
	DeleteFunc           func(ctx context.Context, id string) (bool, error)
	CreateWithClientFunc func(ctx context.Context, lead *domain.Lead, client *domain.Client) error
	ConvertFunc          func(ctx context.Context, leadID string, client *domain.Client) (bool, error)
}

func (m *MockLeadRepository) Create(ctx context.Context, lead *domain.Lead) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, lead)
	}
	return nil
}

func (m *MockLeadRepository) Update(ctx context.Context, lead *domain.Lead) (bool, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, lead)
	}
	return true, nil
}

func (m *MockLeadRepository) FindByID(ctx context.Context, id string) (*domain.Lead, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockLeadRepository) FindAll(ctx context.Context, filter domain.LeadFilter) ([]domain.Lead, error) {
	if m.FindAllFunc != nil {
		return m.FindAllFunc(ctx, filter)
	}
	return []domain.Lead{}, nil
}

func (m *MockLeadRepository) Delete(ctx context.Context, id string) (bool, error) {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return false, nil
}

func (m *MockLeadRepository) CreateWithClient(ctx context.Context, lead *domain.Lead, client *domain.Client) error {
	if m.CreateWithClientFunc != nil {
		return m.CreateWithClientFunc(ctx, lead, client)
	}
	return nil
}

func (m *MockLeadRepository) Convert(ctx context.Context, leadID string, client *domain.Client) (bool, error) {
	if m.ConvertFunc != nil {
		return m.ConvertFunc(ctx, leadID, client)
	}
	return false, nil
}

// MockClientRepository is a mock implementation of ClientRepository
type MockClientRepository struct {
	CreateFunc   func(ctx context.Context, client *domain.Client) error
	UpdateFunc   func(ctx context.Context, client *domain.Client) (bool, error)
	FindByIDFunc func(ctx context.Context, id string) (*domain.Client, error)
	FindAllFunc  func(ctx context.Context, filter domain.LeadFilter) ([]domain.Client, error)
	DeleteFunc   func(ctx context.Context, id string) (bool, error)
}

func (m *MockClientRepository) Create(ctx context.Context, client *domain.Client) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, client)
	}
	return nil
}

func (m *MockClientRepository) Update(ctx context.Context, client *domain.Client) (bool, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, client)
	}
	return true, nil
}

func (m *MockClientRepository) FindByID(ctx context.Context, id string) (*domain.Client, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockClientRepository) FindAll(ctx context.Context, filter domain.LeadFilter) ([]domain.Client, error) {
	if m.FindAllFunc != nil {
		return m.FindAllFunc(ctx, filter)
	}
	return []domain.Client{}, nil
}

func (m *MockClientRepository) Delete(ctx context.Context, id string) (bool, error) {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return false, nil
}

// MockTaskRepository is a mock implementation of TaskRepository
type MockTaskRepository struct {
	CreateFunc   func(ctx context.Context, task *domain.Task) error
	UpdateFunc   func(ctx context.Context, task *domain.Task) (bool, error)
	FindByIDFunc func(ctx context.Context, id string) (*domain.Task, error)
	FindAllFunc  func(ctx context.Context, filter domain.TaskFilter) ([]domain.Task, error)
	DeleteFunc   func(ctx context.Context, id string) (bool, error)
}

func (m *MockTaskRepository) Create(ctx context.Context, task *domain.Task) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, task)
	}
	return nil
}

func (m *MockTaskRepository) Update(ctx context.Context, task *domain.Task) (bool, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, task)
	}
	return true, nil
}

func (m *MockTaskRepository) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockTaskRepository) FindAll(ctx context.Context, filter domain.TaskFilter) ([]domain.Task, error) {
	if m.FindAllFunc != nil {
		return m.FindAllFunc(ctx, filter)
	}
	return []domain.Task{}, nil
}

func (m *MockTaskRepository) Delete(ctx context.Context, id string) (bool, error) {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return false, nil
}

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	CreateFunc      func(ctx context.Context, user *domain.User) error
	UpdateFunc      func(ctx context.Context, user *domain.User) (bool, error)
	FindByIDFunc    func(ctx context.Context, id string) (*domain.User, error)
	FindByEmailFunc func(ctx context.Context, email string) (*domain.User, error)
	FindAllFunc     func(ctx context.Context, filter domain.UserFilter) ([]domain.User, error)
	DeleteFunc      func(ctx context.Context, id string) (bool, error)
	CountFunc       func(ctx context.Context) (int, error)
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil
}

func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) (bool, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, user)
	}
	return true, nil
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	return nil, nil
}

func (m *MockUserRepository) FindAll(ctx context.Context, filter domain.UserFilter) ([]domain.User, error) {
	if m.FindAllFunc != nil {
		return m.FindAllFunc(ctx, filter)
	}
	return []domain.User{}, nil
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) (bool, error) {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return false, nil
}

func (m *MockUserRepository) Count(ctx context.Context) (int, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx)
	}
	return 0, nil
}
