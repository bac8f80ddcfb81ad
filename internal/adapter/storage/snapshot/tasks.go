package snapshot

import (
	"context"

	"github.com/seu-repo/imob-crm/internal/domain"
	"github.com/seu-repo/imob-crm/internal/ports"
)

type taskRepository struct {
	s *Store
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	s := r.s
	return s.mutate(ctx, "task.create", []string{ports.KeyTasks}, func() error {
		if indexTask(s.tasks, task.ID) >= 0 {
			return errIDTaken("task", task.ID)
		}
		s.tasks = append([]domain.Task{task.Clone()}, s.tasks...)
		return nil
	})
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) (bool, error) {
	s := r.s
	found := false
	err := s.mutate(ctx, "task.update", []string{ports.KeyTasks}, func() error {
		i := indexTask(s.tasks, task.ID)
		if i < 0 {
			return errUnchanged
		}
		found = true
		out := append([]domain.Task(nil), s.tasks...)
		out[i] = task.Clone()
		s.tasks = out
		return nil
	})
	return found, err
}

func (r *taskRepository) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if i := indexTask(r.s.tasks, id); i >= 0 {
		t := r.s.tasks[i].Clone()
		return &t, nil
	}
	return nil, nil
}

func (r *taskRepository) FindAll(ctx context.Context, filter domain.TaskFilter) ([]domain.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]domain.Task, 0, len(r.s.tasks))
	for _, t := range r.s.tasks {
		if matchTask(t, filter) {
			out = append(out, t.Clone())
		}
	}
	return out, nil
}

func (r *taskRepository) Delete(ctx context.Context, id string) (bool, error) {
	s := r.s
	found := false
	err := s.mutate(ctx, "task.delete", []string{ports.KeyTasks}, func() error {
		i := indexTask(s.tasks, id)
		if i < 0 {
			return errUnchanged
		}
		found = true
		s.tasks = append(s.tasks[:i:i], s.tasks[i+1:]...)
		return nil
	})
	return found, err
}

func indexTask(tasks []domain.Task, id string) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}
