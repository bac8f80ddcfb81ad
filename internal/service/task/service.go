package task

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/imob-crm/internal/domain"
	"github.com/seu-repo/imob-crm/internal/observability/telemetry"
	"github.com/seu-repo/imob-crm/internal/ports"
)

var _ ports.TaskService = (*Service)(nil)

type Service struct {
	repo   ports.TaskRepository
	ids    ports.IDAllocator
	events ports.EventPublisher
	loc    *time.Location
	log    *zap.Logger
	now    func() time.Time
}

// NewService builds the task service. Calendar-day queries use loc.
func NewService(repo ports.TaskRepository, ids ports.IDAllocator, events ports.EventPublisher, loc *time.Location, log *zap.Logger) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		repo:   repo,
		ids:    ids,
		events: events,
		loc:    loc,
		log:    log,
		now:    time.Now,
	}
}

func (s *Service) AddTask(ctx context.Context, in ports.TaskInput) (*domain.Task, error) {
	if in.Status == "" {
		in.Status = domain.TaskStatusPending
	}
	t := domain.Task{
		Title:          strings.TrimSpace(in.Title),
		Description:    in.Description,
		Date:           in.Date,
		Type:           in.Type,
		Time:           strings.TrimSpace(in.Time),
		Client:         in.Client,
		Status:         in.Status,
		AssociatedWith: in.AssociatedWith,
	}
	if err := validateTask(t); err != nil {
		return nil, err
	}

	n, err := s.ids.Next(ctx, domain.PrefixTask)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate id: %w", err)
	}
	now := s.now()
	t.ID = domain.FormatID(domain.PrefixTask, n)
	t.CreatedAt = now
	t.UpdatedAt = now

	if err := s.repo.Create(ctx, &t); err != nil {
		return nil, err
	}

	s.emit(ctx, domain.EventTaskCreated, t.ID, map[string]string{"title": t.Title, "client": t.Client})
	return &t, nil
}

func (s *Service) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("task %s: %w", id, domain.ErrNotFound)
	}
	return t, nil
}

func (s *Service) ListTasks(ctx context.Context, filter domain.TaskFilter) ([]domain.Task, error) {
	return s.repo.FindAll(ctx, filter)
}

func (s *Service) UpdateTask(ctx context.Context, id string, patch ports.TaskPatch) (*domain.Task, error) {
	t, err := s.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		t.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Date != nil {
		t.Date = *patch.Date
	}
	if patch.Type != nil {
		t.Type = *patch.Type
	}
	if patch.Time != nil {
		t.Time = strings.TrimSpace(*patch.Time)
	}
	if patch.Client != nil {
		t.Client = *patch.Client
	}
	if patch.AssociatedWith != nil {
		a := *patch.AssociatedWith
		t.AssociatedWith = &a
	}
	if err := validateTask(*t); err != nil {
		return nil, err
	}
	t.UpdatedAt = s.now()

	if err := s.update(ctx, t); err != nil {
		return nil, err
	}
	s.emit(ctx, domain.EventTaskUpdated, t.ID, map[string]string{"title": t.Title})
	return t, nil
}

func (s *Service) DeleteTask(ctx context.Context, id string) error {
	t, err := s.GetTask(ctx, id)
	if err != nil {
		return err
	}
	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("task %s: %w", id, domain.ErrNotFound)
	}
	s.emit(ctx, domain.EventTaskDeleted, id, map[string]string{"title": t.Title})
	return nil
}

func (s *Service) CompleteTask(ctx context.Context, id string) (*domain.Task, error) {
	return s.setStatus(ctx, id, domain.TaskStatusCompleted)
}

func (s *Service) CancelTask(ctx context.Context, id string) (*domain.Task, error) {
	return s.setStatus(ctx, id, domain.TaskStatusCanceled)
}

func (s *Service) HoldTask(ctx context.Context, id string) (*domain.Task, error) {
	return s.setStatus(ctx, id, domain.TaskStatusOnHold)
}

func (s *Service) ReopenTask(ctx context.Context, id string) (*domain.Task, error) {
	return s.setStatus(ctx, id, domain.TaskStatusPending)
}

// update fails with ErrNotFound when the task was deleted after it was read.
func (s *Service) update(ctx context.Context, t *domain.Task) error {
	found, err := s.repo.Update(ctx, t)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("task %s: %w", t.ID, domain.ErrNotFound)
	}
	return nil
}

// setStatus overwrites the status; no transition is refused.
func (s *Service) setStatus(ctx context.Context, id string, status domain.TaskStatus) (*domain.Task, error) {
	t, err := s.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := t.Status
	t.Status = status
	t.UpdatedAt = s.now()

	if err := s.update(ctx, t); err != nil {
		return nil, err
	}

	telemetry.TaskStatusChangesTotal.WithLabelValues(string(status)).Inc()
	s.emit(ctx, domain.EventTaskStatusChanged, t.ID, map[string]string{
		"title":  t.Title,
		"from":   string(previous),
		"status": string(status),
	})
	return t, nil
}

// GetUpcomingTasks returns at most limit open tasks starting now or later,
// soonest first. A zero limit yields an empty list.
func (s *Service) GetUpcomingTasks(ctx context.Context, limit int) ([]domain.Task, error) {
	if limit < 0 {
		return nil, fmt.Errorf("%w: limit must not be negative, got %d", domain.ErrValidation, limit)
	}
	tasks, err := s.repo.FindAll(ctx, domain.TaskFilter{})
	if err != nil {
		return nil, err
	}

	now := s.now()
	type entry struct {
		task  domain.Task
		start time.Time
	}
	upcoming := make([]entry, 0, len(tasks))
	for _, t := range tasks {
		if !t.Status.Open() {
			continue
		}
		start, err := t.Start()
		if err != nil {
			s.log.Warn("Skipping task with invalid time", zap.String("task_id", t.ID), zap.Error(err))
			continue
		}
		if start.Before(now) {
			continue
		}
		upcoming = append(upcoming, entry{task: t, start: start})
	}
	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].start.Before(upcoming[j].start)
	})

	if len(upcoming) > limit {
		upcoming = upcoming[:limit]
	}
	out := make([]domain.Task, len(upcoming))
	for i, e := range upcoming {
		out[i] = e.task
	}
	return out, nil
}

// GetTasksForDate returns every task on the same calendar day as date.
func (s *Service) GetTasksForDate(ctx context.Context, date time.Time) ([]domain.Task, error) {
	tasks, err := s.repo.FindAll(ctx, domain.TaskFilter{})
	if err != nil {
		return nil, err
	}

	day := date.In(s.loc)
	out := make([]domain.Task, 0)
	for _, t := range tasks {
		if domain.SameDay(t.Date, day) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Time < out[j].Time
	})
	return out, nil
}

func (s *Service) CalendarLink(ctx context.Context, id string, provider ports.CalendarProvider) (string, error) {
	t, err := s.GetTask(ctx, id)
	if err != nil {
		return "", err
	}
	return calendarLink(*t, provider, s.loc)
}

func (s *Service) emit(ctx context.Context, typ domain.EventType, subjectID string, payload map[string]string) {
	s.events.Publish(ctx, domain.NewEvent(typ, domain.ActorID(ctx), subjectID, payload))
}

func validateTask(t domain.Task) error {
	if t.Title == "" {
		return fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if t.Date.IsZero() {
		return fmt.Errorf("%w: date is required", domain.ErrValidation)
	}
	if !t.Type.Valid() {
		return fmt.Errorf("%w: unknown task type %q", domain.ErrValidation, t.Type)
	}
	if !t.Status.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidStatus, t.Status)
	}
	if t.Time != "" {
		if _, _, err := domain.ParseClock(t.Time); err != nil {
			return err
		}
	}
	if a := t.AssociatedWith; a != nil && a.Type != domain.AssociationLead && a.Type != domain.AssociationClient {
		return fmt.Errorf("%w: association type must be lead or client", domain.ErrValidation)
	}
	return nil
}
