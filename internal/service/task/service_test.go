package task

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/imob-crm/internal/adapter/storage/snapshot"
	"github.com/seu-repo/imob-crm/internal/domain"
	"github.com/seu-repo/imob-crm/internal/mocks"
	"github.com/seu-repo/imob-crm/internal/ports"
)

var paris = time.FixedZone("CEST", 2*60*60)

func newTestLogger() *zap.Logger {
	logger, _ := zap.NewDevelopment()
	return logger
}

func newTestService(t *testing.T, now time.Time) (*Service, *snapshot.Store, *mocks.MockEventPublisher) {
	t.Helper()
	store, err := snapshot.Open(context.Background(), mocks.NewMockSnapshotStore(), mocks.NewMockIDAllocator(), zap.NewNop())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	events := &mocks.MockEventPublisher{}
	svc := NewService(store.Tasks(), mocks.NewMockIDAllocator(), events, paris, newTestLogger())
	svc.now = func() time.Time { return now }
	return svc, store, events
}

func seed(t *testing.T, store *snapshot.Store, tasks ...domain.Task) {
	t.Helper()
	for i := range tasks {
		if err := store.Tasks().Create(context.Background(), &tasks[i]); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}
}

func TestGetUpcomingTasks_Scenario(t *testing.T) {
	// Arrange
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, paris)
	svc, store, _ := newTestService(t, now)
	seed(t, store,
		domain.Task{ID: "T0001", Title: "Hier", Date: now.AddDate(0, 0, -1), Type: domain.TaskTypeCall, Status: domain.TaskStatusPending},
		domain.Task{ID: "T0002", Title: "Aujourd'hui", Date: now, Type: domain.TaskTypeCall, Status: domain.TaskStatusCompleted},
		domain.Task{ID: "T0003", Title: "Demain", Date: now.AddDate(0, 0, 1), Type: domain.TaskTypeVisit, Status: domain.TaskStatusPending},
		domain.Task{ID: "T0004", Title: "Dans 3 jours", Date: now.AddDate(0, 0, 3), Type: domain.TaskTypeMeeting, Status: domain.TaskStatusOnHold},
	)

	// Act
	got, err := svc.GetUpcomingTasks(context.Background(), 2)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(got))
	}
	if got[0].ID != "T0003" || got[1].ID != "T0004" {
		t.Errorf("expected [T0003 T0004], got [%s %s]", got[0].ID, got[1].ID)
	}
}

func TestGetUpcomingTasks_UsesTimeOfDayAndLimit(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, paris)
	svc, store, _ := newTestService(t, now)
	day := time.Date(2024, 6, 10, 0, 0, 0, 0, paris)
	seed(t, store,
		domain.Task{ID: "T0001", Title: "Matin", Date: day, Time: "09:00", Type: domain.TaskTypeCall, Status: domain.TaskStatusPending},
		domain.Task{ID: "T0002", Title: "Soir", Date: day, Time: "18:30", Type: domain.TaskTypeCall, Status: domain.TaskStatusPending},
		domain.Task{ID: "T0003", Title: "Après-midi", Date: day, Time: "14:00", Type: domain.TaskTypeCall, Status: domain.TaskStatusPending},
	)

	got, _ := svc.GetUpcomingTasks(context.Background(), 10)

	if len(got) != 2 || got[0].ID != "T0003" || got[1].ID != "T0002" {
		t.Errorf("expected [T0003 T0002], got %+v", got)
	}
}

func TestGetUpcomingTasks_ZeroAndNegativeLimit(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, paris)
	svc, store, _ := newTestService(t, now)
	seed(t, store, domain.Task{ID: "T0001", Title: "Demain", Date: now.AddDate(0, 0, 1), Type: domain.TaskTypeCall, Status: domain.TaskStatusPending})

	got, err := svc.GetUpcomingTasks(context.Background(), 0)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no tasks for limit 0, got %d", len(got))
	}

	if _, err := svc.GetUpcomingTasks(context.Background(), -1); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestGetTasksForDate_MatchesCalendarDay(t *testing.T) {
	now := time.Date(2024, 6, 10, 8, 0, 0, 0, paris)
	svc, store, _ := newTestService(t, now)
	seed(t, store,
		domain.Task{ID: "T0001", Title: "A", Date: time.Date(2024, 6, 10, 0, 0, 0, 0, paris), Time: "16:00", Type: domain.TaskTypeCall, Status: domain.TaskStatusPending},
		domain.Task{ID: "T0002", Title: "B", Date: time.Date(2024, 6, 11, 0, 0, 0, 0, paris), Type: domain.TaskTypeCall, Status: domain.TaskStatusPending},
		domain.Task{ID: "T0003", Title: "C", Date: time.Date(2024, 6, 10, 0, 0, 0, 0, paris), Time: "09:15", Type: domain.TaskTypeEmail, Status: domain.TaskStatusCompleted},
	)

	got, err := svc.GetTasksForDate(context.Background(), time.Date(2024, 6, 10, 23, 0, 0, 0, paris))

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got) != 2 || got[0].ID != "T0003" || got[1].ID != "T0001" {
		t.Errorf("expected [T0003 T0001], got %+v", got)
	}
}

func TestAddTask_AssignsIDAndDefaults(t *testing.T) {
	now := time.Date(2024, 6, 10, 8, 0, 0, 0, paris)
	svc, _, events := newTestService(t, now)

	task, err := svc.AddTask(context.Background(), ports.TaskInput{
		Title:  "Visite appartement",
		Date:   now.AddDate(0, 0, 2),
		Type:   domain.TaskTypeVisit,
		Time:   "10:30",
		Client: "Jeanne Martin",
		AssociatedWith: &domain.Association{
			Type: domain.AssociationLead, ID: "L0001", Name: "Jeanne Martin",
		},
	})

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if task.ID != "T0001" {
		t.Errorf("expected T0001, got %s", task.ID)
	}
	if task.Status != domain.TaskStatusPending {
		t.Errorf("expected pending, got %s", task.Status)
	}
	if events.Last().Type != domain.EventTaskCreated {
		t.Errorf("expected task.created event, got %s", events.Last().Type)
	}
}

func TestAddTask_Validation(t *testing.T) {
	now := time.Date(2024, 6, 10, 8, 0, 0, 0, paris)
	cases := []struct {
		name string
		in   ports.TaskInput
	}{
		{"missing title", ports.TaskInput{Date: now, Type: domain.TaskTypeCall}},
		{"missing date", ports.TaskInput{Title: "A", Type: domain.TaskTypeCall}},
		{"unknown type", ports.TaskInput{Title: "A", Date: now, Type: "fax"}},
		{"bad time", ports.TaskInput{Title: "A", Date: now, Type: domain.TaskTypeCall, Time: "25h"}},
		{"bad association", ports.TaskInput{Title: "A", Date: now, Type: domain.TaskTypeCall,
			AssociatedWith: &domain.Association{Type: "property", ID: "P1"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, _, _ := newTestService(t, now)

			_, err := svc.AddTask(context.Background(), tc.in)

			if !errors.Is(err, domain.ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestStatusTransitions(t *testing.T) {
	now := time.Date(2024, 6, 10, 8, 0, 0, 0, paris)
	svc, store, events := newTestService(t, now)
	seed(t, store, domain.Task{ID: "T0001", Title: "Appel", Date: now, Type: domain.TaskTypeCall, Status: domain.TaskStatusPending})
	ctx := context.Background()

	steps := []struct {
		do   func(context.Context, string) (*domain.Task, error)
		want domain.TaskStatus
	}{
		{svc.HoldTask, domain.TaskStatusOnHold},
		{svc.ReopenTask, domain.TaskStatusPending},
		{svc.CompleteTask, domain.TaskStatusCompleted},
		{svc.CancelTask, domain.TaskStatusCanceled},
	}
	for _, step := range steps {
		got, err := step.do(ctx, "T0001")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got.Status != step.want {
			t.Errorf("expected %s, got %s", step.want, got.Status)
		}
	}
	if len(events.Events) != 4 {
		t.Errorf("expected 4 status events, got %d", len(events.Events))
	}

	if _, err := svc.CompleteTask(ctx, "T0404"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// deletingRepo removes the task right after handing it out, as a concurrent
// DELETE landing between the read and the write would.
type deletingRepo struct {
	ports.TaskRepository
}

func (r deletingRepo) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	t, err := r.TaskRepository.FindByID(ctx, id)
	if t != nil {
		_, _ = r.TaskRepository.Delete(ctx, id)
	}
	return t, err
}

func TestStatusChange_DoesNotResurrectDeletedTask(t *testing.T) {
	// Arrange
	now := time.Date(2024, 6, 10, 8, 0, 0, 0, paris)
	svc, store, events := newTestService(t, now)
	seed(t, store, domain.Task{ID: "T0001", Title: "Appel", Date: now, Type: domain.TaskTypeCall, Status: domain.TaskStatusPending})
	svc.repo = deletingRepo{store.Tasks()}

	// Act
	_, err := svc.CompleteTask(context.Background(), "T0001")

	// Assert
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if got, _ := store.Tasks().FindByID(context.Background(), "T0001"); got != nil {
		t.Error("expected deleted task to stay deleted")
	}
	if len(events.Events) != 0 {
		t.Errorf("expected no event, got %d", len(events.Events))
	}
}

func TestCalendarLink_Google(t *testing.T) {
	now := time.Date(2024, 6, 10, 8, 0, 0, 0, paris)
	svc, store, _ := newTestService(t, now)
	seed(t, store, domain.Task{
		ID: "T0001", Title: "Visite T3", Description: "Clés à l'agence",
		Date: time.Date(2024, 6, 12, 0, 0, 0, 0, paris), Time: "10:30",
		Type: domain.TaskTypeVisit, Client: "Jeanne", Status: domain.TaskStatusPending,
	})

	link, err := svc.CalendarLink(context.Background(), "T0001", ports.CalendarGoogle)

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	u, _ := url.Parse(link)
	q := u.Query()
	if !strings.HasPrefix(link, googleCalendarURL) {
		t.Errorf("unexpected link %s", link)
	}
	if q.Get("text") != "Visite T3" {
		t.Errorf("expected title, got %q", q.Get("text"))
	}
	// 10:30 at UTC+2 is 08:30 UTC.
	if q.Get("dates") != "20240612T083000Z/20240612T093000Z" {
		t.Errorf("unexpected dates %q", q.Get("dates"))
	}
	if !strings.Contains(q.Get("details"), "Client : Jeanne") {
		t.Errorf("expected client in details, got %q", q.Get("details"))
	}
}

func TestCalendarLink_OutlookAllDay(t *testing.T) {
	now := time.Date(2024, 6, 10, 8, 0, 0, 0, paris)
	svc, store, _ := newTestService(t, now)
	seed(t, store, domain.Task{
		ID: "T0001", Title: "Relance", Date: time.Date(2024, 6, 12, 0, 0, 0, 0, paris),
		Type: domain.TaskTypeEmail, Status: domain.TaskStatusPending,
	})

	link, err := svc.CalendarLink(context.Background(), "T0001", ports.CalendarOutlook)

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	q, _ := url.ParseQuery(strings.SplitN(link, "?", 2)[1])
	if q.Get("startdt") != "2024-06-12" || q.Get("enddt") != "2024-06-13" || q.Get("allday") != "true" {
		t.Errorf("unexpected all-day range: %v", q)
	}
}

func TestCalendarLink_UnknownProvider(t *testing.T) {
	now := time.Date(2024, 6, 10, 8, 0, 0, 0, paris)
	svc, store, _ := newTestService(t, now)
	seed(t, store, domain.Task{ID: "T0001", Title: "A", Date: now, Type: domain.TaskTypeCall, Status: domain.TaskStatusPending})

	_, err := svc.CalendarLink(context.Background(), "T0001", "yahoo")

	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}
