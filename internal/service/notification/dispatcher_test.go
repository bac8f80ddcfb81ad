package notification

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/seu-repo/imob-crm/internal/domain"
	"github.com/seu-repo/imob-crm/internal/mocks"
)

type recordingHub struct {
	mu       sync.Mutex
	messages [][]byte
	needs    []domain.Permission
}

func (h *recordingHub) Broadcast(message []byte, need domain.Permission) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, message)
	h.needs = append(h.needs, need)
}

type fixture struct {
	queue  *mocks.MockMessageQueue
	email  *mocks.MockEmailService
	auth   *mocks.MockAuthService
	hub    *recordingHub
	users  map[string]*domain.User
	client *domain.Client
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		queue: mocks.NewMockMessageQueue(),
		email: &mocks.MockEmailService{},
		auth:  &mocks.MockAuthService{},
		hub:   &recordingHub{},
		users: map[string]*domain.User{},
	}
	users := &mocks.MockUserRepository{
		FindByIDFunc: func(ctx context.Context, id string) (*domain.User, error) {
			return f.users[id], nil
		},
	}
	clients := &mocks.MockClientRepository{
		FindByIDFunc: func(ctx context.Context, id string) (*domain.Client, error) {
			if f.client != nil && f.client.ID == id {
				return f.client, nil
			}
			return nil, nil
		},
	}

	d := NewDispatcher(f.queue, "", users, clients, f.auth, f.email, f.hub, "https://crm.agence.fr/", zap.NewNop())
	if err := d.Start(); err != nil {
		t.Fatalf("failed to start dispatcher: %v", err)
	}
	return f
}

func (f *fixture) publish(t *testing.T, typ domain.EventType, subjectID string, payload map[string]string) {
	t.Helper()
	data, err := json.Marshal(domain.NewEvent(typ, "U001", subjectID, payload))
	if err != nil {
		t.Fatalf("failed to marshal event: %v", err)
	}
	if err := f.queue.Publish("crm.events", data); err != nil {
		t.Fatalf("failed to publish: %v", err)
	}
}

func TestDispatcher_UserCreated_ActiveGetsWelcome(t *testing.T) {
	// Arrange
	f := newFixture(t)
	f.users["U002"] = &domain.User{ID: "U002", Name: "Marie", Email: "marie@agence.fr", Status: domain.UserStatusActive}

	// Act
	f.publish(t, domain.EventUserCreated, "U002", nil)

	// Assert
	if got := f.email.Templates(); !reflect.DeepEqual(got, []string{"welcome"}) {
		t.Fatalf("expected welcome e-mail, got %v", got)
	}
	if f.email.Sent[0].To != "marie@agence.fr" {
		t.Errorf("unexpected recipient %s", f.email.Sent[0].To)
	}
}

func TestDispatcher_UserCreated_PendingGetsInvitation(t *testing.T) {
	// Arrange
	f := newFixture(t)
	f.users["U003"] = &domain.User{ID: "U003", Name: "Paul", Email: "paul@agence.fr", Status: domain.UserStatusPending}
	f.auth.IssueSetupTokenFunc = func(ctx context.Context, u *domain.User) (string, error) {
		return "a.b+c", nil
	}

	// Act
	f.publish(t, domain.EventUserCreated, "U003", nil)

	// Assert
	if got := f.email.Templates(); !reflect.DeepEqual(got, []string{"invitation"}) {
		t.Fatalf("expected invitation e-mail, got %v", got)
	}
	want := "https://crm.agence.fr/setup-password?token=a.b%2Bc"
	if got := f.email.Sent[0].Data["SetupURL"]; got != want {
		t.Errorf("expected setup URL %s, got %v", want, got)
	}
}

func TestDispatcher_UserCreated_TokenFailureSendsNothing(t *testing.T) {
	f := newFixture(t)
	f.users["U003"] = &domain.User{ID: "U003", Email: "paul@agence.fr", Status: domain.UserStatusPending}
	f.auth.IssueSetupTokenFunc = func(ctx context.Context, u *domain.User) (string, error) {
		return "", errors.New("no secret")
	}

	f.publish(t, domain.EventUserCreated, "U003", nil)

	if len(f.email.Sent) != 0 {
		t.Errorf("expected no e-mail, got %v", f.email.Templates())
	}
}

func TestDispatcher_PasswordReset_RespectsNotifyFlag(t *testing.T) {
	f := newFixture(t)
	f.users["U004"] = &domain.User{ID: "U004", Email: "anne@agence.fr"}

	f.publish(t, domain.EventUserPasswordReset, "U004", map[string]string{"notify": "false"})
	f.publish(t, domain.EventUserPasswordReset, "U004", map[string]string{"notify": "true"})

	if got := f.email.Templates(); !reflect.DeepEqual(got, []string{"password_changed"}) {
		t.Fatalf("expected one password_changed e-mail, got %v", got)
	}
}

func TestDispatcher_RoleChangedAndDeleted(t *testing.T) {
	f := newFixture(t)
	f.users["U005"] = &domain.User{ID: "U005", Name: "Luc", Email: "luc@agence.fr", Role: domain.RoleSalesManager}

	f.publish(t, domain.EventUserRoleChanged, "U005", nil)
	delete(f.users, "U005")
	f.publish(t, domain.EventUserDeleted, "U005", map[string]string{"name": "Luc", "email": "luc@agence.fr"})

	if got := f.email.Templates(); !reflect.DeepEqual(got, []string{"role_changed", "account_closed"}) {
		t.Fatalf("unexpected e-mails %v", got)
	}
	if f.email.Sent[1].To != "luc@agence.fr" {
		t.Errorf("expected account_closed to the removed user, got %s", f.email.Sent[1].To)
	}
}

func TestDispatcher_LeadConverted(t *testing.T) {
	tests := []struct {
		name       string
		assignedTo string
		want       []string
	}{
		{"agent e-mail", "agent@agence.fr", []string{"lead_converted"}},
		{"agent name only", "Sophie Martin", []string{}},
		{"unassigned", "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.client = &domain.Client{}
			f.client.ID = "C0009"
			f.client.Name = "Jean Moreau"

			f.publish(t, domain.EventLeadConverted, "C0009", map[string]string{"assignedTo": tt.assignedTo})

			if got := f.email.Templates(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestDispatcher_BroadcastsEveryEvent(t *testing.T) {
	f := newFixture(t)

	f.publish(t, domain.EventTaskCreated, "T0001", map[string]string{"title": "Visite"})
	f.publish(t, domain.EventLeadMoved, "L0001", map[string]string{"status": "Contacté"})
	f.publish(t, domain.EventUserDeleted, "U007", map[string]string{})
	_ = f.queue.Publish("crm.events", []byte("not json"))

	if len(f.hub.messages) != 3 {
		t.Fatalf("expected 3 broadcasts, got %d", len(f.hub.messages))
	}
	wantNeeds := []domain.Permission{domain.PermViewTasks, domain.PermViewLeads, domain.PermViewUsers}
	if !reflect.DeepEqual(f.hub.needs, wantNeeds) {
		t.Errorf("expected broadcasts scoped to %v, got %v", wantNeeds, f.hub.needs)
	}
	var e domain.Event
	if err := json.Unmarshal(f.hub.messages[1], &e); err != nil {
		t.Fatalf("broadcast is not an event: %v", err)
	}
	if e.Type != domain.EventLeadMoved {
		t.Errorf("unexpected type %s", e.Type)
	}
	if len(f.email.Sent) != 0 {
		t.Errorf("expected no e-mail for task and lead moves")
	}
}
