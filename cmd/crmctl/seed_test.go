package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/imob-crm/internal/adapter/storage/snapshot"
	"github.com/seu-repo/imob-crm/internal/domain"
	"github.com/seu-repo/imob-crm/internal/mocks"
	"github.com/seu-repo/imob-crm/internal/service/crm"
	"github.com/seu-repo/imob-crm/internal/service/task"
	"github.com/seu-repo/imob-crm/internal/service/user"
)

const sampleSeed = `
users:
  - name: Marie Dupont
    email: marie@agence.fr
    role: Agent immobilier
    password: visite2024
  - name: Paul Martin
    email: paul@agence.fr
    role: Stagiaire
leads:
  - name: Jean Moreau
    source: Site web
    budget: 450 000 €
    assignedTo: marie@agence.fr
tasks:
  - title: Visite T3 Bastille
    date: 2030-06-12
    time: "14:30"
    type: visit
    client: Jean Moreau
`

func TestParseSeedFile(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		t.Skipf("timezone data unavailable: %v", err)
	}

	f, err := parseSeedFile([]byte(sampleSeed), paris)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	users := f.userInputs()
	if len(users) != 2 || users[0].Role != domain.RoleAgent || users[1].Password != "" {
		t.Errorf("unexpected users: %+v", users)
	}
	leads := f.leadInputs()
	if len(leads) != 1 || leads[0].Budget != "450 000 €" {
		t.Errorf("unexpected leads: %+v", leads)
	}

	tasks, err := f.taskInputs()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	want := time.Date(2030, 6, 12, 0, 0, 0, 0, paris)
	if !tasks[0].Date.Equal(want) {
		t.Errorf("expected %v, got %v", want, tasks[0].Date)
	}
	if tasks[0].Type != domain.TaskTypeVisit {
		t.Errorf("expected visit, got %q", tasks[0].Type)
	}
}

func TestParseSeedFile_Malformed(t *testing.T) {
	if _, err := parseSeedFile([]byte("users: [unterminated"), time.UTC); err == nil {
		t.Fatal("expected parse error")
	}

	f, err := parseSeedFile([]byte("tasks:\n  - title: Appel\n    date: 12/06/2030\n"), time.UTC)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := f.taskInputs(); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestSeedFile_Apply(t *testing.T) {
	// Arrange
	ctx := context.Background()
	ids := mocks.NewMockIDAllocator()
	store, err := snapshot.Open(ctx, mocks.NewMockSnapshotStore(), ids, zap.NewNop())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	events := &mocks.MockEventPublisher{}
	users := user.NewService(store.Users(), ids, &mocks.MockAuthService{}, events, zap.NewNop())
	leads := crm.NewService(store.Leads(), store.Clients(), ids, events, zap.NewNop())
	tasks := task.NewService(store.Tasks(), ids, events, time.UTC, zap.NewNop())

	f, err := parseSeedFile([]byte(sampleSeed), time.UTC)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// Act
	res, err := f.apply(ctx, users, leads, tasks)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if res != (seedResult{users: 2, leads: 1, tasks: 1}) {
		t.Errorf("unexpected result %+v", res)
	}
	pending, _ := users.ListUsers(ctx, domain.UserFilter{Status: domain.UserStatusPending})
	if len(pending) != 1 || pending[0].Email != "paul@agence.fr" {
		t.Errorf("expected Paul pending without password, got %+v", pending)
	}

	// A second run trips over the existing e-mail.
	if _, err := f.apply(ctx, users, leads, tasks); !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Errorf("expected duplicate e-mail, got %v", err)
	}
}

func TestPrintRoles(t *testing.T) {
	var buf bytes.Buffer

	if err := printRoles(&buf, domain.DefaultRoles()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != len(domain.DefaultRoles())+1 {
		t.Errorf("expected header and %d roles, got %d lines", len(domain.DefaultRoles()), len(lines))
	}
	if !strings.Contains(buf.String(), "Comptable") {
		t.Error("expected role names in output")
	}
}
