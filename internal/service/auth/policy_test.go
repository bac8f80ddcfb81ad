package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/seu-repo/imob-crm/internal/domain"
	"github.com/seu-repo/imob-crm/internal/ports"
)

func TestPolicy_GrantsOnlyHeldPermissions(t *testing.T) {
	// Arrange
	policy := NewPolicy(newTestLogger())
	ctx := context.Background()
	actor := &domain.Actor{ID: "U002", Permissions: []domain.Permission{domain.PermViewLeads}}

	// Act & Assert
	if !policy.Can(ctx, actor, ports.ActionView, ports.ResourceLeads) {
		t.Error("expected view leads to be granted")
	}
	if policy.Can(ctx, actor, ports.ActionDelete, ports.ResourceLeads) {
		t.Error("expected delete leads to be denied")
	}
}

func TestPolicy_IgnoresRoleName(t *testing.T) {
	// Arrange
	policy := NewPolicy(newTestLogger())
	actor := &domain.Actor{ID: "U001", Role: domain.RoleSuperAdmin}

	// Act
	allowed := policy.Can(context.Background(), actor, ports.ActionView, ports.ResourceDashboard)

	// Assert
	if allowed {
		t.Error("expected an actor with no permissions to be denied regardless of role")
	}
}

func TestPolicy_MatchesDefaultRoles(t *testing.T) {
	policy := NewPolicy(newTestLogger())
	ctx := context.Background()

	for _, role := range domain.DefaultRoles() {
		actor := &domain.Actor{ID: "U001", Role: role.Name, Permissions: role.Permissions}
		for resource, actions := range policy.rules {
			for action, perm := range actions {
				got := policy.Can(ctx, actor, action, resource)
				want := role.Has(perm)
				if got != want {
					t.Errorf("%s: %s %s = %v, want %v", role.Name, action, resource, got, want)
				}
			}
		}
	}
}

func TestPolicy_NilActorDenied(t *testing.T) {
	policy := NewPolicy(newTestLogger())

	err := policy.Require(context.Background(), nil, ports.ActionView, ports.ResourceLeads)

	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestPolicy_UnmappedPairDenied(t *testing.T) {
	policy := NewPolicy(newTestLogger())
	actor := &domain.Actor{ID: "U001", Permissions: domain.AllPermissions}

	if policy.Can(context.Background(), actor, ports.ActionConvert, ports.ResourceTasks) {
		t.Error("expected unmapped pair to be denied")
	}
	if _, ok := policy.Permission(ports.ActionConvert, ports.ResourceTasks); ok {
		t.Error("expected no permission for convert tasks")
	}
}

func TestPolicy_SettingsSplit(t *testing.T) {
	// Administrateur lacks manage_security and cannot change security settings.
	policy := NewPolicy(newTestLogger())
	admin, _ := domain.RoleByName(domain.RoleAdmin)
	actor := &domain.Actor{ID: "U001", Role: admin.Name, Permissions: admin.Permissions}
	ctx := context.Background()

	if !policy.Can(ctx, actor, ports.ActionView, ports.ResourceSettings) {
		t.Error("expected admin to view settings")
	}
	if policy.Can(ctx, actor, ports.ActionUpdate, ports.ResourceSettings) {
		t.Error("expected admin to be denied security settings")
	}
}
