package auth

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/seu-repo/imob-crm/internal/domain"
	"github.com/seu-repo/imob-crm/internal/ports"
)

// Policy maps (action, resource) pairs onto permissions and checks the actor's
// permission set. Roles are not consulted: a user's effective permissions are
// whatever was stored on the account.
type Policy struct {
	rules map[ports.Resource]map[ports.Action]domain.Permission
	log   *zap.Logger
}

var _ ports.Policy = (*Policy)(nil)

func NewPolicy(log *zap.Logger) *Policy {
	rules := map[ports.Resource]map[ports.Action]domain.Permission{
		ports.ResourceDashboard: {
			ports.ActionView: domain.PermViewDashboard,
		},
		ports.ResourceUsers: {
			ports.ActionView:   domain.PermViewUsers,
			ports.ActionCreate: domain.PermCreateUsers,
			ports.ActionUpdate: domain.PermEditUsers,
			ports.ActionDelete: domain.PermDeleteUsers,
		},
		ports.ResourceRoles: {
			ports.ActionView:   domain.PermViewUsers,
			ports.ActionUpdate: domain.PermManageRoles,
		},
		ports.ResourceLeads: {
			ports.ActionView:    domain.PermViewLeads,
			ports.ActionCreate:  domain.PermCreateLeads,
			ports.ActionUpdate:  domain.PermEditLeads,
			ports.ActionDelete:  domain.PermDeleteLeads,
			ports.ActionConvert: domain.PermConvertLeads,
			ports.ActionExport:  domain.PermExportData,
		},
		ports.ResourceClients: {
			ports.ActionView:   domain.PermViewClients,
			ports.ActionUpdate: domain.PermEditClients,
			ports.ActionDelete: domain.PermDeleteClients,
			ports.ActionExport: domain.PermExportData,
		},
		ports.ResourceTasks: {
			ports.ActionView:   domain.PermViewTasks,
			ports.ActionCreate: domain.PermCreateTasks,
			ports.ActionUpdate: domain.PermEditTasks,
			ports.ActionDelete: domain.PermDeleteTasks,
		},
		ports.ResourceReports: {
			ports.ActionView:   domain.PermViewReports,
			ports.ActionExport: domain.PermExportData,
		},
		ports.ResourceSettings: {
			ports.ActionView:   domain.PermManageSettings,
			ports.ActionUpdate: domain.PermManageSecurity,
		},
	}

	log.Info("access policy initialized", zap.Int("resources", len(rules)))

	return &Policy{rules: rules, log: log}
}

func (p *Policy) Permission(action ports.Action, resource ports.Resource) (domain.Permission, bool) {
	perm, ok := p.rules[resource][action]
	return perm, ok
}

// Can is a flat membership test. Unmapped pairs and a nil actor are denied.
func (p *Policy) Can(ctx context.Context, actor *domain.Actor, action ports.Action, resource ports.Resource) bool {
	perm, ok := p.Permission(action, resource)
	if !ok {
		p.log.Warn("unmapped action attempted",
			zap.String("resource", string(resource)),
			zap.String("action", string(action)),
		)
		return false
	}
	if actor.Has(perm) {
		return true
	}

	actorID := ""
	if actor != nil {
		actorID = actor.ID
	}
	p.log.Warn("permission denied",
		zap.String("actor_id", actorID),
		zap.String("resource", string(resource)),
		zap.String("action", string(action)),
		zap.String("permission", string(perm)),
	)
	return false
}

func (p *Policy) Require(ctx context.Context, actor *domain.Actor, action ports.Action, resource ports.Resource) error {
	if p.Can(ctx, actor, action, resource) {
		return nil
	}
	return fmt.Errorf("%w: %s %s", domain.ErrForbidden, action, resource)
}
