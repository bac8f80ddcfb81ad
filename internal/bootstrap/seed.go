package bootstrap

import (
	"context"

	"go.uber.org/zap"

	"github.com/seu-repo/imob-crm/internal/domain"
	"github.com/seu-repo/imob-crm/internal/ports"
	"github.com/seu-repo/imob-crm/pkg/config"
)

// SeedAdmin creates the first Super Admin when the user store is empty.
// Without a configured password the account starts pending and receives an
// invitation. It returns nil when nothing had to be done.
func SeedAdmin(ctx context.Context, cfg config.SeedConfig, repo ports.UserRepository, users ports.UserService, log *zap.Logger) (*domain.User, error) {
	if cfg.AdminEmail == "" {
		return nil, nil
	}
	n, err := repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, nil
	}

	admin, err := users.AddUser(ctx, ports.UserInput{
		Name:     cfg.AdminName,
		Email:    cfg.AdminEmail,
		Role:     domain.RoleSuperAdmin,
		Password: cfg.AdminPassword,
	})
	if err != nil {
		return nil, err
	}

	log.Info("Seeded first administrator",
		zap.String("user_id", admin.ID),
		zap.String("email", admin.Email),
		zap.String("status", string(admin.Status)),
	)
	return admin, nil
}
