package user

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/imob-crm/internal/domain"
	"github.com/seu-repo/imob-crm/internal/observability/telemetry"
	"github.com/seu-repo/imob-crm/internal/ports"
)

var _ ports.UserService = (*Service)(nil)

// Service manages back-office accounts. Returned users never carry a password hash.
type Service struct {
	repo   ports.UserRepository
	ids    ports.IDAllocator
	auth   ports.AuthService
	events ports.EventPublisher
	log    *zap.Logger
	now    func() time.Time
}

func NewService(repo ports.UserRepository, ids ports.IDAllocator, auth ports.AuthService, events ports.EventPublisher, log *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		ids:    ids,
		auth:   auth,
		events: events,
		log:    log,
		now:    time.Now,
	}
}

// AddUser creates an account. Without custom permissions the role's permission
// set is copied. Without a password the account waits for the invitation link.
func (s *Service) AddUser(ctx context.Context, in ports.UserInput) (*domain.User, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)
	if err := validateIdentity(name, email); err != nil {
		return nil, err
	}
	role, ok := domain.RoleByName(in.Role)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownRole, in.Role)
	}
	if err := s.ensureEmailFree(ctx, email, ""); err != nil {
		return nil, err
	}

	perms := role.Permissions
	if in.Permissions != nil {
		if err := validatePermissions(in.Permissions); err != nil {
			return nil, err
		}
		perms = dedupe(in.Permissions)
	}
	if err := grantable(ctx, nil, perms); err != nil {
		return nil, err
	}

	status := in.Status
	var hash string
	if in.Password != "" {
		h, err := s.auth.HashPassword(in.Password)
		if err != nil {
			return nil, err
		}
		hash = h
		if status == "" {
			status = domain.UserStatusActive
		}
	} else {
		// No one can log in without a password, whatever status was asked for.
		status = domain.UserStatusPending
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, status)
	}

	n, err := s.ids.Next(ctx, domain.PrefixUser)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate id: %w", err)
	}

	now := s.now()
	u := domain.User{
		ID:               domain.FormatID(domain.PrefixUser, n),
		Name:             name,
		Email:            email,
		Role:             role.Name,
		Status:           status,
		Permissions:      perms,
		TwoFactorEnabled: in.TwoFactorEnabled,
		PasswordHash:     hash,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repo.Create(ctx, &u); err != nil {
		return nil, err
	}

	telemetry.UserOperationsTotal.WithLabelValues("create").Inc()
	s.log.Info("User created",
		zap.String("user_id", u.ID),
		zap.String("role", string(u.Role)),
		zap.String("status", string(u.Status)),
	)
	s.emit(ctx, domain.EventUserCreated, u.ID, map[string]string{
		"name":   u.Name,
		"email":  u.Email,
		"role":   string(u.Role),
		"status": string(u.Status),
	})

	out := u.Public()
	return &out, nil
}

func (s *Service) GetUser(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	out := u.Public()
	return &out, nil
}

func (s *Service) ListUsers(ctx context.Context, filter domain.UserFilter) ([]domain.User, error) {
	users, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i] = users[i].Public()
	}
	return users, nil
}

func (s *Service) UpdateUser(ctx context.Context, id string, patch ports.UserPatch) (*domain.User, error) {
	u, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		u.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Email != nil {
		u.Email = strings.TrimSpace(*patch.Email)
	}
	if err := validateIdentity(u.Name, u.Email); err != nil {
		return nil, err
	}
	if patch.Email != nil {
		if err := s.ensureEmailFree(ctx, u.Email, u.ID); err != nil {
			return nil, err
		}
	}
	if patch.Permissions != nil {
		if err := validatePermissions(*patch.Permissions); err != nil {
			return nil, err
		}
		next := dedupe(*patch.Permissions)
		if err := grantable(ctx, u.Permissions, next); err != nil {
			return nil, err
		}
		u.Permissions = next
	}

	return s.save(ctx, u, "update", domain.EventUserUpdated, map[string]string{"name": u.Name})
}

// UpdateUserRole replaces the permission set with exactly the role's one.
// Custom grants are dropped.
func (s *Service) UpdateUserRole(ctx context.Context, id string, roleName domain.RoleName) (*domain.User, error) {
	role, ok := domain.RoleByName(roleName)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownRole, roleName)
	}
	u, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := grantable(ctx, u.Permissions, role.Permissions); err != nil {
		return nil, err
	}

	previous := u.Role
	u.Role = role.Name
	u.Permissions = role.Permissions

	return s.save(ctx, u, "role", domain.EventUserRoleChanged, map[string]string{
		"name":     u.Name,
		"email":    u.Email,
		"role":     string(u.Role),
		"previous": string(previous),
	})
}

func (s *Service) UpdateUserStatus(ctx context.Context, id string, status domain.UserStatus) (*domain.User, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, status)
	}
	u, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if status == domain.UserStatusActive && u.PasswordHash == "" {
		return nil, fmt.Errorf("%w: user %s has no password yet", domain.ErrValidation, id)
	}

	previous := u.Status
	u.Status = status

	return s.save(ctx, u, "status", domain.EventUserStatusChanged, map[string]string{
		"name":     u.Name,
		"status":   string(u.Status),
		"previous": string(previous),
	})
}

// ResetPasswordManually stores a new hash. With notify the user is told by
// e-mail that the password changed; the password itself is never sent.
func (s *Service) ResetPasswordManually(ctx context.Context, id, password string, notify bool) error {
	u, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	hash, err := s.auth.HashPassword(password)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	if u.Status == domain.UserStatusPending {
		u.Status = domain.UserStatusActive
	}

	_, err = s.save(ctx, u, "password", domain.EventUserPasswordReset, map[string]string{
		"name":   u.Name,
		"email":  u.Email,
		"notify": strconv.FormatBool(notify),
	})
	return err
}

func (s *Service) SetTwoFactor(ctx context.Context, id string, enabled bool) (*domain.User, error) {
	u, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	u.TwoFactorEnabled = enabled

	return s.save(ctx, u, "two_factor", domain.EventUserTwoFactorChanged, map[string]string{
		"name":    u.Name,
		"enabled": strconv.FormatBool(enabled),
	})
}

// DeleteUser removes the account. Leads and tasks naming the user are left as they are.
func (s *Service) DeleteUser(ctx context.Context, id string) error {
	u, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.auth.Invalidate(ctx, id)

	telemetry.UserOperationsTotal.WithLabelValues("delete").Inc()
	s.log.Info("User deleted", zap.String("user_id", id))
	s.emit(ctx, domain.EventUserDeleted, id, map[string]string{
		"name":  u.Name,
		"email": u.Email,
	})
	return nil
}

func (s *Service) find(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	return u, nil
}

func (s *Service) save(ctx context.Context, u *domain.User, op string, typ domain.EventType, payload map[string]string) (*domain.User, error) {
	u.UpdatedAt = s.now()
	found, err := s.repo.Update(ctx, u)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("user %s: %w", u.ID, domain.ErrNotFound)
	}
	s.auth.Invalidate(ctx, u.ID)

	telemetry.UserOperationsTotal.WithLabelValues(op).Inc()
	s.log.Info("User updated", zap.String("user_id", u.ID), zap.String("operation", op))
	s.emit(ctx, typ, u.ID, payload)

	out := u.Public()
	return &out, nil
}

func (s *Service) ensureEmailFree(ctx context.Context, email, selfID string) error {
	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != selfID {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateEmail, email)
	}
	return nil
}

func (s *Service) emit(ctx context.Context, typ domain.EventType, subjectID string, payload map[string]string) {
	s.events.Publish(ctx, domain.NewEvent(typ, domain.ActorID(ctx), subjectID, payload))
}
