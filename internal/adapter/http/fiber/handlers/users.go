package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/imob-crm/internal/domain"
	"github.com/seu-repo/imob-crm/internal/i18n"
	"github.com/seu-repo/imob-crm/internal/ports"
)

// UserHandler serves the administration screens for accounts and roles.
type UserHandler struct {
	notifier
	service ports.UserService
	log     *zap.Logger
}

func NewUserHandler(service ports.UserService, tr *i18n.Translator, log *zap.Logger) *UserHandler {
	return &UserHandler{
		notifier: notifier{tr: tr},
		service:  service,
		log:      log,
	}
}

func (h *UserHandler) Roles(c *fiber.Ctx) error {
	roles := domain.DefaultRoles()
	return list(c, roles, len(roles))
}

func (h *UserHandler) List(c *fiber.Ctx) error {
	users, err := h.service.ListUsers(c.UserContext(), domain.UserFilter{
		Role:   domain.RoleName(c.Query("role")),
		Status: domain.UserStatus(c.Query("status")),
		Search: c.Query("search"),
	})
	if err != nil {
		return err
	}

	public := make([]domain.User, 0, len(users))
	for i := range users {
		public = append(public, users[i].Public())
	}
	return list(c, public, len(public))
}

func (h *UserHandler) Create(c *fiber.Ctx) error {
	var in ports.UserInput
	if err := parseBody(c, &in); err != nil {
		return err
	}

	user, err := h.service.AddUser(c.UserContext(), in)
	if err != nil {
		return err
	}
	return h.done(c, fiber.StatusCreated, user.Public(), domain.EventUserCreated, map[string]string{"name": user.Name})
}

func (h *UserHandler) Get(c *fiber.Ctx) error {
	user, err := h.service.GetUser(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return one(c, user.Public())
}

func (h *UserHandler) Update(c *fiber.Ctx) error {
	var patch ports.UserPatch
	if err := parseBody(c, &patch); err != nil {
		return err
	}

	user, err := h.service.UpdateUser(c.UserContext(), c.Params("id"), patch)
	if err != nil {
		return err
	}
	return h.done(c, fiber.StatusOK, user.Public(), domain.EventUserUpdated, map[string]string{"name": user.Name})
}

type RoleRequest struct {
	Role domain.RoleName `json:"role"`
}

func (h *UserHandler) ChangeRole(c *fiber.Ctx) error {
	var req RoleRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, err := h.service.UpdateUserRole(c.UserContext(), c.Params("id"), req.Role)
	if err != nil {
		return err
	}
	return h.done(c, fiber.StatusOK, user.Public(), domain.EventUserRoleChanged, map[string]string{
		"name": user.Name,
		"role": string(user.Role),
	})
}

type StatusRequest struct {
	Status domain.UserStatus `json:"status"`
}

func (h *UserHandler) ChangeStatus(c *fiber.Ctx) error {
	var req StatusRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, err := h.service.UpdateUserStatus(c.UserContext(), c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return h.done(c, fiber.StatusOK, user.Public(), domain.EventUserStatusChanged, map[string]string{
		"name":   user.Name,
		"status": string(user.Status),
	})
}

type PasswordResetRequest struct {
	Password string `json:"password"`
	Notify   bool   `json:"notify"`
}

func (h *UserHandler) ResetPassword(c *fiber.Ctx) error {
	var req PasswordResetRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	ctx := c.UserContext()
	id := c.Params("id")
	if err := h.service.ResetPasswordManually(ctx, id, req.Password, req.Notify); err != nil {
		return err
	}

	user, err := h.service.GetUser(ctx, id)
	if err != nil {
		return err
	}
	return h.done(c, fiber.StatusOK, nil, domain.EventUserPasswordReset, map[string]string{"name": user.Name})
}

type TwoFactorRequest struct {
	Enabled bool `json:"enabled"`
}

func (h *UserHandler) SetTwoFactor(c *fiber.Ctx) error {
	var req TwoFactorRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, err := h.service.SetTwoFactor(c.UserContext(), c.Params("id"), req.Enabled)
	if err != nil {
		return err
	}
	return h.done(c, fiber.StatusOK, user.Public(), domain.EventUserTwoFactorChanged, map[string]string{"name": user.Name})
}

func (h *UserHandler) Delete(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id := c.Params("id")

	user, err := h.service.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if err := h.service.DeleteUser(ctx, id); err != nil {
		return err
	}
	return h.done(c, fiber.StatusOK, nil, domain.EventUserDeleted, map[string]string{"name": user.Name})
}
