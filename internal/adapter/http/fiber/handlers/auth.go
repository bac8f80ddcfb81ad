package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/imob-crm/internal/adapter/http/fiber/middleware"
	"github.com/seu-repo/imob-crm/internal/domain"
	"github.com/seu-repo/imob-crm/internal/i18n"
	"github.com/seu-repo/imob-crm/internal/ports"
)

type AuthHandler struct {
	notifier
	service ports.AuthService
	log     *zap.Logger
}

func NewAuthHandler(service ports.AuthService, tr *i18n.Translator, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		notifier: notifier{tr: tr},
		service:  service,
		log:      log,
	}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return fiber.NewError(fiber.StatusBadRequest, "email and password are required")
	}

	tokens, user, err := h.service.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		h.log.Warn("Login failed", zap.String("email", req.Email), zap.Error(err))
		return err
	}

	return c.JSON(fiber.Map{
		"tokens":  tokens,
		"user":    user,
		"message": h.notice(c, "auth.logged_in", map[string]string{"name": user.Name}),
	})
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	var req RefreshRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.RefreshToken == "" {
		return fiber.NewError(fiber.StatusBadRequest, "refreshToken is required")
	}

	tokens, err := h.service.RefreshToken(c.UserContext(), req.RefreshToken)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"tokens": tokens})
}

type SetupPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// SetupPassword completes an invitation or a reset link.
func (h *AuthHandler) SetupPassword(c *fiber.Ctx) error {
	var req SetupPasswordRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.Token == "" {
		return fiber.NewError(fiber.StatusBadRequest, "token is required")
	}

	if err := h.service.SetPassword(c.UserContext(), req.Token, req.Password); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": h.notice(c, "auth.password_set", nil)})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return domain.ErrInvalidCredentials
	}
	return one(c, user)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	token, _ := c.Locals(middleware.LocalToken).(string)
	if err := h.service.Logout(c.UserContext(), token); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": h.notice(c, "auth.logged_out", nil)})
}
