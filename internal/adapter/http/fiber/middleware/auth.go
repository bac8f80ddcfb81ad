package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/seu-repo/imob-crm/internal/domain"
	"github.com/seu-repo/imob-crm/internal/ports"
)

const (
	LocalUser  = "user"
	LocalToken = "token"
)

// AuthRequired validates the bearer token and attaches the caller to the
// request context. Websocket upgrades may pass the token as ?token= since
// browsers cannot set headers on them.
func AuthRequired(service ports.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearer(c.Get(fiber.HeaderAuthorization))
		if !ok && websocket.IsWebSocketUpgrade(c) {
			token, ok = c.Query("token"), c.Query("token") != ""
		}
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "missing or malformed authorization header")
		}

		user, err := service.ValidateToken(c.UserContext(), token)
		if err != nil {
			return err
		}

		c.Locals(LocalUser, user)
		c.Locals(LocalToken, token)
		c.SetUserContext(domain.WithActor(c.UserContext(), user.Actor()))

		return c.Next()
	}
}

func bearer(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

// CurrentUser returns the user set by AuthRequired, or nil.
func CurrentUser(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals(LocalUser).(*domain.User)
	return u
}

// RequirePermission gates a route on the flat permission check of policy.
func RequirePermission(policy ports.Policy, action ports.Action, resource ports.Resource) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		if err := policy.Require(ctx, domain.ActorFrom(ctx), action, resource); err != nil {
			return err
		}
		return c.Next()
	}
}
