package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/seu-repo/imob-crm/internal/domain"
	"github.com/seu-repo/imob-crm/internal/i18n"
)

// notifier renders the localised notice that accompanies a mutation.
type notifier struct {
	tr *i18n.Translator
}

func (n notifier) notice(c *fiber.Ctx, id string, args map[string]string) string {
	return n.tr.Message(c.Get(fiber.HeaderAcceptLanguage), id, args)
}

// done answers {"data": ..., "message": ...}.
func (n notifier) done(c *fiber.Ctx, status int, data interface{}, id domain.EventType, args map[string]string) error {
	body := fiber.Map{"message": n.notice(c, string(id), args)}
	if data != nil {
		body["data"] = data
	}
	return c.Status(status).JSON(body)
}

func list(c *fiber.Ctx, items interface{}, count int) error {
	return c.JSON(fiber.Map{"data": items, "count": count})
}

func one(c *fiber.Ctx, item interface{}) error {
	return c.JSON(fiber.Map{"data": item})
}

func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return fmt.Errorf("invalid request body: %v: %w", err, domain.ErrValidation)
	}
	return nil
}

// orNotFound turns the nil, nil answer of MoveLead and ConvertToClient into a 404.
func orNotFound(kind, id string, found bool) error {
	if found {
		return nil
	}
	return fmt.Errorf("%s %s: %w", kind, id, domain.ErrNotFound)
}
