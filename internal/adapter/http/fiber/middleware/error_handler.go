package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/imob-crm/internal/domain"
	"github.com/seu-repo/imob-crm/internal/i18n"
)

// StatusOf maps an error returned by a handler onto an HTTP status.
func StatusOf(err error) int {
	if err == nil {
		return fiber.StatusOK
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrUnknownRole):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrDuplicateEmail):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrInactiveUser):
		return fiber.StatusForbidden
	case errors.Is(err, domain.ErrInvalidCredentials):
		return fiber.StatusUnauthorized
	}
	return fiber.StatusInternalServerError
}

func messageKey(code int) string {
	switch code {
	case fiber.StatusNotFound:
		return "error.not_found"
	case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity:
		return "error.validation"
	case fiber.StatusConflict:
		return "error.conflict"
	case fiber.StatusForbidden:
		return "error.forbidden"
	case fiber.StatusUnauthorized:
		return "error.unauthorized"
	case fiber.StatusTooManyRequests:
		return "error.rate_limited"
	case fiber.StatusServiceUnavailable:
		return "error.unavailable"
	}
	return "error.internal"
}

// ErrorHandler answers {"error": <code>, "message": <localised text>}. The
// underlying error text is only exposed for client errors.
func ErrorHandler(log *zap.Logger, tr *i18n.Translator) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := StatusOf(err)
		key := messageKey(code)

		body := fiber.Map{
			"error":   key,
			"message": tr.Message(c.Get(fiber.HeaderAcceptLanguage), key, nil),
		}

		if code >= fiber.StatusInternalServerError {
			log.Error("Internal Server Error",
				zap.Error(err),
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
			)
		} else {
			body["detail"] = err.Error()
		}

		return c.Status(code).JSON(body)
	}
}
