package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/seu-repo/imob-crm/internal/infrastructure/circuitbreaker"
)

// CircuitBreaker sheds load with 503 once server errors pile up. Client
// errors do not count as failures.
func CircuitBreaker(breakers *circuitbreaker.Manager) fiber.Handler {
	cb := breakers.Get("http")

	return func(c *fiber.Ctx) error {
		var handlerErr error
		err := circuitbreaker.Execute(cb, func() error {
			handlerErr = c.Next()
			if StatusOf(handlerErr) >= fiber.StatusInternalServerError {
				return handlerErr
			}
			return nil
		})

		if circuitbreaker.IsOpen(err) {
			return fiber.ErrServiceUnavailable
		}
		return handlerErr
	}
}
