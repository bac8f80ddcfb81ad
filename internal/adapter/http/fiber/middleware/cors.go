package middleware

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	fibercors "github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/seu-repo/imob-crm/pkg/config"
)

var (
	corsMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsHeaders = []string{"Origin", "Content-Type", "Accept", "Accept-Language", "Authorization", "X-Request-ID"}
	// The admin SPA reads the export filename and the rate-limit back-off.
	corsExposed = []string{"Content-Disposition", "Retry-After", "X-Request-ID"}
)

const corsMaxAge = 12 * time.Hour

// NewCORS builds the CORS middleware for the admin SPA origins.
// Credentials are dropped when the origin list contains a wildcard,
// since browsers reject that pairing and fiber refuses to start with it.
func NewCORS(cfg config.CORSConfig) fiber.Handler {
	origins := orDefault(cfg.AllowedOrigins, []string{"*"})
	credentials := cfg.Credentials
	for _, o := range origins {
		if o == "*" {
			credentials = false
			break
		}
	}

	maxAge := int(corsMaxAge.Seconds())
	if cfg.MaxAge > 0 {
		maxAge = cfg.MaxAge
	}

	return fibercors.New(fibercors.Config{
		AllowOrigins:     strings.Join(origins, ","),
		AllowMethods:     strings.Join(orDefault(cfg.AllowedMethods, corsMethods), ","),
		AllowHeaders:     strings.Join(orDefault(cfg.AllowedHeaders, corsHeaders), ","),
		ExposeHeaders:    strings.Join(orDefault(cfg.ExposeHeaders, corsExposed), ","),
		AllowCredentials: credentials,
		MaxAge:           maxAge,
	})
}

// DefaultCORS allows any origin without credentials. Development only.
func DefaultCORS() fiber.Handler {
	return NewCORS(config.CORSConfig{})
}

func orDefault(values, fallback []string) []string {
	if len(values) == 0 {
		return fallback
	}
	return values
}
