package middleware

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"

	"github.com/seu-repo/imob-crm/pkg/config"
)

const limiterIdle = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type limiterSet struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rps      rate.Limit
	burst    int
	swept    time.Time
}

func (s *limiterSet) allow(key string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if now.Sub(s.swept) > limiterIdle {
		for k, v := range s.visitors {
			if now.Sub(v.lastSeen) > limiterIdle {
				delete(s.visitors, k)
			}
		}
		s.swept = now
	}

	v, ok := s.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(s.rps, s.burst)}
		s.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// RateLimit is a token bucket per client IP, or per user on authenticated
// routes when ByUser is set.
func RateLimit(cfg config.RateLimitingConfig) fiber.Handler {
	if !cfg.Enabled {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	rps := cfg.RPS
	if rps <= 0 {
		rps = 20
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = int(rps) * 2
	}

	set := &limiterSet{
		visitors: make(map[string]*visitor),
		rps:      rate.Limit(rps),
		burst:    burst,
		swept:    time.Now(),
	}

	return func(c *fiber.Ctx) error {
		key := "ip:" + c.IP()
		if cfg.ByUser {
			if u := CurrentUser(c); u != nil {
				key = "user:" + u.ID
			}
		}
		if !set.allow(key, time.Now()) {
			c.Set(fiber.HeaderRetryAfter, "1")
			return fiber.ErrTooManyRequests
		}
		return c.Next()
	}
}
