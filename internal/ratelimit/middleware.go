package ratelimit

import (
	"math"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
)

const DefaultMessage = "Too many login attempts, please try again later."

type Config struct {
	Limiter Limiter
	Max     int
	Window  time.Duration
	// Scope namespaces the counters so several routes can share one Limiter.
	Scope   string
	Message string
	// OnLimitReached runs for every rejected request.
	OnLimitReached func(c *fiber.Ctx)
}

// New returns a fiber handler that limits requests per client IP.
func New(cfg Config) fiber.Handler {
	if cfg.Scope == "" {
		cfg.Scope = "default"
	}
	if cfg.Message == "" {
		cfg.Message = DefaultMessage
	}

	return func(c *fiber.Ctx) error {
		if cfg.Limiter == nil || cfg.Max <= 0 {
			return c.Next()
		}

		key := cfg.Scope + ":ip:" + c.IP()
		decision := cfg.Limiter.Allow(c.UserContext(), key, cfg.Max, cfg.Window)
		applyHeaders(c, cfg.Max, decision)

		if !decision.Allowed {
			if cfg.OnLimitReached != nil {
				cfg.OnLimitReached(c)
			}
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(secondsUntil(decision.WindowEnd)))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"message": cfg.Message})
		}

		return c.Next()
	}
}

func applyHeaders(c *fiber.Ctx, limit int, d Decision) {
	remaining := limit - d.Count
	if remaining < 0 {
		remaining = 0
	}
	c.Set("X-RateLimit-Limit", strconv.Itoa(limit))
	c.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	if !d.WindowEnd.IsZero() {
		c.Set("X-RateLimit-Reset", strconv.Itoa(secondsUntil(d.WindowEnd)))
	}
}

func secondsUntil(t time.Time) int {
	secs := int(math.Ceil(time.Until(t).Seconds()))
	if secs < 0 {
		return 0
	}
	return secs
}
