package middlewares

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	helper "educenter_backend/internals/helpers"
)

func newLimiter(max int, window time.Duration, message string) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return helper.JsonError(c, fiber.StatusTooManyRequests, message)
		},
	})
}

// Global limiter for ordinary endpoints
func GlobalRateLimiter() fiber.Handler {
	return newLimiter(100, time.Minute, "Too many requests. Please try again later.")
}

// Login is stricter
func LoginRateLimiter() fiber.Handler {
	return newLimiter(5, time.Minute, "Too many login attempts. Please wait a moment.")
}

// Public application form
func ApplicationRateLimiter() fiber.Handler {
	return newLimiter(3, 5*time.Minute, "Too many applications submitted. Please wait a few minutes.")
}
