package middlewares

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	helper "educenter_backend/internals/helpers"
	"educenter_backend/internals/metrics"
)

// RequestContext assigns X-Request-ID, bounds the request with a timeout
// carried through c.UserContext(), and records the access log and metrics.
func RequestContext(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("X-Request-ID", id)
		c.Locals(helper.LocRequestID, id)

		start := time.Now()
		ctx, cancel := context.WithTimeout(c.Context(), timeout)
		defer cancel()
		c.SetUserContext(ctx)

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
		}
		dur := time.Since(start)
		metrics.ObserveRequest(c.Method(), c.Route().Path, status, dur)
		zap.L().Debug("request",
			zap.String("request_id", id),
			zap.String("method", c.Method()),
			zap.String("path", c.OriginalURL()),
			zap.Int("status", status),
			zap.Duration("duration", dur),
		)
		return err
	}
}
