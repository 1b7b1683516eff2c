package middlewares

import (
	"fmt"
	"runtime/debug"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	helper "educenter_backend/internals/helpers"
	"educenter_backend/internals/observability"
)

// RecoveryMiddleware answers a handler panic with the JSON 500 envelope.
// The panic is logged and sent to Sentry under the request id.
func RecoveryMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			perr, ok := r.(error)
			if !ok {
				perr = fmt.Errorf("%v", r)
			}
			reqID, _ := c.Locals(helper.LocRequestID).(string)
			zap.L().Error("panic recovered",
				zap.String("request_id", reqID),
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(perr),
				zap.ByteString("stack", debug.Stack()),
			)
			observability.CaptureRequestErr(fmt.Errorf("panic: %w", perr), c.Method(), c.Path(), reqID)
			err = helper.JsonError(c, fiber.StatusInternalServerError, "Internal server error")
		}()
		return c.Next()
	}
}
