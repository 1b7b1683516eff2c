package middlewares

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	helper "educenter_backend/internals/helpers"
	"educenter_backend/internals/observability"
)

// ErrorHandler renders errors that escaped a handler in the JSON envelope.
// Server errors are reported to Sentry.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}
	if code >= fiber.StatusInternalServerError {
		reqID, _ := c.Locals(helper.LocRequestID).(string)
		zap.S().Errorw("request failed", "path", c.Path(), "method", c.Method(), "request_id", reqID, "err", err)
		observability.CaptureRequestErr(err, c.Method(), c.Path(), reqID)
	}
	return helper.JsonError(c, code, message)
}
