package helper

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FromFiberError turns a service error (usually *fiber.Error)
// into the standard JSON envelope via JsonError.
func FromFiberError(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return JsonError(c, fe.Code, fe.Message)
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return JsonError(c, fiber.StatusNotFound, "Record not found")
	}
	if IsDuplicateKey(err) {
		return JsonError(c, fiber.StatusConflict, "Duplicate value")
	}
	zap.S().Errorw("unhandled error", "path", c.Path(), "method", c.Method(), "err", err)
	return JsonError(c, fiber.StatusInternalServerError, "Internal server error")
}
