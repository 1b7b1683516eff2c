package auth

import (
	"github.com/gofiber/fiber/v2"

	"educenter_backend/internals/constants"
	helper "educenter_backend/internals/helpers"
)

// OnlyRolesSlice allows the request when the user has one of the allowed roles.
func OnlyRolesSlice(message string, allowedRoles []constants.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw, ok := c.Locals(helper.LocUserRole).(string)
		if !ok || raw == "" {
			return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized - Role not found")
		}
		role, ok := constants.ParseRole(raw)
		if !ok || !role.In(allowedRoles) {
			return helper.JsonError(c, fiber.StatusForbidden, message)
		}
		return c.Next()
	}
}
