package helper

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"educenter_backend/internals/constants"
)

// Locals keys hydrated by the JWT middleware.
const (
	LocUserID   = "user_id"
	LocUserRole = "userRole"
	LocUsername = "username"
	LocRawToken = "raw_token"
)

// LocRequestID is set by the request middleware before any handler runs.
const LocRequestID = "reqid"

// GetUserIDFromToken returns 401 when the request carries no principal.
func GetUserIDFromToken(c *fiber.Ctx) (uint, error) {
	switch t := c.Locals(LocUserID).(type) {
	case uint:
		if t > 0 {
			return t, nil
		}
	case string:
		if id, err := strconv.ParseUint(strings.TrimSpace(t), 10, 64); err == nil && id > 0 {
			return uint(id), nil
		}
	}
	return 0, fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
}

func GetRoleFromToken(c *fiber.Ctx) (constants.Role, error) {
	if s, ok := c.Locals(LocUserRole).(string); ok {
		if r, ok := constants.ParseRole(s); ok {
			return r, nil
		}
	}
	return "", fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - Role not found")
}

// Actor is the authenticated principal of a request.
type Actor struct {
	ID       uint
	Username string
	Role     constants.Role
}

func GetActor(c *fiber.Ctx) (Actor, error) {
	id, err := GetUserIDFromToken(c)
	if err != nil {
		return Actor{}, err
	}
	role, err := GetRoleFromToken(c)
	if err != nil {
		return Actor{}, err
	}
	name, _ := c.Locals(LocUsername).(string)
	return Actor{ID: id, Username: name, Role: role}, nil
}

// ParseIDParam reads a positive integer path param.
func ParseIDParam(c *fiber.Ctx, name string) (uint, error) {
	raw := strings.TrimSpace(c.Params(name))
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid "+name)
	}
	return uint(id), nil
}

// ParseIDQuery reads a positive integer query param; required controls
// whether an absent value is an error.
func ParseIDQuery(c *fiber.Ctx, name string, required bool) (uint, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		if required {
			return 0, fiber.NewError(fiber.StatusBadRequest, name+" is required")
		}
		return 0, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid "+name)
	}
	return uint(id), nil
}

// QueryInt reads an integer query param within [lo, hi]; an absent value
// yields def.
func QueryInt(c *fiber.Ctx, name string, def, lo, hi int) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < lo || v > hi {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid "+name)
	}
	return v, nil
}
