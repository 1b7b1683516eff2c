package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	helper "educenter_backend/internals/helpers"
)

type AuthJWTOpts struct {
	Secret              string
	BlacklistChecker    func(rawToken string) (bool, error) // true when revoked
	AllowCookieFallback bool                                // read the access_token cookie when no Bearer header
}

// AuthJWT verifies an HS256 bearer token and hydrates the principal locals
// (user id, role, username, raw token).
func AuthJWT(o AuthJWTOpts) fiber.Handler {
	secret := strings.TrimSpace(o.Secret)
	if secret == "" {
		panic("AuthJWT: Secret is required")
	}

	return func(c *fiber.Ctx) error {
		raw := ""
		if authz := strings.TrimSpace(c.Get(fiber.HeaderAuthorization)); strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			raw = strings.TrimSpace(authz[7:])
		} else if o.AllowCookieFallback {
			raw = strings.TrimSpace(c.Cookies("access_token"))
		}
		if raw == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
		}

		if o.BlacklistChecker != nil {
			black, err := o.BlacklistChecker(raw)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Token check failed")
			}
			if black {
				return fiber.NewError(fiber.StatusUnauthorized, "Token revoked")
			}
		}

		tok, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !tok.Valid {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
		}

		claims, ok := tok.Claims.(jwt.MapClaims)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid token claims")
		}

		id, ok := uintClaim(claims, "id")
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid token subject")
		}
		c.Locals(helper.LocUserID, id)
		c.Locals(helper.LocUserRole, strClaim(claims, "role"))
		c.Locals(helper.LocUsername, strClaim(claims, "username"))
		c.Locals(helper.LocRawToken, raw)

		return c.Next()
	}
}

func strClaim(m jwt.MapClaims, key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// uintClaim accepts the float64 that encoding/json yields for numbers.
func uintClaim(m jwt.MapClaims, key string) (uint, bool) {
	switch v := m[key].(type) {
	case float64:
		if v > 0 {
			return uint(v), true
		}
	case int64:
		if v > 0 {
			return uint(v), true
		}
	}
	return 0, false
}
