package route

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	controller "educenter_backend/internals/features/users/auth/controller"
	rateLimiter "educenter_backend/internals/middlewares"
)

// AuthRoutes mounts /auth. authMw guards logout.
func AuthRoutes(api fiber.Router, db *gorm.DB, secret string, accessTTL time.Duration, authMw fiber.Handler) {
	authController := controller.NewAuthController(db, secret, accessTTL)

	r := api.Group("/auth")
	r.Post("/login", rateLimiter.LoginRateLimiter(), authController.Login)
	r.Post("/logout", authMw, authController.Logout)
}
