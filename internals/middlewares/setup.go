package middlewares

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"educenter_backend/internals/configs"
	"educenter_backend/internals/middlewares/logger"
)

const requestTimeout = 10 * time.Second

func SetupMiddlewares(app *fiber.App, cfg *configs.Config) {
	app.Use(RecoveryMiddleware())
	app.Use(RequestContext(requestTimeout))
	app.Use(CorsMiddleware(cfg.CORSOrigins))
	if !cfg.IsProd() {
		app.Use(logger.LoggerMiddleware(nil))
	}
	app.Use(GlobalRateLimiter())
}
