package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"educenter_backend/internals/constants"
	applicationController "educenter_backend/internals/features/applications/controller"
	rateLimiter "educenter_backend/internals/middlewares"
	authMiddleware "educenter_backend/internals/middlewares/auth"
)

func ApplicationRoutes(api fiber.Router, db *gorm.DB, authMw fiber.Handler) {
	ctrl := applicationController.NewApplicationController(db)
	admins := authMiddleware.OnlyRolesSlice(constants.RoleErrorAdmin("applications"), constants.Admins)

	apps := api.Group("/applications")

	// public intake form
	apps.Post("/", rateLimiter.ApplicationRateLimiter(), ctrl.Create)

	apps.Get("/", authMw, admins, ctrl.List)
	apps.Patch("/:id/assign-group", authMw, admins, ctrl.AssignGroup)
	apps.Patch("/:id/remove-group", authMw, admins, ctrl.RemoveGroup)
	apps.Patch("/:id/mark-contacted", authMw, admins, ctrl.MarkContacted)
	apps.Get("/:id", authMw, admins, ctrl.Get)
	apps.Patch("/:id", authMw, admins, ctrl.Update)
	apps.Delete("/:id", authMw, admins, ctrl.Delete)
}
