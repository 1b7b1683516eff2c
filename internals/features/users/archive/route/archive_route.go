package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"educenter_backend/internals/constants"
	archiveController "educenter_backend/internals/features/users/archive/controller"
	authMiddleware "educenter_backend/internals/middlewares/auth"
)

func ArchiveRoutes(api fiber.Router, db *gorm.DB, authMw fiber.Handler) {
	ctrl := archiveController.NewArchiveController(db)

	archive := api.Group("/archive",
		authMw,
		authMiddleware.OnlyRolesSlice(constants.RoleErrorAdmin("the archive"), constants.Admins),
	)
	archive.Post("/", ctrl.CreateArchive)
	archive.Get("/", ctrl.ListArchive)
	archive.Put("/restore/:id", ctrl.RestoreArchive)
	archive.Get("/:id", ctrl.GetArchive)
	archive.Delete("/:id", ctrl.DeleteArchive)
}
