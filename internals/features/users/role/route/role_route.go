package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"educenter_backend/internals/constants"
	roleController "educenter_backend/internals/features/users/role/controller"
	authMiddleware "educenter_backend/internals/middlewares/auth"
)

func RoleRoutes(api fiber.Router, db *gorm.DB, authMw fiber.Handler) {
	ctrl := roleController.NewRoleController(db)

	roles := api.Group("/roles",
		authMw,
		authMiddleware.OnlyRolesSlice(constants.RoleErrorAdmin("role management"), constants.Admins),
	)
	roles.Post("/", ctrl.CreateRole)
	roles.Get("/", ctrl.ListRoles)
	roles.Delete("/:id", ctrl.DeleteRole)
}
