package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"educenter_backend/internals/constants"
	userController "educenter_backend/internals/features/users/user/controller"
	authMiddleware "educenter_backend/internals/middlewares/auth"
)

// UserRoutes mounts /users. The dashboard lives with the reporting routes
// and must be registered before this group so /:id does not capture it.
func UserRoutes(api fiber.Router, db *gorm.DB, authMw fiber.Handler) {
	ctrl := userController.NewUserController(db)

	admins := authMiddleware.OnlyRolesSlice(constants.RoleErrorAdmin("user management"), constants.Admins)
	staff := authMiddleware.OnlyRolesSlice(constants.RoleErrorStaff("students"), constants.Staff)

	users := api.Group("/users", authMw)

	users.Get("/me", ctrl.GetMe)
	users.Patch("/me/update", ctrl.UpdateMe)
	users.Get("/admins", admins, ctrl.ListAdmins)
	users.Get("/students", staff, ctrl.ListStudents)
	users.Get("/all/students", staff, ctrl.ListStudentsWithPayments)
	users.Get("/workers", admins, ctrl.ListWorkers)

	users.Post("/", admins, ctrl.CreateUser)
	users.Get("/", admins, ctrl.ListUsers)
	users.Patch("/:id", admins, ctrl.UpdateUser)
	users.Get("/:id", admins, ctrl.GetUser)
	users.Delete("/:id", admins, ctrl.DeleteUser)
}
