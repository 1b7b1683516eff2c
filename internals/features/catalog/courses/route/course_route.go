package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"educenter_backend/internals/constants"
	courseController "educenter_backend/internals/features/catalog/courses/controller"
	authMiddleware "educenter_backend/internals/middlewares/auth"
)

func CourseRoutes(api fiber.Router, db *gorm.DB, authMw fiber.Handler) {
	ctrl := courseController.NewCourseController(db)
	admins := authMiddleware.OnlyRolesSlice(constants.RoleErrorAdmin("course management"), constants.Admins)

	courses := api.Group("/courses", authMw)
	courses.Post("/", admins, ctrl.CreateCourse)
	courses.Get("/", ctrl.ListCourses)
	courses.Get("/:id", ctrl.GetCourse)
	courses.Put("/:id", admins, ctrl.UpdateCourse)
	courses.Delete("/:id", admins, ctrl.DeleteCourse)
}
