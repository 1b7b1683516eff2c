package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"educenter_backend/internals/constants"
	lessonController "educenter_backend/internals/features/attendance/lessons/controller"
	authMiddleware "educenter_backend/internals/middlewares/auth"
)

func LessonRoutes(api fiber.Router, db *gorm.DB, authMw fiber.Handler) {
	ctrl := lessonController.NewLessonController(db)

	admins := authMiddleware.OnlyRolesSlice(constants.RoleErrorAdmin("lesson statistics"), constants.Admins)
	everyone := authMiddleware.OnlyRolesSlice("Unknown role", constants.Everyone)
	teacher := authMiddleware.OnlyRolesSlice(constants.RoleErrorTeacher("lessons"), constants.TeacherOnly)

	lessons := api.Group("/lessons", authMw)

	lessons.Get("/all", everyone, ctrl.All)
	lessons.Get("/group/:groupId", everyone, ctrl.ByGroup)
	lessons.Get("/statistics", admins, ctrl.Statistics)

	lessons.Post("/", teacher, ctrl.Create)
	lessons.Get("/:id/attendance-history", everyone, ctrl.AttendanceHistory)
	lessons.Put("/:id", teacher, ctrl.Rename)
	lessons.Delete("/:id", teacher, ctrl.Delete)
}
