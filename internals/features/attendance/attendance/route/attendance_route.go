package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"educenter_backend/internals/constants"
	attendanceController "educenter_backend/internals/features/attendance/attendance/controller"
	authMiddleware "educenter_backend/internals/middlewares/auth"
)

func AttendanceRoutes(api fiber.Router, db *gorm.DB, authMw fiber.Handler) {
	ctrl := attendanceController.NewAttendanceController(db)

	admins := authMiddleware.OnlyRolesSlice(constants.RoleErrorAdmin("teacher attendance"), constants.Admins)
	staff := authMiddleware.OnlyRolesSlice(constants.RoleErrorStaff("attendance"), constants.Staff)
	everyone := authMiddleware.OnlyRolesSlice("Unknown role", constants.Everyone)
	teacher := authMiddleware.OnlyRolesSlice(constants.RoleErrorTeacher("attendance marking"), constants.TeacherOnly)

	att := api.Group("/attendance", authMw)

	att.Post("/teacher", admins, ctrl.MarkTeacher)
	att.Get("/teacher", staff, ctrl.ListTeacher)
	att.Get("/missing", admins, ctrl.Missing)
	att.Get("/statistics", staff, ctrl.Statistics)
	att.Get("/group/:groupId", staff, ctrl.ByGroup)
	att.Patch("/group/:groupId/date/:date", teacher, ctrl.BulkUpdate)
	att.Get("/daily/:groupId", staff, ctrl.Daily)
	att.Get("/history/:groupId", everyone, ctrl.History)

	att.Post("/", teacher, ctrl.Create)
	att.Put("/", teacher, ctrl.Upsert)
	att.Get("/", staff, ctrl.List)
	att.Get("/:id", staff, ctrl.Get)
	att.Delete("/:id", teacher, ctrl.Delete)
}
