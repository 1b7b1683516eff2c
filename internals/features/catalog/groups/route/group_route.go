package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"educenter_backend/internals/constants"
	groupController "educenter_backend/internals/features/catalog/groups/controller"
	authMiddleware "educenter_backend/internals/middlewares/auth"
)

func GroupRoutes(api fiber.Router, db *gorm.DB, authMw fiber.Handler) {
	ctrl := groupController.NewGroupController(db)

	admins := authMiddleware.OnlyRolesSlice(constants.RoleErrorAdmin("group management"), constants.Admins)
	staff := authMiddleware.OnlyRolesSlice(constants.RoleErrorStaff("groups"), constants.Staff)
	everyone := authMiddleware.OnlyRolesSlice("Unknown role", constants.Everyone)
	teacher := authMiddleware.OnlyRolesSlice(constants.RoleErrorTeacher("teacher groups"), constants.TeacherOnly)

	groups := api.Group("/groups", authMw)

	// static paths first so they are not captured by /:id
	groups.Get("/search", staff, ctrl.SearchGroups)
	groups.Get("/my/teacher/groups", teacher, ctrl.MyTeacherGroups)
	groups.Get("/my/schedule", teacher, ctrl.MySchedule)
	groups.Get("/student/:username", everyone, ctrl.StudentGroups)
	groups.Get("/course/:courseId", staff, ctrl.GroupsByCourse)
	groups.Post("/transfer-student", admins, ctrl.TransferStudent)

	groups.Post("/", admins, ctrl.CreateGroup)
	groups.Get("/", everyone, ctrl.ListGroups)

	groups.Get("/:id/students", staff, ctrl.GroupStudents)
	groups.Get("/:id/students/list", staff, ctrl.GroupStudentsList)
	groups.Post("/:id/add-student", admins, ctrl.AddStudent)
	groups.Post("/:id/restore-student", admins, ctrl.AddStudent)
	groups.Delete("/:id/remove-student", admins, ctrl.RemoveStudent)
	groups.Patch("/:id/status/:status", admins, ctrl.UpdateStatus)
	groups.Put("/:id", admins, ctrl.UpdateGroup)
	groups.Delete("/:id", admins, ctrl.DeleteGroup)
	groups.Get("/:id", everyone, ctrl.GetGroup)
}
