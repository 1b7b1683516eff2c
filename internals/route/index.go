package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	applicationRoute "educenter_backend/internals/features/applications/route"
	attendanceRoute "educenter_backend/internals/features/attendance/attendance/route"
	lessonRoute "educenter_backend/internals/features/attendance/lessons/route"
	courseRoute "educenter_backend/internals/features/catalog/courses/route"
	groupRoute "educenter_backend/internals/features/catalog/groups/route"
	budgetRoute "educenter_backend/internals/features/finance/budget/route"
	budgetService "educenter_backend/internals/features/finance/budget/service"
	paymentRoute "educenter_backend/internals/features/finance/payments/route"
	reportingRoute "educenter_backend/internals/features/reporting/route"
	archiveRoute "educenter_backend/internals/features/users/archive/route"
	authRepo "educenter_backend/internals/features/users/auth/repository"
	authRoute "educenter_backend/internals/features/users/auth/route"
	roleRoute "educenter_backend/internals/features/users/role/route"
	userRoute "educenter_backend/internals/features/users/user/route"
	authMiddleware "educenter_backend/internals/middlewares/auth"
)

var startTime time.Time

type Options struct {
	JWTSecret string
	AccessTTL time.Duration
	Env       string
	Rates     budgetService.RateSource
}

type mount func(api fiber.Router, db *gorm.DB, authMw fiber.Handler)

func SetupRoutes(app *fiber.App, db *gorm.DB, o Options) {
	startTime = time.Now()
	BaseRoutes(app, db, o.Env)

	authMw := authMiddleware.AuthJWT(authMiddleware.AuthJWTOpts{
		Secret: o.JWTSecret,
		BlacklistChecker: func(raw string) (bool, error) {
			return authRepo.IsBlacklisted(db, raw)
		},
	})

	api := app.Group("/api")
	authRoute.AuthRoutes(api, db, o.JWTSecret, o.AccessTTL, authMw)

	// /users/dashboard has to be registered ahead of /users/:id
	mounts := []struct {
		name string
		fn   mount
	}{
		{"reporting", reportingRoute.ReportingRoutes(o.Rates)},
		{"users", userRoute.UserRoutes},
		{"roles", roleRoute.RoleRoutes},
		{"archive", archiveRoute.ArchiveRoutes},
		{"courses", courseRoute.CourseRoutes},
		{"groups", groupRoute.GroupRoutes},
		{"payments", paymentRoute.PaymentRoutes},
		{"budget", budgetRoute.BudgetRoutes(o.Rates)},
		{"attendance", attendanceRoute.AttendanceRoutes},
		{"lessons", lessonRoute.LessonRoutes},
		{"applications", applicationRoute.ApplicationRoutes},
	}
	for _, m := range mounts {
		zap.S().Debugw("mounting routes", "group", m.name)
		m.fn(api, db, authMw)
	}
}
