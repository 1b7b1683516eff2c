package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"educenter_backend/internals/constants"
	budgetService "educenter_backend/internals/features/finance/budget/service"
	reportingController "educenter_backend/internals/features/reporting/controller"
	authMiddleware "educenter_backend/internals/middlewares/auth"
)

// ReportingRoutes must be mounted before the users group so that
// /users/dashboard is not captured by /users/:id.
func ReportingRoutes(rates budgetService.RateSource) func(api fiber.Router, db *gorm.DB, authMw fiber.Handler) {
	return func(api fiber.Router, db *gorm.DB, authMw fiber.Handler) {
		ctrl := reportingController.NewReportingController(db, rates)
		admins := authMiddleware.OnlyRolesSlice(constants.RoleErrorAdmin("reports"), constants.Admins)

		api.Get("/users/dashboard", authMw, admins, ctrl.Dashboard)

		debtors := api.Group("/debtors", authMw, admins)
		debtors.Get("/export", ctrl.ExportDebtors)
		debtors.Get("/", ctrl.ListDebtors)
	}
}
