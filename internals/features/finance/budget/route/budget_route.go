package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"educenter_backend/internals/constants"
	budgetController "educenter_backend/internals/features/finance/budget/controller"
	"educenter_backend/internals/features/finance/budget/service"
	authMiddleware "educenter_backend/internals/middlewares/auth"
)

// BudgetRoutes binds the budget summary to a rate source.
func BudgetRoutes(rates service.RateSource) func(api fiber.Router, db *gorm.DB, authMw fiber.Handler) {
	return func(api fiber.Router, db *gorm.DB, authMw fiber.Handler) {
		ctrl := budgetController.NewBudgetController(db, rates)
		admins := authMiddleware.OnlyRolesSlice(constants.RoleErrorAdmin("the budget"), constants.Admins)

		budget := api.Group("/budget", authMw, admins)
		budget.Get("/", ctrl.GetBudget)
	}
}
