package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"educenter_backend/internals/constants"
	paymentController "educenter_backend/internals/features/finance/payments/controller"
	authMiddleware "educenter_backend/internals/middlewares/auth"
)

func PaymentRoutes(api fiber.Router, db *gorm.DB, authMw fiber.Handler) {
	ctrl := paymentController.NewPaymentController(db)

	payments := api.Group("/payments",
		authMw,
		authMiddleware.OnlyRolesSlice(constants.RoleErrorAdmin("payments"), constants.Admins),
	)

	payments.Get("/paid", ctrl.ListPaid)
	payments.Get("/unpaid", ctrl.ListUnpaid)
	payments.Get("/report", ctrl.Report)
	payments.Get("/report/export", ctrl.ExportReport)
	payments.Get("/unpaid-months", ctrl.UnpaidMonths)
	payments.Get("/monthly-income", ctrl.MonthlyIncome)
	payments.Get("/yearly-income", ctrl.YearlyIncome)

	payments.Post("/", ctrl.CreatePayment)
	payments.Get("/", ctrl.ListPayments)
	payments.Get("/:id", ctrl.GetPayment)
	payments.Put("/:id", ctrl.UpdatePayment)
	payments.Delete("/:id", ctrl.DeletePayment)
}
