package controller

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"educenter_backend/internals/features/finance/budget/service"
	helper "educenter_backend/internals/helpers"
	"educenter_backend/internals/helpers/dbtime"
)

type BudgetController struct {
	DB    *gorm.DB
	Rates service.RateSource
}

func NewBudgetController(db *gorm.DB, rates service.RateSource) *BudgetController {
	return &BudgetController{DB: db, Rates: rates}
}

// GET /api/budget?month=&year=
func (bc *BudgetController) GetBudget(c *fiber.Ctx) error {
	now := dbtime.NowInCenter()
	month, err := helper.QueryInt(c, "month", int(now.Month()), 1, 12)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	year, err := helper.QueryInt(c, "year", now.Year(), 2020, 2100)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	rate := bc.Rates.USDRate(c.UserContext())
	s, err := service.BudgetSummary(bc.DB.WithContext(c.UserContext()), year, time.Month(month), rate)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "Budget fetched", s)
}
