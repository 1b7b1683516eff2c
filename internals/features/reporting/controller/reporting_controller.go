package controller

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	budgetService "educenter_backend/internals/features/finance/budget/service"
	"educenter_backend/internals/features/reporting/service"
	helper "educenter_backend/internals/helpers"
	"educenter_backend/internals/helpers/dbtime"
	"educenter_backend/internals/helpers/export"
)

type ReportingController struct {
	DB    *gorm.DB
	Rates budgetService.RateSource
	Now   func() time.Time
}

func NewReportingController(db *gorm.DB, rates budgetService.RateSource) *ReportingController {
	return &ReportingController{DB: db, Rates: rates, Now: dbtime.NowInCenter}
}

func (rc *ReportingController) debtors(c *fiber.Ctx) (service.DebtorReport, error) {
	groupID, err := helper.ParseIDQuery(c, "groupId", false)
	if err != nil {
		return service.DebtorReport{}, err
	}
	return service.Debtors(rc.DB.WithContext(c.UserContext()), service.DebtorFilter{
		FirstName: c.Query("firstName"),
		LastName:  c.Query("lastName"),
		GroupID:   groupID,
	}, dbtime.FormatMonth(rc.Now()))
}

// GET /api/debtors?firstName=&lastName=&groupId=
func (rc *ReportingController) ListDebtors(c *fiber.Ctx) error {
	r, err := rc.debtors(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "Debtors fetched", r)
}

// GET /api/debtors/export?firstName=&lastName=&groupId=
func (rc *ReportingController) ExportDebtors(c *fiber.Ctx) error {
	r, err := rc.debtors(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	sheet := export.SheetSpec{
		Title:  "Debtors",
		Header: []string{"Student ID", "Full name", "Group", "Debt", "Unpaid month"},
	}
	for _, d := range r.Debtors {
		sheet.Rows = append(sheet.Rows, []any{d.UserID, d.FullName, d.Group, d.Debt, d.UnpaidMonth})
	}
	sheet.Rows = append(sheet.Rows, []any{"", "Total", r.DebtorCount, r.TotalDebt, ""})
	return export.Send(c, fmt.Sprintf("debtors_%s.xlsx", dbtime.FormatDate(rc.Now())), sheet)
}

// GET /api/users/dashboard
func (rc *ReportingController) Dashboard(c *fiber.Ctx) error {
	d, err := service.BuildDashboard(rc.DB.WithContext(c.UserContext()), rc.Now(), rc.Rates.USDRate(c.UserContext()))
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "Dashboard fetched", d)
}
