package controller

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	lessonModel "educenter_backend/internals/features/attendance/lessons/model"
	groupModel "educenter_backend/internals/features/catalog/groups/model"
	"educenter_backend/internals/features/finance/payments/dto"
	"educenter_backend/internals/features/finance/payments/model"
	"educenter_backend/internals/features/finance/payments/service"
	helper "educenter_backend/internals/helpers"
	"educenter_backend/internals/helpers/dbtime"
	"educenter_backend/internals/helpers/export"
	"educenter_backend/internals/helpers/money"
)

// filtered applies studentName, groupId and monthFor. A groupId limits
// the listing to active groups.
func (pc *PaymentController) filtered(c *fiber.Ctx, paid bool) ([]model.PaymentModel, error) {
	q := withRefs(pc.DB.WithContext(c.UserContext())).
		Model(&model.PaymentModel{}).
		Where("payments.paid = ?", paid)

	if name := strings.TrimSpace(c.Query("studentName")); name != "" {
		pattern := "%" + strings.ToLower(name) + "%"
		q = q.Joins("JOIN users u ON u.id = payments.user_id").
			Where("LOWER(u.first_name) LIKE ? OR LOWER(u.last_name) LIKE ?", pattern, pattern)
	}
	groupID, err := helper.ParseIDQuery(c, "groupId", false)
	if err != nil {
		return nil, err
	}
	if groupID > 0 {
		q = q.Joins("JOIN groups g ON g.id = payments.group_id").
			Where("g.id = ? AND g.status = ?", groupID, groupModel.GroupActive)
	}
	if mf := strings.TrimSpace(c.Query("monthFor")); mf != "" {
		if !service.ValidMonthFor(mf) {
			return nil, fiber.NewError(fiber.StatusBadRequest, "monthFor must be YYYY-MM")
		}
		q = q.Where("payments.month_for = ?", mf)
	}

	var rows []model.PaymentModel
	err = q.Order("payments.month_for DESC, payments.id DESC").Find(&rows).Error
	return rows, err
}

// GET /api/payments/paid?studentName=&groupId=&monthFor=
func (pc *PaymentController) ListPaid(c *fiber.Ctx) error {
	rows, err := pc.filtered(c, true)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonList(c, "Paid payments fetched", dto.FromModelList(rows), nil)
}

// GET /api/payments/unpaid?studentName=&groupId=&monthFor=
func (pc *PaymentController) ListUnpaid(c *fiber.Ctx) error {
	rows, err := pc.filtered(c, false)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonList(c, "Unpaid payments fetched", dto.FromModelList(rows), nil)
}

func (pc *PaymentController) report(c *fiber.Ctx) ([]model.PaymentModel, error) {
	groupID, err := helper.ParseIDQuery(c, "groupId", true)
	if err != nil {
		return nil, err
	}
	q := withRefs(pc.DB.WithContext(c.UserContext())).
		Model(&model.PaymentModel{}).
		Where("payments.group_id = ?", groupID)
	if name := strings.TrimSpace(c.Query("studentName")); name != "" {
		pattern := "%" + strings.ToLower(name) + "%"
		q = q.Joins("JOIN users u ON u.id = payments.user_id").
			Where("LOWER(u.first_name) LIKE ? OR LOWER(u.last_name) LIKE ?", pattern, pattern)
	}
	var rows []model.PaymentModel
	err = q.Order("payments.month_for ASC, payments.id ASC").Find(&rows).Error
	return rows, err
}

// GET /api/payments/report?groupId=&studentName=
func (pc *PaymentController) Report(c *fiber.Ctx) error {
	rows, err := pc.report(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonList(c, "Payment report fetched", dto.FromModelList(rows), nil)
}

// GET /api/payments/report/export?groupId=&studentName=
func (pc *PaymentController) ExportReport(c *fiber.Ctx) error {
	rows, err := pc.report(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	sheet := export.SheetSpec{
		Title:  "Payments",
		Header: []string{"ID", "Student", "Group", "Course", "Month", "Amount", "Type", "Paid", "Created"},
	}
	for _, p := range dto.FromModelList(rows) {
		sheet.Rows = append(sheet.Rows, []any{
			p.ID, p.StudentName, p.GroupName, p.CourseName, p.MonthFor,
			p.Amount, p.PaymentType, p.Paid, dbtime.FormatDate(p.CreatedAt),
		})
	}
	name := fmt.Sprintf("payments_group_%s_%s.xlsx", c.Query("groupId"), dbtime.FormatDate(dbtime.NowInCenter()))
	return export.Send(c, name, sheet)
}

// GET /api/payments/unpaid-months?userId=&groupId=
//
// Months run from the group's first lesson, or from the enrolment month
// when no lesson exists yet, up to the current month.
func (pc *PaymentController) UnpaidMonths(c *fiber.Ctx) error {
	userID, err := helper.ParseIDQuery(c, "userId", true)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	groupID, err := helper.ParseIDQuery(c, "groupId", true)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	db := pc.DB.WithContext(c.UserContext())

	var g groupModel.GroupModel
	if err := db.Where("id = ? AND status = ?", groupID, groupModel.GroupActive).First(&g).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Active group not found")
		}
		return helper.FromFiberError(c, err)
	}
	var link groupModel.GroupStudentModel
	if err := db.Where("group_id = ? AND user_id = ?", groupID, userID).First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Student not found in group")
		}
		return helper.FromFiberError(c, err)
	}

	start := link.CreatedAt
	var first lessonModel.LessonModel
	err = db.Where("group_id = ?", groupID).Order("lesson_date ASC").First(&first).Error
	switch {
	case err == nil:
		start = first.LessonDate
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return helper.FromFiberError(c, err)
	}

	months, err := dbtime.MonthSeries(dbtime.ToCenterTime(start), dbtime.NowInCenter())
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var paidMonths []string
	if err := db.Model(&model.PaymentModel{}).
		Where("user_id = ? AND group_id = ? AND paid = ?", userID, groupID, true).
		Distinct("month_for").
		Pluck("month_for", &paidMonths).Error; err != nil {
		return helper.FromFiberError(c, err)
	}
	paid := make(map[string]bool, len(paidMonths))
	for _, m := range paidMonths {
		paid[m] = true
	}
	unpaid := make([]string, 0, len(months))
	for _, m := range months {
		if !paid[m] {
			unpaid = append(unpaid, m)
		}
	}
	return helper.JsonList(c, "Unpaid months fetched", unpaid, nil)
}

func (pc *PaymentController) paidBetween(c *fiber.Ctx, from, to time.Time) (decimal.Decimal, error) {
	var sum struct{ Total decimal.Decimal }
	err := pc.DB.WithContext(c.UserContext()).
		Model(&model.PaymentModel{}).
		Where("paid = ? AND created_at BETWEEN ? AND ?", true, from.UTC(), to.UTC()).
		Select("COALESCE(SUM(amount), 0) AS total").
		Scan(&sum).Error
	return money.Cents(sum.Total), err
}

// GET /api/payments/monthly-income?month=&year=
func (pc *PaymentController) MonthlyIncome(c *fiber.Ctx) error {
	now := dbtime.NowInCenter()
	month, err := helper.QueryInt(c, "month", int(now.Month()), 1, 12)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	year, err := helper.QueryInt(c, "year", now.Year(), 2000, 2100)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	from, to := dbtime.MonthBounds(year, time.Month(month))
	income, err := pc.paidBetween(c, from, to)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "Monthly income fetched", fiber.Map{"month": month, "year": year, "income": income})
}

// GET /api/payments/yearly-income?year=
func (pc *PaymentController) YearlyIncome(c *fiber.Ctx) error {
	year, err := helper.QueryInt(c, "year", dbtime.NowInCenter().Year(), 2000, 2100)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	from, _ := dbtime.MonthBounds(year, time.January)
	_, to := dbtime.MonthBounds(year, time.December)
	income, err := pc.paidBetween(c, from, to)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "Yearly income fetched", fiber.Map{"year": year, "income": income})
}
