package service

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	groupModel "educenter_backend/internals/features/catalog/groups/model"
	groupService "educenter_backend/internals/features/catalog/groups/service"
	budgetService "educenter_backend/internals/features/finance/budget/service"
	paymentModel "educenter_backend/internals/features/finance/payments/model"
	"educenter_backend/internals/helpers/dbtime"
	"educenter_backend/internals/helpers/money"
)

type MonthIncome struct {
	Month  string          `json:"month"`
	Income decimal.Decimal `json:"income"`
}

type Dashboard struct {
	TotalStudents           int64           `json:"totalStudents"`
	PaidStudents            int64           `json:"paidStudents"`
	UnpaidStudents          int64           `json:"unpaidStudents"`
	ActiveGroups            int64           `json:"activeGroups"`
	AverageStudentsPerGroup float64         `json:"averageStudentsPerGroup"`
	MonthlyRevenue          []MonthIncome   `json:"monthlyRevenue"`
	AnnualRevenue           decimal.Decimal `json:"annualRevenue"`
	AnnualRevenueUSD        string          `json:"annualRevenueUSD"`
	USDExchangeRate         float64         `json:"usdExchangeRate"`
	ReportDate              string          `json:"reportDate"`
}

// activeSeats selects roster rows of active groups. Rosters only hold
// students.
func activeSeats(db *gorm.DB) *gorm.DB {
	return db.Table("group_students gs").
		Joins("JOIN groups g ON g.id = gs.group_id").
		Where("g.status = ?", groupModel.GroupActive)
}

// BuildDashboard summarises the current year as of now; revenue is
// keyed by the billed month, not the payment date.
func BuildDashboard(db *gorm.DB, now time.Time, rate float64) (Dashboard, error) {
	now = dbtime.ToCenterTime(now)
	d := Dashboard{USDExchangeRate: rate, ReportDate: dbtime.FormatDate(now), AnnualRevenue: decimal.Zero}

	var err error
	if d.TotalStudents, err = groupService.CountDistinctStudents(db); err != nil {
		return d, err
	}
	if err := db.Model(&groupModel.GroupModel{}).
		Where("status = ?", groupModel.GroupActive).
		Count(&d.ActiveGroups).Error; err != nil {
		return d, err
	}
	if d.ActiveGroups > 0 {
		var seats int64
		if err := activeSeats(db).Count(&seats).Error; err != nil {
			return d, err
		}
		d.AverageStudentsPerGroup = math.Round(float64(seats)/float64(d.ActiveGroups)*100) / 100
	}

	var months []monthSum
	if err := db.Model(&paymentModel.PaymentModel{}).
		Select("month_for, SUM(amount) AS total").
		Where("paid = ? AND month_for LIKE ?", true, fmt.Sprintf("%04d-%%", now.Year())).
		Group("month_for").
		Scan(&months).Error; err != nil {
		return d, err
	}
	byMonth := make(map[string]decimal.Decimal, len(months))
	for _, m := range months {
		byMonth[m.MonthFor] = money.Cents(m.Total)
	}
	d.MonthlyRevenue = make([]MonthIncome, 0, 12)
	for m := time.January; m <= time.December; m++ {
		income := byMonth[fmt.Sprintf("%04d-%02d", now.Year(), int(m))]
		d.MonthlyRevenue = append(d.MonthlyRevenue, MonthIncome{Month: m.String()[:3], Income: income})
		d.AnnualRevenue = d.AnnualRevenue.Add(income)
	}
	d.AnnualRevenueUSD = budgetService.FormatUSD(d.AnnualRevenue, rate)

	current := dbtime.FormatMonth(now)
	if err := db.Model(&paymentModel.PaymentModel{}).
		Where("paid = ? AND month_for = ?", true, current).
		Distinct("user_id").
		Count(&d.PaidStudents).Error; err != nil {
		return d, err
	}
	var paidActive int64
	if err := activeSeats(db).
		Where("EXISTS (SELECT 1 FROM payments p WHERE p.user_id = gs.user_id AND p.paid = ? AND p.month_for = ?)", true, current).
		Distinct("gs.user_id").
		Count(&paidActive).Error; err != nil {
		return d, err
	}
	d.UnpaidStudents = d.TotalStudents - paidActive
	return d, nil
}

type monthSum struct {
	MonthFor string
	Total    decimal.Decimal
}
