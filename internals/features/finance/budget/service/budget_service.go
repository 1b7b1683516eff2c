package service

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	groupModel "educenter_backend/internals/features/catalog/groups/model"
	groupService "educenter_backend/internals/features/catalog/groups/service"
	paymentModel "educenter_backend/internals/features/finance/payments/model"
	userModel "educenter_backend/internals/features/users/user/model"
	"educenter_backend/internals/helpers/dbtime"
	"educenter_backend/internals/helpers/money"
)

// Carry-over of unpaid revenue starts here.
const epochYear = 2020

type StaffMember struct {
	ID        uint            `json:"id"`
	FirstName string          `json:"firstName"`
	LastName  string          `json:"lastName"`
	Role      string          `json:"role"`
	Salary    decimal.Decimal `json:"salary"`
}

type Summary struct {
	Month              int             `json:"month"`
	Year               int             `json:"year"`
	ExpectedRevenue    decimal.Decimal `json:"expectedRevenue"`
	PreviousUnpaid     decimal.Decimal `json:"previousUnpaid"`
	TotalPaid          decimal.Decimal `json:"totalPaid"`
	UnpaidAmount       decimal.Decimal `json:"unpaidAmount"`
	TotalSalary        decimal.Decimal `json:"totalSalary"`
	NetProfit          decimal.Decimal `json:"netProfit"`
	USDExchangeRate    float64         `json:"usdExchangeRate"`
	ExpectedRevenueUSD string          `json:"expectedRevenueUSD"`
	TotalPaidUSD       string          `json:"totalPaidUSD"`
	UnpaidAmountUSD    string          `json:"unpaidAmountUSD"`
	TotalSalaryUSD     string          `json:"totalSalaryUSD"`
	NetProfitUSD       string          `json:"netProfitUSD"`
	Staff              []StaffMember   `json:"staff"`
}

type billedGroup struct {
	createdAt time.Time
	monthly   decimal.Decimal
}

// billing loads active groups with their current monthly revenue.
func billing(db *gorm.DB) ([]billedGroup, error) {
	var groups []groupModel.GroupModel
	if err := db.Select("id", "price", "created_at").
		Where("status = ?", groupModel.GroupActive).
		Find(&groups).Error; err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(groups))
	for _, g := range groups {
		ids = append(ids, g.ID)
	}
	counts, err := groupService.RosterCounts(db, ids...)
	if err != nil {
		return nil, err
	}
	out := make([]billedGroup, 0, len(groups))
	for _, g := range groups {
		out = append(out, billedGroup{createdAt: g.CreatedAt, monthly: g.Price.Mul(decimal.NewFromInt(counts[g.ID]))})
	}
	return out, nil
}

func expectedBy(groups []billedGroup, end time.Time) decimal.Decimal {
	sum := decimal.Zero
	for _, g := range groups {
		if !g.createdAt.After(end) {
			sum = sum.Add(g.monthly)
		}
	}
	return sum
}

type monthSum struct {
	MonthFor string
	Total    decimal.Decimal
}

func paidByMonth(db *gorm.DB) (map[string]decimal.Decimal, error) {
	var rows []monthSum
	if err := db.Model(&paymentModel.PaymentModel{}).
		Select("month_for, COALESCE(SUM(amount), 0) AS total").
		Where("paid = ?", true).
		Group("month_for").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]decimal.Decimal, len(rows))
	for _, r := range rows {
		out[r.MonthFor] = money.Cents(r.Total)
	}
	return out, nil
}

func staff(db *gorm.DB) ([]StaffMember, decimal.Decimal, error) {
	var users []userModel.UserModel
	if err := db.Preload("Role").
		Where("salary IS NOT NULL").
		Order("id ASC").
		Find(&users).Error; err != nil {
		return nil, decimal.Zero, err
	}
	out := make([]StaffMember, 0, len(users))
	total := decimal.Zero
	for _, u := range users {
		out = append(out, StaffMember{
			ID:        u.ID,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Role:      string(u.RoleName()),
			Salary:    *u.Salary,
		})
		total = total.Add(*u.Salary)
	}
	return out, total, nil
}

// BudgetSummary computes the month's budget. Each earlier month since the
// epoch contributes its positive shortfall to previousUnpaid.
func BudgetSummary(db *gorm.DB, year int, month time.Month, rate float64) (Summary, error) {
	groups, err := billing(db)
	if err != nil {
		return Summary{}, err
	}
	paid, err := paidByMonth(db)
	if err != nil {
		return Summary{}, err
	}

	previous := decimal.Zero
	for y := epochYear; y <= year; y++ {
		last := time.December
		if y == year {
			last = month - 1
		}
		for m := time.January; m <= last; m++ {
			_, end := dbtime.MonthBounds(y, m)
			if gap := expectedBy(groups, end).Sub(paid[fmt.Sprintf("%04d-%02d", y, int(m))]); gap.IsPositive() {
				previous = previous.Add(gap)
			}
		}
	}

	_, end := dbtime.MonthBounds(year, month)
	s := Summary{
		Month:           int(month),
		Year:            year,
		PreviousUnpaid:  previous,
		ExpectedRevenue: expectedBy(groups, end).Add(previous),
		TotalPaid:       paid[fmt.Sprintf("%04d-%02d", year, int(month))],
		USDExchangeRate: rate,
	}
	s.UnpaidAmount = s.ExpectedRevenue.Sub(s.TotalPaid)
	if s.Staff, s.TotalSalary, err = staff(db); err != nil {
		return Summary{}, err
	}
	s.NetProfit = s.TotalPaid.Sub(s.TotalSalary)

	s.ExpectedRevenueUSD = FormatUSD(s.ExpectedRevenue, rate)
	s.TotalPaidUSD = FormatUSD(s.TotalPaid, rate)
	s.UnpaidAmountUSD = FormatUSD(s.UnpaidAmount, rate)
	s.TotalSalaryUSD = FormatUSD(s.TotalSalary, rate)
	s.NetProfitUSD = FormatUSD(s.NetProfit, rate)
	return s, nil
}
