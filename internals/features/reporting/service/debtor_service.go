package service

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"educenter_backend/internals/constants"
	groupModel "educenter_backend/internals/features/catalog/groups/model"
	paymentModel "educenter_backend/internals/features/finance/payments/model"
	"educenter_backend/internals/helpers/dbtime"
	"educenter_backend/internals/helpers/money"
)

type DebtorFilter struct {
	FirstName string
	LastName  string
	GroupID   uint
}

type Debtor struct {
	UserID      uint            `json:"userId"`
	FullName    string          `json:"fullName"`
	Group       string          `json:"group"`
	GroupID     uint            `json:"groupId"`
	Debt        decimal.Decimal `json:"debt"`
	UnpaidMonth string          `json:"unpaidMonth"`
}

type DebtorReport struct {
	TotalDebt   decimal.Decimal `json:"totalDebt"`
	DebtorCount int             `json:"debtorCount"`
	Debtors     []Debtor        `json:"debtors"`
}

type enrolment struct {
	UserID    uint
	GroupID   uint
	FirstName string
	LastName  string
	GroupName string
	Price     decimal.Decimal
}

type paidTotal struct {
	UserID    uint
	GroupID   uint
	Total     decimal.Decimal
	LastMonth string
}

type pairKey struct{ user, group uint }

// nextMonth returns the YYYY-MM after m, or "" when m is malformed.
func nextMonth(m string) string {
	t, err := time.Parse(dbtime.MonthLayout, m)
	if err != nil {
		return ""
	}
	return t.AddDate(0, 1, 0).Format(dbtime.MonthLayout)
}

// Debtors lists every (student, active group) pair whose paid total is
// below the group price. currentMonth labels pairs that never paid.
func Debtors(db *gorm.DB, f DebtorFilter, currentMonth string) (DebtorReport, error) {
	q := db.Table("group_students gs").
		Select("gs.user_id, gs.group_id, u.first_name, u.last_name, g.name AS group_name, g.price").
		Joins("JOIN users u ON u.id = gs.user_id").
		Joins("JOIN roles r ON r.id = u.role_id").
		Joins("JOIN groups g ON g.id = gs.group_id").
		Where("r.name = ? AND g.status = ?", constants.RoleStudent, groupModel.GroupActive)
	if s := strings.ToLower(strings.TrimSpace(f.FirstName)); s != "" {
		q = q.Where("LOWER(u.first_name) LIKE ?", "%"+s+"%")
	}
	if s := strings.ToLower(strings.TrimSpace(f.LastName)); s != "" {
		q = q.Where("LOWER(u.last_name) LIKE ?", "%"+s+"%")
	}
	if f.GroupID > 0 {
		q = q.Where("gs.group_id = ?", f.GroupID)
	}
	var pairs []enrolment
	if err := q.Order("u.first_name ASC, u.last_name ASC, gs.user_id ASC, gs.group_id ASC").
		Scan(&pairs).Error; err != nil {
		return DebtorReport{}, err
	}

	var totals []paidTotal
	if err := db.Model(&paymentModel.PaymentModel{}).
		Select("user_id, group_id, SUM(amount) AS total, MAX(month_for) AS last_month").
		Where("paid = ?", true).
		Group("user_id, group_id").
		Scan(&totals).Error; err != nil {
		return DebtorReport{}, err
	}
	paid := make(map[pairKey]paidTotal, len(totals))
	for _, t := range totals {
		paid[pairKey{t.UserID, t.GroupID}] = t
	}

	out := DebtorReport{TotalDebt: decimal.Zero, Debtors: make([]Debtor, 0)}
	for _, p := range pairs {
		t, hasPaid := paid[pairKey{p.UserID, p.GroupID}]
		debt := money.Cents(p.Price).Sub(money.Cents(t.Total))
		if !debt.IsPositive() {
			continue
		}
		unpaid := currentMonth
		if hasPaid {
			if m := nextMonth(t.LastMonth); m != "" {
				unpaid = m
			}
		}
		out.Debtors = append(out.Debtors, Debtor{
			UserID:      p.UserID,
			FullName:    strings.TrimSpace(p.FirstName + " " + p.LastName),
			Group:       p.GroupName,
			GroupID:     p.GroupID,
			Debt:        debt,
			UnpaidMonth: unpaid,
		})
		out.TotalDebt = out.TotalDebt.Add(debt)
	}
	out.DebtorCount = len(out.Debtors)
	return out, nil
}
