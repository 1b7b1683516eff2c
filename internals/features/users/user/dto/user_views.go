package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type StudentBrief struct {
	ID       uint   `json:"id"`
	FullName string `json:"fullName"`
	Phone    string `json:"phone"`
}

// StudentGroup is a group as seen from the all-students listing.
type StudentGroup struct {
	ID           uint            `json:"id"`
	Name         string          `json:"name"`
	Teacher      *string         `json:"teacher"`
	Course       *string         `json:"course"`
	StudentCount int64           `json:"studentCount"`
	Status       string          `json:"status"`
	Price        decimal.Decimal `json:"price"`
	Time         *string         `json:"time"`
	DaysOfWeek   []string        `json:"daysOfWeek"`
}

// StudentPayment has a nil ID for the synthetic unpaid row of a group
// with no payment in the requested month.
type StudentPayment struct {
	ID          *uint           `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	MonthFor    string          `json:"monthFor"`
	Paid        bool            `json:"paid"`
	PaymentType *string         `json:"paymentType"`
	GroupID     uint            `json:"groupId"`
	CreatedAt   *time.Time      `json:"createdAt"`
}

type StudentWithPayments struct {
	ID       uint             `json:"id"`
	FullName string           `json:"fullName"`
	Phone    string           `json:"phone"`
	Address  *string          `json:"address"`
	Groups   []StudentGroup   `json:"groups"`
	Payments []StudentPayment `json:"payments"`
}

type Worker struct {
	ID        uint             `json:"id"`
	FirstName string           `json:"firstName"`
	LastName  string           `json:"lastName"`
	Username  *string          `json:"username"`
	Phone     string           `json:"phone"`
	Address   *string          `json:"address"`
	Specialty *string          `json:"specialty"`
	Salary    *decimal.Decimal `json:"salary"`
	Role      string           `json:"role"`
	Groups    []string         `json:"groups"`
	Courses   []string         `json:"courses"`
}
