package model

import (
	"time"

	"github.com/shopspring/decimal"

	courseModel "educenter_backend/internals/features/catalog/courses/model"
	groupModel "educenter_backend/internals/features/catalog/groups/model"
	userModel "educenter_backend/internals/features/users/user/model"
)

type PaymentType string

const (
	PaymentClick    PaymentType = "click"
	PaymentCash     PaymentType = "naxt"
	PaymentTransfer PaymentType = "percheslinei"
)

func (t PaymentType) Valid() bool {
	switch t {
	case PaymentClick, PaymentCash, PaymentTransfer:
		return true
	}
	return false
}

type PaymentModel struct {
	ID          uint                     `gorm:"primaryKey" json:"id"`
	UserID      uint                     `gorm:"not null;index:idx_payments_ledger,priority:1" json:"userId"`
	User        *userModel.UserModel     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	GroupID     uint                     `gorm:"not null;index:idx_payments_ledger,priority:2" json:"groupId"`
	Group       *groupModel.GroupModel   `gorm:"foreignKey:GroupID" json:"group,omitempty"`
	CourseID    *uint                    `gorm:"index" json:"courseId"`
	Course      *courseModel.CourseModel `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	Amount      decimal.Decimal          `gorm:"type:numeric(12,2);not null" json:"amount"`
	MonthFor    string                   `gorm:"type:varchar(7);not null;index:idx_payments_ledger,priority:3" json:"monthFor"`
	PaymentType PaymentType              `gorm:"type:varchar(20);not null" json:"paymentType"`
	Paid        bool                     `gorm:"not null;default:false" json:"paid"`
	CreatedAt   time.Time                `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time                `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (PaymentModel) TableName() string {
	return "payments"
}
