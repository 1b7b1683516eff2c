package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ArchivedUserModel is a snapshot of a removed user.
type ArchivedUserModel struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	OriginalID *uint     `json:"originalId"`
	FirstName  string    `gorm:"type:varchar(50);not null" json:"firstName"`
	LastName   string    `gorm:"type:varchar(50);not null" json:"lastName"`
	Username   *string   `gorm:"type:varchar(50)" json:"username"`
	Password   *string   `gorm:"type:text" json:"-"`
	Phone      string    `gorm:"type:varchar(15);not null;index" json:"phone"`
	Address    *string   `gorm:"type:varchar(255)" json:"address"`
	Specialty  *string   `gorm:"type:varchar(100)" json:"specialty"`
	Salary     *decimal.Decimal `gorm:"type:numeric(12,2)" json:"salary"`
	Percent    *float64         `gorm:"type:numeric(5,2)" json:"percent"`
	CourseID   *uint     `json:"courseId"`
	RoleID     uint      `gorm:"not null;index" json:"roleId"`
	ArchivedAt time.Time `gorm:"autoCreateTime" json:"archivedAt"`
}

func (ArchivedUserModel) TableName() string {
	return "archived_users"
}
