package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	courseModel "educenter_backend/internals/features/catalog/courses/model"
	roleModel "educenter_backend/internals/features/users/role/model"
	"educenter_backend/internals/constants"
)

type UserModel struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	FirstName string  `gorm:"type:varchar(50);not null" json:"firstName"`
	LastName  string  `gorm:"type:varchar(50);not null" json:"lastName"`
	Username  *string `gorm:"type:varchar(50);uniqueIndex" json:"username"`
	Password  *string `gorm:"type:text" json:"-"`
	Phone     string  `gorm:"type:varchar(15);not null;uniqueIndex" json:"phone"`
	Address   *string `gorm:"type:varchar(255)" json:"address"`
	Specialty *string `gorm:"type:varchar(100)" json:"specialty"`

	// Salary is derived for teachers; see the salary service.
	Salary  *decimal.Decimal `gorm:"type:numeric(12,2)" json:"salary"`
	Percent *float64         `gorm:"type:numeric(5,2)" json:"percent"`

	RoleID   uint                     `gorm:"not null;index" json:"roleId"`
	Role     *roleModel.RoleModel     `gorm:"foreignKey:RoleID" json:"role,omitempty"`
	CourseID *uint                    `gorm:"index" json:"courseId"`
	Course   *courseModel.CourseModel `gorm:"foreignKey:CourseID" json:"course,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (UserModel) TableName() string {
	return "users"
}

func (u UserModel) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// RoleName needs Role preloaded.
func (u UserModel) RoleName() constants.Role {
	if u.Role == nil {
		return ""
	}
	return constants.Role(u.Role.Name)
}

func (u UserModel) IsRole(r constants.Role) bool {
	return u.RoleName() == r
}
