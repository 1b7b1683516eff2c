package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	courseModel "educenter_backend/internals/features/catalog/courses/model"
	userModel "educenter_backend/internals/features/users/user/model"
)

type GroupStatus string

const (
	GroupActive    GroupStatus = "active"
	GroupPlanned   GroupStatus = "planned"
	GroupCompleted GroupStatus = "completed"
)

func (s GroupStatus) Valid() bool {
	switch s {
	case GroupActive, GroupPlanned, GroupCompleted:
		return true
	}
	return false
}

type GroupModel struct {
	ID         uint                        `gorm:"primaryKey" json:"id"`
	Name       string                      `gorm:"type:varchar(100);not null;uniqueIndex:uq_groups_name_course" json:"name"`
	CourseID   uint                        `gorm:"not null;uniqueIndex:uq_groups_name_course;index" json:"courseId"`
	Course     *courseModel.CourseModel    `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	TeacherID  *uint                       `gorm:"index" json:"teacherId"`
	Teacher    *userModel.UserModel        `gorm:"foreignKey:TeacherID" json:"teacher,omitempty"`
	Price      decimal.Decimal             `gorm:"type:numeric(12,2);not null;default:0" json:"price"`
	StartTime  string                      `gorm:"type:varchar(5)" json:"startTime"`
	EndTime    string                      `gorm:"type:varchar(5)" json:"endTime"`
	DaysOfWeek datatypes.JSONSlice[string] `json:"daysOfWeek"`
	Status     GroupStatus                 `gorm:"type:varchar(20);not null;default:active;index" json:"status"`
	Students   []GroupStudentModel         `gorm:"foreignKey:GroupID" json:"-"`
	CreatedAt  time.Time                   `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time                   `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (GroupModel) TableName() string {
	return "groups"
}

func (g GroupModel) IsActive() bool { return g.Status == GroupActive }

// GroupStudentModel is one roster row; (group_id, user_id) is the key.
type GroupStudentModel struct {
	GroupID   uint                 `gorm:"primaryKey" json:"groupId"`
	UserID    uint                 `gorm:"primaryKey;index" json:"userId"`
	User      *userModel.UserModel `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CreatedAt time.Time            `gorm:"autoCreateTime" json:"createdAt"`
}

func (GroupStudentModel) TableName() string {
	return "group_students"
}
