package model

import (
	"time"

	courseModel "educenter_backend/internals/features/catalog/courses/model"
	groupModel "educenter_backend/internals/features/catalog/groups/model"
	userModel "educenter_backend/internals/features/users/user/model"
)

// ApplicationModel is a pre-enrolment lead. Status false means new,
// true means in contact or converted.
type ApplicationModel struct {
	ID          uint                     `gorm:"primaryKey" json:"id"`
	FirstName   string                   `gorm:"type:varchar(50);not null" json:"firstName"`
	LastName    string                   `gorm:"type:varchar(50);not null" json:"lastName"`
	Phone       string                   `gorm:"type:varchar(15);not null;index" json:"phone"`
	Status      bool                     `gorm:"not null;default:false" json:"status"`
	IsContacted bool                     `gorm:"not null;default:false" json:"isContacted"`
	UserID      *uint                    `gorm:"index" json:"userId"`
	User        *userModel.UserModel     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	GroupID     *uint                    `gorm:"index" json:"groupId"`
	Group       *groupModel.GroupModel   `gorm:"foreignKey:GroupID" json:"group,omitempty"`
	CourseID    *uint                    `gorm:"index" json:"courseId"`
	Course      *courseModel.CourseModel `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	CreatedAt   time.Time                `gorm:"autoCreateTime" json:"createdAt"`
}

func (ApplicationModel) TableName() string {
	return "applications"
}
