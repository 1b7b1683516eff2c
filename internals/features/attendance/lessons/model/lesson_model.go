package model

import (
	"time"

	groupModel "educenter_backend/internals/features/catalog/groups/model"
)

type LessonModel struct {
	ID           uint                   `gorm:"primaryKey" json:"id"`
	GroupID      uint                   `gorm:"not null;index" json:"groupId"`
	Group        *groupModel.GroupModel `gorm:"foreignKey:GroupID" json:"group,omitempty"`
	LessonName   string                 `gorm:"type:varchar(150);not null" json:"lessonName"`
	LessonNumber int                    `gorm:"not null" json:"lessonNumber"`
	LessonDate   time.Time              `gorm:"not null;index" json:"lessonDate"`
	EndDate      time.Time              `gorm:"not null" json:"endDate"`
	CreatedAt    time.Time              `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time              `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (LessonModel) TableName() string {
	return "lessons"
}
