package model

import (
	"time"

	groupModel "educenter_backend/internals/features/catalog/groups/model"
	userModel "educenter_backend/internals/features/users/user/model"
)

type Status string

const (
	StatusPresent             Status = "present"
	StatusAbsent              Status = "absent"
	StatusLate                Status = "late"
	StatusAbsentWithReason    Status = "absent_with_reason"
	StatusAbsentWithoutReason Status = "absent_without_reason"
)

// ValidStudent is the set a teacher may mark for students.
func (s Status) ValidStudent() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate:
		return true
	}
	return false
}

// ValidTeacher is the set an admin may mark for a teacher.
func (s Status) ValidTeacher() bool {
	return s == StatusAbsentWithReason || s == StatusAbsentWithoutReason
}

type AttendanceModel struct {
	ID                  uint                   `gorm:"primaryKey" json:"id"`
	UserID              uint                   `gorm:"not null;uniqueIndex:uq_attendance_day,priority:1" json:"userId"`
	User                *userModel.UserModel   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	GroupID             uint                   `gorm:"not null;uniqueIndex:uq_attendance_day,priority:2;index" json:"groupId"`
	Group               *groupModel.GroupModel `gorm:"foreignKey:GroupID" json:"group,omitempty"`
	Date                string                 `gorm:"type:varchar(10);not null;uniqueIndex:uq_attendance_day,priority:3" json:"date"`
	IsTeacherAttendance bool                   `gorm:"not null;default:false;uniqueIndex:uq_attendance_day,priority:4" json:"isTeacherAttendance"`
	Status              Status                 `gorm:"type:varchar(30);not null" json:"status"`
	Grade               *int                   `json:"grade"`
	MarkedByID          *uint                  `json:"markedById"`
	MarkedBy            *userModel.UserModel   `gorm:"foreignKey:MarkedByID" json:"markedBy,omitempty"`
	CreatedAt           time.Time              `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt           time.Time              `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (AttendanceModel) TableName() string {
	return "attendances"
}
