package dto

import (
	"strings"
	"time"

	"educenter_backend/internals/features/attendance/attendance/model"
	"educenter_backend/internals/features/attendance/attendance/service"
)

type MarkRowRequest struct {
	StudentID uint   `json:"studentId" validate:"required"`
	Status    string `json:"status" validate:"required"`
	Grade     *int   `json:"grade" validate:"omitempty,min=0,max=100"`
}

// MarkRequest is the body of create and upsert.
type MarkRequest struct {
	GroupID     uint             `json:"groupId" validate:"required"`
	Date        string           `json:"date" validate:"required"`
	Attendances []MarkRowRequest `json:"attendances" validate:"required,min=1,dive"`
}

// BulkUpdateRequest carries the rows of PATCH /group/:groupId/date/:date.
type BulkUpdateRequest struct {
	Attendances []MarkRowRequest `json:"attendances" validate:"required,min=1,dive"`
}

func toRows(in []MarkRowRequest) []service.MarkRow {
	out := make([]service.MarkRow, 0, len(in))
	for _, r := range in {
		out = append(out, service.MarkRow{
			StudentID: r.StudentID,
			Status:    model.Status(strings.ToLower(strings.TrimSpace(r.Status))),
			Grade:     r.Grade,
		})
	}
	return out
}

func (r MarkRequest) ToBatch() service.MarkBatch {
	return service.MarkBatch{GroupID: r.GroupID, Date: strings.TrimSpace(r.Date), Rows: toRows(r.Attendances)}
}

func (r BulkUpdateRequest) ToBatch(groupID uint, date string) service.MarkBatch {
	return service.MarkBatch{GroupID: groupID, Date: date, Rows: toRows(r.Attendances)}
}

type TeacherMarkRequest struct {
	TeacherID uint   `json:"teacherId" validate:"required"`
	GroupID   uint   `json:"groupId" validate:"required"`
	Date      string `json:"date" validate:"required"`
	Status    string `json:"status" validate:"required"`
}

func (r TeacherMarkRequest) ToInput() service.TeacherMark {
	return service.TeacherMark{
		TeacherID: r.TeacherID,
		GroupID:   r.GroupID,
		Date:      strings.TrimSpace(r.Date),
		Status:    model.Status(strings.ToLower(strings.TrimSpace(r.Status))),
	}
}

type AttendanceResponse struct {
	ID          uint         `json:"id"`
	UserID      uint         `json:"userId"`
	StudentName string       `json:"studentName,omitempty"`
	GroupID     uint         `json:"groupId"`
	GroupName   string       `json:"groupName,omitempty"`
	Date        string       `json:"date"`
	Status      model.Status `json:"status"`
	Grade       *int         `json:"grade"`
	MarkedByID  *uint        `json:"markedById"`
	CreatedAt   time.Time    `json:"createdAt"`
}

func FromModel(a model.AttendanceModel) AttendanceResponse {
	r := AttendanceResponse{
		ID:         a.ID,
		UserID:     a.UserID,
		GroupID:    a.GroupID,
		Date:       a.Date,
		Status:     a.Status,
		Grade:      a.Grade,
		MarkedByID: a.MarkedByID,
		CreatedAt:  a.CreatedAt,
	}
	if a.User != nil {
		r.StudentName = a.User.FullName()
	}
	if a.Group != nil {
		r.GroupName = a.Group.Name
	}
	return r
}

func FromModelList(list []model.AttendanceModel) []AttendanceResponse {
	out := make([]AttendanceResponse, 0, len(list))
	for _, a := range list {
		out = append(out, FromModel(a))
	}
	return out
}

type TeacherAttendanceResponse struct {
	ID          uint         `json:"id"`
	TeacherName string       `json:"teacherName"`
	GroupName   string       `json:"groupName"`
	Date        string       `json:"date"`
	Status      model.Status `json:"status"`
	MarkedBy    string       `json:"markedBy"`
}

func FromTeacherModel(a model.AttendanceModel) TeacherAttendanceResponse {
	r := TeacherAttendanceResponse{ID: a.ID, Date: a.Date, Status: a.Status}
	if a.User != nil {
		r.TeacherName = a.User.FullName()
	}
	if a.Group != nil {
		r.GroupName = a.Group.Name
	}
	if a.MarkedBy != nil {
		r.MarkedBy = a.MarkedBy.FullName()
	}
	return r
}
