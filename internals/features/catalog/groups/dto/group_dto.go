package dto

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"educenter_backend/internals/features/catalog/groups/model"
	"educenter_backend/internals/helpers/dbtime"
	"educenter_backend/internals/helpers/money"
)

type CreateGroupRequest struct {
	Name       string          `json:"name" validate:"required,max=100"`
	CourseID   uint            `json:"courseId" validate:"required"`
	TeacherID  *uint           `json:"teacherId"`
	Price      decimal.Decimal `json:"price" validate:"gte=0"`
	StartTime  string          `json:"startTime" validate:"required"`
	EndTime    string          `json:"endTime" validate:"required"`
	DaysOfWeek []string        `json:"daysOfWeek" validate:"required,min=1"`
	UserIDs    []uint          `json:"userIds"`
}

func (r *CreateGroupRequest) Normalize() error {
	r.Name = strings.TrimSpace(r.Name)
	days, err := NormalizeSchedule(r.StartTime, r.EndTime, r.DaysOfWeek)
	if err != nil {
		return err
	}
	r.DaysOfWeek = days
	return nil
}

func (r CreateGroupRequest) ToModel() model.GroupModel {
	return model.GroupModel{
		Name:       r.Name,
		CourseID:   r.CourseID,
		TeacherID:  r.TeacherID,
		Price:      money.Cents(r.Price),
		StartTime:  strings.TrimSpace(r.StartTime),
		EndTime:    strings.TrimSpace(r.EndTime),
		DaysOfWeek: datatypes.JSONSlice[string](r.DaysOfWeek),
		Status:     model.GroupActive,
	}
}

// UpdateGroupRequest is partial; a teacherId of 0 unassigns the teacher.
type UpdateGroupRequest struct {
	Name       *string          `json:"name" validate:"omitempty,min=1,max=100"`
	CourseID   *uint            `json:"courseId"`
	TeacherID  *uint            `json:"teacherId"`
	Price      *decimal.Decimal `json:"price" validate:"omitempty,gte=0"`
	StartTime  *string          `json:"startTime"`
	EndTime    *string          `json:"endTime"`
	DaysOfWeek *[]string        `json:"daysOfWeek"`
	UserIDs    *[]uint          `json:"userIds"`
}

// ApplyToModel validates the resulting schedule as a whole.
func (r UpdateGroupRequest) ApplyToModel(m *model.GroupModel) error {
	if r.Name != nil {
		m.Name = strings.TrimSpace(*r.Name)
	}
	if r.CourseID != nil {
		m.CourseID = *r.CourseID
	}
	if r.TeacherID != nil {
		if *r.TeacherID == 0 {
			m.TeacherID = nil
		} else {
			id := *r.TeacherID
			m.TeacherID = &id
		}
	}
	if r.Price != nil {
		m.Price = money.Cents(*r.Price)
	}
	if r.StartTime != nil {
		m.StartTime = strings.TrimSpace(*r.StartTime)
	}
	if r.EndTime != nil {
		m.EndTime = strings.TrimSpace(*r.EndTime)
	}
	days := []string(m.DaysOfWeek)
	if r.DaysOfWeek != nil {
		days = *r.DaysOfWeek
	}
	norm, err := NormalizeSchedule(m.StartTime, m.EndTime, days)
	if err != nil {
		return err
	}
	m.DaysOfWeek = datatypes.JSONSlice[string](norm)
	return nil
}

// NormalizeSchedule checks HH:MM times and rewrites weekday names to their
// canonical spelling, dropping duplicates.
func NormalizeSchedule(start, end string, days []string) ([]string, error) {
	if _, err := dbtime.ParseTod(start); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "startTime must be HH:MM")
	}
	if _, err := dbtime.ParseTod(end); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "endTime must be HH:MM")
	}
	if len(days) == 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "daysOfWeek must not be empty")
	}
	seen := make(map[time.Weekday]bool, len(days))
	out := make([]string, 0, len(days))
	for _, d := range days {
		wd, ok := dbtime.ParseWeekday(d)
		if !ok {
			return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid weekday: "+d)
		}
		if seen[wd] {
			continue
		}
		seen[wd] = true
		out = append(out, dbtime.WeekdayName(wd))
	}
	return out, nil
}

type GroupResponse struct {
	ID           uint            `json:"id"`
	Name         string          `json:"name"`
	CourseID     uint            `json:"courseId"`
	CourseName   string          `json:"courseName"`
	TeacherID    *uint           `json:"teacherId"`
	TeacherName  string          `json:"teacherName"`
	TeacherPhone string          `json:"teacherPhone,omitempty"`
	Price        decimal.Decimal `json:"price"`
	StartTime    string          `json:"startTime"`
	EndTime      string          `json:"endTime"`
	DaysOfWeek   []string        `json:"daysOfWeek"`
	Status       string          `json:"status"`
	StudentCount int64           `json:"studentCount"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// FromModel expects Course and Teacher preloaded when present.
func FromModel(g model.GroupModel, students int64) GroupResponse {
	out := GroupResponse{
		ID:           g.ID,
		Name:         g.Name,
		CourseID:     g.CourseID,
		TeacherID:    g.TeacherID,
		Price:        g.Price,
		StartTime:    g.StartTime,
		EndTime:      g.EndTime,
		DaysOfWeek:   []string(g.DaysOfWeek),
		Status:       string(g.Status),
		StudentCount: students,
		CreatedAt:    g.CreatedAt,
	}
	if out.DaysOfWeek == nil {
		out.DaysOfWeek = []string{}
	}
	if g.Course != nil {
		out.CourseName = g.Course.Name
	}
	if g.Teacher != nil {
		out.TeacherName = g.Teacher.FullName()
		out.TeacherPhone = g.Teacher.Phone
	}
	return out
}

func FromModelList(groups []model.GroupModel, counts map[uint]int64) []GroupResponse {
	out := make([]GroupResponse, 0, len(groups))
	for _, g := range groups {
		out = append(out, FromModel(g, counts[g.ID]))
	}
	return out
}

type StudentItem struct {
	ID       uint    `json:"id"`
	FullName string  `json:"fullName"`
	Username *string `json:"username,omitempty"`
	Phone    string  `json:"phone"`
	Address  *string `json:"address,omitempty"`
}

type ScheduleAttendance struct {
	Date   string `json:"date"`
	Status string `json:"status"`
	Grade  *int   `json:"grade"`
}

type ScheduleStudent struct {
	StudentItem
	Attendance []ScheduleAttendance `json:"attendance"`
}

type ScheduleGroup struct {
	GroupResponse
	LessonDates []string          `json:"lessonDates"`
	Students    []ScheduleStudent `json:"students"`
}
