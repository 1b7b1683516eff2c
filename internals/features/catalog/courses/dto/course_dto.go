package dto

import (
	"strings"

	"github.com/shopspring/decimal"

	"educenter_backend/internals/features/catalog/courses/model"
)

type CreateCourseRequest struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

func (r *CreateCourseRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	if r.Description != nil {
		d := strings.TrimSpace(*r.Description)
		r.Description = &d
	}
}

func (r CreateCourseRequest) ToModel() model.CourseModel {
	return model.CourseModel{Name: r.Name, Description: r.Description}
}

type UpdateCourseRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

func (r *UpdateCourseRequest) Normalize() {
	if r.Name != nil {
		n := strings.TrimSpace(*r.Name)
		r.Name = &n
	}
}

func (r UpdateCourseRequest) ApplyToModel(m *model.CourseModel) {
	if r.Name != nil {
		m.Name = *r.Name
	}
	if r.Description != nil {
		m.Description = r.Description
	}
}

type CourseStats struct {
	TotalCourses    int64 `json:"totalCourses"`
	TotalStudents   int64 `json:"totalStudents"`
	ThisMonthGroups int64 `json:"thisMonthGroups"`
}

type CourseListItem struct {
	ID            uint    `json:"id"`
	Name          string  `json:"name"`
	Description   *string `json:"description"`
	TotalGroups   int64   `json:"totalGroups"`
	TotalStudents int64   `json:"totalStudents"`
}

type CourseGroup struct {
	ID           uint            `json:"id"`
	Name         string          `json:"name"`
	Status       string          `json:"status"`
	Price        decimal.Decimal `json:"price"`
	TeacherID    *uint           `json:"teacherId"`
	TeacherName  string          `json:"teacherName"`
	StudentCount int64           `json:"studentCount"`
}

type CourseDetail struct {
	model.CourseModel
	Groups []CourseGroup `json:"groups"`
}
