package dto

import (
	"strings"

	"github.com/shopspring/decimal"

	userModel "educenter_backend/internals/features/users/user/model"
)

/* ===============================
   CREATE
=================================*/

type CreateUserRequest struct {
	FirstName string           `json:"firstName" validate:"required,max=50"`
	LastName  string           `json:"lastName" validate:"required,max=50"`
	Username  *string          `json:"username" validate:"omitempty,min=3,max=50"`
	Password  *string          `json:"password" validate:"omitempty,min=6,max=72"`
	Phone     string           `json:"phone" validate:"required,max=15"`
	Address   *string          `json:"address" validate:"omitempty,max=255"`
	Specialty *string          `json:"specialty" validate:"omitempty,max=100"`
	Role      string           `json:"role"`
	Salary    *decimal.Decimal `json:"salary" validate:"omitempty,gte=0"`
	Percent   *float64         `json:"percent" validate:"omitempty,gte=0,lte=100"`
	CourseID  *uint            `json:"courseId"`
	GroupID   *uint            `json:"groupId"`
}

func (r *CreateUserRequest) Normalize() {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Role = strings.TrimSpace(r.Role)
	r.Username = trimPtr(r.Username)
	r.Password = trimPtr(r.Password)
	r.Address = trimPtr(r.Address)
	r.Specialty = trimPtr(r.Specialty)
	if r.CourseID != nil && *r.CourseID == 0 {
		r.CourseID = nil
	}
	if r.GroupID != nil && *r.GroupID == 0 {
		r.GroupID = nil
	}
}

// ToModel leaves Password, RoleID and Salary to the caller.
func (r CreateUserRequest) ToModel() userModel.UserModel {
	return userModel.UserModel{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Username:  r.Username,
		Phone:     r.Phone,
		Address:   r.Address,
		Specialty: r.Specialty,
		Percent:   r.Percent,
	}
}

/* ===============================
   UPDATE
=================================*/

// UpdateUserRequest is a partial update; nil fields are left untouched.
type UpdateUserRequest struct {
	FirstName *string          `json:"firstName" validate:"omitempty,min=1,max=50"`
	LastName  *string          `json:"lastName" validate:"omitempty,min=1,max=50"`
	Username  *string          `json:"username" validate:"omitempty,min=3,max=50"`
	Password  *string          `json:"password" validate:"omitempty,min=6,max=72"`
	Phone     *string          `json:"phone" validate:"omitempty,min=1,max=15"`
	Address   *string          `json:"address" validate:"omitempty,max=255"`
	Specialty *string          `json:"specialty" validate:"omitempty,max=100"`
	Salary    *decimal.Decimal `json:"salary" validate:"omitempty,gte=0"`
	Percent   *float64         `json:"percent" validate:"omitempty,gte=0,lte=100"`
}

func (r *UpdateUserRequest) Normalize() {
	r.FirstName = trimPtr(r.FirstName)
	r.LastName = trimPtr(r.LastName)
	r.Username = trimPtr(r.Username)
	r.Password = trimPtr(r.Password)
	r.Phone = trimPtr(r.Phone)
	r.Address = trimPtr(r.Address)
	r.Specialty = trimPtr(r.Specialty)
}

// SelfService drops the fields a user may not change on their own record.
func (r *UpdateUserRequest) SelfService() {
	r.Salary = nil
	r.Percent = nil
}

// ApplyToModel copies the set fields. Password hashing and the salary rule
// for teachers are handled by the caller.
func (r UpdateUserRequest) ApplyToModel(u *userModel.UserModel) {
	if r.FirstName != nil {
		u.FirstName = *r.FirstName
	}
	if r.LastName != nil {
		u.LastName = *r.LastName
	}
	if r.Username != nil {
		u.Username = r.Username
	}
	if r.Phone != nil {
		u.Phone = *r.Phone
	}
	if r.Address != nil {
		u.Address = r.Address
	}
	if r.Specialty != nil {
		u.Specialty = r.Specialty
	}
	if r.Percent != nil {
		u.Percent = r.Percent
	}
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
