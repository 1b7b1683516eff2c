package dto

import (
	"time"

	"github.com/shopspring/decimal"

	userModel "educenter_backend/internals/features/users/user/model"
)

type GroupRef struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status,omitempty"`
}

type UserResponse struct {
	ID           uint             `json:"id"`
	FirstName    string           `json:"firstName"`
	LastName     string           `json:"lastName"`
	Username     *string          `json:"username"`
	Phone        string           `json:"phone"`
	Address      *string          `json:"address"`
	Specialty    *string          `json:"specialty"`
	Salary       *decimal.Decimal `json:"salary"`
	Percent      *float64         `json:"percent"`
	Role         string           `json:"role"`
	RoleID       uint             `json:"roleId"`
	CourseID     *uint            `json:"courseId"`
	Groups       []GroupRef       `json:"groups,omitempty"`
	TaughtGroups []GroupRef       `json:"taughtGroups,omitempty"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}

func FromModel(u userModel.UserModel) UserResponse {
	return UserResponse{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Username:  u.Username,
		Phone:     u.Phone,
		Address:   u.Address,
		Specialty: u.Specialty,
		Salary:    u.Salary,
		Percent:   u.Percent,
		Role:      string(u.RoleName()),
		RoleID:    u.RoleID,
		CourseID:  u.CourseID,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func FromModelList(list []userModel.UserModel) []UserResponse {
	out := make([]UserResponse, 0, len(list))
	for _, u := range list {
		out = append(out, FromModel(u))
	}
	return out
}
