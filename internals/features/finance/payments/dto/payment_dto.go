package dto

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"educenter_backend/internals/features/finance/payments/model"
	"educenter_backend/internals/features/finance/payments/service"
)

type PaymentRequest struct {
	UserID      uint             `json:"userId" validate:"required"`
	GroupID     uint             `json:"groupId" validate:"required"`
	CourseID    *uint            `json:"courseId"`
	Amount      *decimal.Decimal `json:"amount" validate:"required,gte=0"`
	MonthFor    string           `json:"monthFor" validate:"required"`
	PaymentType string           `json:"paymentType" validate:"required"`
}

func (r PaymentRequest) ToInput() service.PaymentInput {
	in := service.PaymentInput{
		UserID:      r.UserID,
		GroupID:     r.GroupID,
		CourseID:    r.CourseID,
		MonthFor:    strings.TrimSpace(r.MonthFor),
		PaymentType: model.PaymentType(strings.ToLower(strings.TrimSpace(r.PaymentType))),
	}
	if r.Amount != nil {
		in.Amount = *r.Amount
	}
	return in
}

// UpdatePaymentRequest is partial; absent fields keep their stored value.
type UpdatePaymentRequest struct {
	UserID      *uint            `json:"userId" validate:"omitempty,gt=0"`
	GroupID     *uint            `json:"groupId" validate:"omitempty,gt=0"`
	CourseID    *uint            `json:"courseId"`
	Amount      *decimal.Decimal `json:"amount" validate:"omitempty,gte=0"`
	MonthFor    *string          `json:"monthFor"`
	PaymentType *string          `json:"paymentType"`
}

func (r UpdatePaymentRequest) ToPatch() service.PaymentPatch {
	p := service.PaymentPatch{
		UserID:   r.UserID,
		GroupID:  r.GroupID,
		CourseID: r.CourseID,
		Amount:   r.Amount,
	}
	if r.MonthFor != nil {
		m := strings.TrimSpace(*r.MonthFor)
		p.MonthFor = &m
	}
	if r.PaymentType != nil {
		t := model.PaymentType(strings.ToLower(strings.TrimSpace(*r.PaymentType)))
		p.PaymentType = &t
	}
	return p
}

type PaymentResponse struct {
	ID          uint            `json:"id"`
	UserID      uint            `json:"userId"`
	StudentName string          `json:"studentName,omitempty"`
	GroupID     uint            `json:"groupId"`
	GroupName   string          `json:"groupName,omitempty"`
	CourseID    *uint           `json:"courseId"`
	CourseName  string          `json:"courseName,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	MonthFor    string          `json:"monthFor"`
	PaymentType string          `json:"paymentType"`
	Paid        bool            `json:"paid"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// FromModel fills names from whichever relations are loaded.
func FromModel(p model.PaymentModel) PaymentResponse {
	r := PaymentResponse{
		ID:          p.ID,
		UserID:      p.UserID,
		GroupID:     p.GroupID,
		CourseID:    p.CourseID,
		Amount:      p.Amount,
		MonthFor:    p.MonthFor,
		PaymentType: string(p.PaymentType),
		Paid:        p.Paid,
		CreatedAt:   p.CreatedAt,
	}
	if p.User != nil {
		r.StudentName = p.User.FullName()
	}
	if p.Group != nil {
		r.GroupName = p.Group.Name
	}
	if p.Course != nil {
		r.CourseName = p.Course.Name
	}
	return r
}

func FromModelList(list []model.PaymentModel) []PaymentResponse {
	out := make([]PaymentResponse, 0, len(list))
	for _, p := range list {
		out = append(out, FromModel(p))
	}
	return out
}
