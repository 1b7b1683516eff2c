package dto

import (
	"time"

	"educenter_backend/internals/features/applications/model"
	"educenter_backend/internals/features/applications/service"
)

type CreateApplicationRequest struct {
	FirstName string `json:"firstName" validate:"required,max=50"`
	LastName  string `json:"lastName" validate:"required,max=50"`
	Phone     string `json:"phone" validate:"required,max=15"`
	GroupID   *uint  `json:"groupId" validate:"omitempty,gt=0"`
	CourseID  *uint  `json:"courseId" validate:"omitempty,gt=0"`
}

func (r CreateApplicationRequest) ToIntake() service.Intake {
	return service.Intake{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Phone:     r.Phone,
		GroupID:   r.GroupID,
		CourseID:  r.CourseID,
	}
}

type UpdateApplicationRequest struct {
	FirstName   *string `json:"firstName" validate:"omitempty,min=1,max=50"`
	LastName    *string `json:"lastName" validate:"omitempty,min=1,max=50"`
	Phone       *string `json:"phone" validate:"omitempty,min=1,max=15"`
	Status      *bool   `json:"status"`
	IsContacted *bool   `json:"isContacted"`
}

func (r UpdateApplicationRequest) ToPatch() service.Patch {
	return service.Patch{
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		Phone:       r.Phone,
		Status:      r.Status,
		IsContacted: r.IsContacted,
	}
}

type ApplicationItem struct {
	ID          uint      `json:"id"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Phone       string    `json:"phone"`
	CreatedAt   time.Time `json:"createdAt"`
	Status      bool      `json:"status"`
	IsContacted bool      `json:"isContacted"`
	Group       *string   `json:"group"`
}

func FromModel(a model.ApplicationModel) ApplicationItem {
	item := ApplicationItem{
		ID:          a.ID,
		FirstName:   a.FirstName,
		LastName:    a.LastName,
		Phone:       a.Phone,
		CreatedAt:   a.CreatedAt,
		Status:      a.Status,
		IsContacted: a.IsContacted,
	}
	if a.Group != nil {
		name := a.Group.Name
		item.Group = &name
	}
	return item
}

type ListResponse struct {
	Statistics   service.Statistics `json:"statistics"`
	Applications []ApplicationItem  `json:"applications"`
}

func FromListing(l service.Listing) ListResponse {
	out := ListResponse{Statistics: l.Statistics, Applications: make([]ApplicationItem, 0, len(l.Applications))}
	for _, a := range l.Applications {
		out.Applications = append(out.Applications, FromModel(a))
	}
	return out
}
