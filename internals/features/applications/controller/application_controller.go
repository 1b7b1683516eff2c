package controller

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"educenter_backend/internals/features/applications/dto"
	"educenter_backend/internals/features/applications/service"
	helper "educenter_backend/internals/helpers"
)

var validateApplication = validator.New()

type ApplicationController struct {
	DB *gorm.DB
}

func NewApplicationController(db *gorm.DB) *ApplicationController {
	return &ApplicationController{DB: db}
}

// POST /api/applications
func (ac *ApplicationController) Create(c *fiber.Ctx) error {
	var in dto.CreateApplicationRequest
	if err := c.BodyParser(&in); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validateApplication.Struct(in); err != nil {
		return helper.ValidationError(c, err)
	}
	a, err := service.Create(c.UserContext(), ac.DB, in.ToIntake())
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonCreated(c, "Application submitted", a)
}

// GET /api/applications?firstName=&lastName=&phone=
func (ac *ApplicationController) List(c *fiber.Ctx) error {
	l, err := service.List(ac.DB.WithContext(c.UserContext()), service.Filter{
		FirstName: c.Query("firstName"),
		LastName:  c.Query("lastName"),
		Phone:     c.Query("phone"),
	})
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "Applications fetched", dto.FromListing(l))
}

// GET /api/applications/:id
func (ac *ApplicationController) Get(c *fiber.Ctx) error {
	id, err := helper.ParseIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	a, err := service.Load(ac.DB.WithContext(c.UserContext()), id)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "Application fetched", a)
}

// PATCH /api/applications/:id
func (ac *ApplicationController) Update(c *fiber.Ctx) error {
	id, err := helper.ParseIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var in dto.UpdateApplicationRequest
	if err := c.BodyParser(&in); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validateApplication.Struct(in); err != nil {
		return helper.ValidationError(c, err)
	}
	a, err := service.Update(c.UserContext(), ac.DB, id, in.ToPatch())
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonUpdated(c, "Application updated", a)
}

// DELETE /api/applications/:id
func (ac *ApplicationController) Delete(c *fiber.Ctx) error {
	id, err := helper.ParseIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if err := service.Delete(c.UserContext(), ac.DB, id); err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonDeleted(c, "Application deleted", fiber.Map{"id": id})
}

// PATCH /api/applications/:id/assign-group?groupId=
func (ac *ApplicationController) AssignGroup(c *fiber.Ctx) error {
	id, err := helper.ParseIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	groupID, err := helper.ParseIDQuery(c, "groupId", true)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	a, err := service.AssignGroup(c.UserContext(), ac.DB, id, groupID)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonUpdated(c, "Application assigned to group", a)
}

// PATCH /api/applications/:id/remove-group
func (ac *ApplicationController) RemoveGroup(c *fiber.Ctx) error {
	id, err := helper.ParseIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	a, err := service.RemoveGroup(c.UserContext(), ac.DB, id)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonUpdated(c, "Group removed from application", a)
}

// PATCH /api/applications/:id/mark-contacted
func (ac *ApplicationController) MarkContacted(c *fiber.Ctx) error {
	id, err := helper.ParseIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	a, err := service.MarkContacted(c.UserContext(), ac.DB, id)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonUpdated(c, "Application marked as contacted", a)
}
