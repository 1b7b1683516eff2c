package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"educenter_backend/internals/features/catalog/groups/dto"
	"educenter_backend/internals/features/catalog/groups/model"
	"educenter_backend/internals/features/catalog/groups/service"
	userModel "educenter_backend/internals/features/users/user/model"
	helper "educenter_backend/internals/helpers"
)

/* =======================================================
   ROSTER
======================================================= */

func (gc *GroupController) loadRoster(c *fiber.Ctx) ([]userModel.UserModel, error) {
	id, err := helper.ParseIDParam(c, "id")
	if err != nil {
		return nil, err
	}
	db := gc.DB.WithContext(c.UserContext())
	if err := db.Select("id").First(&model.GroupModel{}, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Group not found")
		}
		return nil, err
	}
	return service.Roster(db, id)
}

// GET /api/groups/:id/students
func (gc *GroupController) GroupStudents(c *fiber.Ctx) error {
	users, err := gc.loadRoster(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	out := make([]dto.StudentItem, 0, len(users))
	for _, u := range users {
		out = append(out, dto.StudentItem{
			ID:       u.ID,
			FullName: u.FullName(),
			Username: u.Username,
			Phone:    u.Phone,
			Address:  u.Address,
		})
	}
	return helper.JsonList(c, "Students fetched", out, nil)
}

// GET /api/groups/:id/students/list
func (gc *GroupController) GroupStudentsList(c *fiber.Ctx) error {
	users, err := gc.loadRoster(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	out := make([]fiber.Map, 0, len(users))
	for _, u := range users {
		out = append(out, fiber.Map{"id": u.ID, "fullName": u.FullName()})
	}
	return helper.JsonList(c, "Students fetched", out, nil)
}

// POST /api/groups/:id/add-student?userId=
// POST /api/groups/:id/restore-student?userId=
func (gc *GroupController) AddStudent(c *fiber.Ctx) error {
	groupID, err := helper.ParseIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	userID, err := helper.ParseIDQuery(c, "userId", true)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if err := gc.Enrollment.AddStudent(c.UserContext(), groupID, userID); err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "Student added to group", fiber.Map{"groupId": groupID, "userId": userID})
}

// DELETE /api/groups/:id/remove-student?userId=
func (gc *GroupController) RemoveStudent(c *fiber.Ctx) error {
	groupID, err := helper.ParseIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	userID, err := helper.ParseIDQuery(c, "userId", true)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if err := gc.Enrollment.RemoveStudent(c.UserContext(), groupID, userID); err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonDeleted(c, "Student removed from group", fiber.Map{"groupId": groupID, "userId": userID})
}

// POST /api/groups/transfer-student?fromGroupId=&toGroupId=&userId=
func (gc *GroupController) TransferStudent(c *fiber.Ctx) error {
	from, err := helper.ParseIDQuery(c, "fromGroupId", true)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	to, err := helper.ParseIDQuery(c, "toGroupId", true)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	userID, err := helper.ParseIDQuery(c, "userId", true)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if err := gc.Enrollment.TransferStudent(c.UserContext(), from, to, userID); err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "Student transferred", fiber.Map{
		"fromGroupId": from,
		"toGroupId":   to,
		"userId":      userID,
	})
}
