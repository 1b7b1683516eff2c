package controller

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"educenter_backend/internals/constants"
	courseModel "educenter_backend/internals/features/catalog/courses/model"
	salary "educenter_backend/internals/features/finance/salary/service"
	"educenter_backend/internals/features/users/archive/model"
	roleModel "educenter_backend/internals/features/users/role/model"
	userModel "educenter_backend/internals/features/users/user/model"
	userService "educenter_backend/internals/features/users/user/service"
	helper "educenter_backend/internals/helpers"
	"educenter_backend/internals/helpers/money"
)

var validateArchive = money.NewValidator()

type ArchiveController struct {
	DB *gorm.DB
}

func NewArchiveController(db *gorm.DB) *ArchiveController { return &ArchiveController{DB: db} }

type CreateArchiveRequest struct {
	FirstName string           `json:"firstName" validate:"required,max=50"`
	LastName  string           `json:"lastName" validate:"required,max=50"`
	Username  *string          `json:"username" validate:"omitempty,max=50"`
	Phone     string           `json:"phone" validate:"required,max=15"`
	Address   *string          `json:"address" validate:"omitempty,max=255"`
	Specialty *string          `json:"specialty" validate:"omitempty,max=100"`
	Salary    *decimal.Decimal `json:"salary" validate:"omitempty,gte=0"`
	Percent   *float64         `json:"percent" validate:"omitempty,gte=0,lte=100"`
	RoleID    uint             `json:"roleId" validate:"required"`
}

func (r CreateArchiveRequest) ToModel() model.ArchivedUserModel {
	return model.ArchivedUserModel{
		FirstName: strings.TrimSpace(r.FirstName),
		LastName:  strings.TrimSpace(r.LastName),
		Username:  r.Username,
		Phone:     strings.TrimSpace(r.Phone),
		Address:   r.Address,
		Specialty: r.Specialty,
		Salary:    r.Salary,
		Percent:   r.Percent,
		RoleID:    r.RoleID,
	}
}

func (ac *ArchiveController) find(db *gorm.DB, id uint) (*model.ArchivedUserModel, error) {
	var m model.ArchivedUserModel
	if err := db.First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Archived user not found")
		}
		return nil, err
	}
	return &m, nil
}

// POST /api/archive
func (ac *ArchiveController) CreateArchive(c *fiber.Ctx) error {
	var in CreateArchiveRequest
	if err := c.BodyParser(&in); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validateArchive.Struct(in); err != nil {
		return helper.ValidationError(c, err)
	}
	m := in.ToModel()
	if err := ac.DB.WithContext(c.UserContext()).Create(&m).Error; err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonCreated(c, "Archived user created", m)
}

// GET /api/archive?firstName=&lastName=&phone=&roleId=
func (ac *ArchiveController) ListArchive(c *fiber.Ctx) error {
	q := ac.DB.WithContext(c.UserContext()).Model(&model.ArchivedUserModel{})
	for param, col := range map[string]string{
		"firstName": "first_name",
		"lastName":  "last_name",
		"phone":     "phone",
	} {
		if v := strings.TrimSpace(c.Query(param)); v != "" {
			q = q.Where("LOWER("+col+") LIKE ?", "%"+strings.ToLower(v)+"%")
		}
	}
	roleID, err := helper.ParseIDQuery(c, "roleId", false)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if roleID > 0 {
		q = q.Where("role_id = ?", roleID)
	}
	var rows []model.ArchivedUserModel
	if err := q.Order("archived_at DESC, id DESC").Find(&rows).Error; err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonList(c, "Archived users fetched", rows, nil)
}

// GET /api/archive/:id
func (ac *ArchiveController) GetArchive(c *fiber.Ctx) error {
	id, err := helper.ParseIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	m, err := ac.find(ac.DB.WithContext(c.UserContext()), id)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "Archived user fetched", m)
}

// PUT /api/archive/restore/:id
func (ac *ArchiveController) RestoreArchive(c *fiber.Ctx) error {
	actor, err := helper.GetActor(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helper.ParseIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	var restored *userModel.UserModel
	err = ac.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		a, err := ac.find(tx, id)
		if err != nil {
			return err
		}
		var role roleModel.RoleModel
		if err := tx.First(&role, a.RoleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Role of archived user not found")
			}
			return err
		}
		if !actor.Role.CanManage(constants.Role(role.Name)) {
			return fiber.NewError(fiber.StatusForbidden, constants.RoleErrorSuperAdmin("users"))
		}
		if err := userService.EnsureUnique(tx, 0, a.Username, &a.Phone); err != nil {
			return err
		}

		u := userModel.UserModel{
			FirstName: a.FirstName,
			LastName:  a.LastName,
			Username:  a.Username,
			Password:  a.Password,
			Phone:     a.Phone,
			Address:   a.Address,
			Specialty: a.Specialty,
			Salary:    a.Salary,
			Percent:   a.Percent,
			RoleID:    role.ID,
		}
		if a.CourseID != nil {
			var n int64
			if err := tx.Model(&courseModel.CourseModel{}).Where("id = ?", *a.CourseID).Count(&n).Error; err != nil {
				return err
			}
			if n > 0 {
				u.CourseID = a.CourseID
			}
		}
		if err := tx.Create(&u).Error; err != nil {
			return err
		}
		if constants.Role(role.Name) == constants.RoleTeacher {
			if err := salary.RecomputeTeacherSalary(tx, u.ID); err != nil {
				return err
			}
		}
		if err := tx.Delete(&model.ArchivedUserModel{}, a.ID).Error; err != nil {
			return err
		}
		restored, err = userService.FindByID(tx, u.ID)
		return err
	})
	if err != nil {
		if helper.IsDuplicateKey(err) {
			return helper.JsonError(c, fiber.StatusConflict, "Username or phone already exists")
		}
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "User restored", restored)
}

// DELETE /api/archive/:id
func (ac *ArchiveController) DeleteArchive(c *fiber.Ctx) error {
	id, err := helper.ParseIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	res := ac.DB.WithContext(c.UserContext()).Delete(&model.ArchivedUserModel{}, id)
	if res.Error != nil {
		return helper.FromFiberError(c, res.Error)
	}
	if res.RowsAffected == 0 {
		return helper.JsonError(c, fiber.StatusNotFound, "Archived user not found")
	}
	return helper.JsonDeleted(c, "Archived user deleted", fiber.Map{"id": id})
}
