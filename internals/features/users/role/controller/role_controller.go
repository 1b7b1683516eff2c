package controller

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"educenter_backend/internals/constants"
	"educenter_backend/internals/features/users/role/model"
	userModel "educenter_backend/internals/features/users/user/model"
	helper "educenter_backend/internals/helpers"
)

var validateRole = validator.New()

type RoleController struct {
	DB *gorm.DB
}

func NewRoleController(db *gorm.DB) *RoleController { return &RoleController{DB: db} }

type CreateRoleRequest struct {
	Name string `json:"name" validate:"required"`
}

// POST /api/roles
func (rc *RoleController) CreateRole(c *fiber.Ctx) error {
	actor, err := helper.GetActor(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	var in CreateRoleRequest
	if err := c.BodyParser(&in); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validateRole.Struct(in); err != nil {
		return helper.ValidationError(c, err)
	}
	role, ok := constants.ParseRole(in.Name)
	if !ok {
		return helper.JsonError(c, fiber.StatusBadRequest, "Role name must be one of: student teacher admin superAdmin")
	}
	if !actor.Role.CanManage(role) {
		return helper.JsonError(c, fiber.StatusForbidden, constants.RoleErrorSuperAdmin("roles"))
	}

	m := model.RoleModel{Name: string(role)}
	if err := rc.DB.WithContext(c.UserContext()).Create(&m).Error; err != nil {
		if helper.IsDuplicateKey(err) {
			return helper.JsonError(c, fiber.StatusConflict, "Role already exists")
		}
		return helper.FromFiberError(c, err)
	}
	return helper.JsonCreated(c, "Role created", m)
}

// GET /api/roles
func (rc *RoleController) ListRoles(c *fiber.Ctx) error {
	var roles []model.RoleModel
	if err := rc.DB.WithContext(c.UserContext()).Order("id ASC").Find(&roles).Error; err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonList(c, "Roles fetched", roles, nil)
}

// DELETE /api/roles/:id
func (rc *RoleController) DeleteRole(c *fiber.Ctx) error {
	actor, err := helper.GetActor(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helper.ParseIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	db := rc.DB.WithContext(c.UserContext())
	var m model.RoleModel
	if err := db.First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Role not found")
		}
		return helper.FromFiberError(c, err)
	}
	if !actor.Role.CanManage(constants.Role(m.Name)) {
		return helper.JsonError(c, fiber.StatusForbidden, constants.RoleErrorSuperAdmin("roles"))
	}

	var inUse int64
	if err := db.Model(&userModel.UserModel{}).Where("role_id = ?", id).Count(&inUse).Error; err != nil {
		return helper.FromFiberError(c, err)
	}
	if inUse > 0 {
		return helper.JsonError(c, fiber.StatusConflict, "Role is still assigned to users")
	}
	if err := db.Delete(&model.RoleModel{}, id).Error; err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonDeleted(c, "Role deleted", fiber.Map{"id": id})
}
