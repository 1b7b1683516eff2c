package controller

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	groupModel "educenter_backend/internals/features/catalog/groups/model"
	groupService "educenter_backend/internals/features/catalog/groups/service"
	"educenter_backend/internals/features/users/user/dto"
	"educenter_backend/internals/features/users/user/model"
	"educenter_backend/internals/features/users/user/service"
	helper "educenter_backend/internals/helpers"
	"educenter_backend/internals/helpers/money"
)

var validateUser = money.NewValidator()

type UserController struct {
	DB *gorm.DB
}

func NewUserController(db *gorm.DB) *UserController {
	return &UserController{DB: db}
}

// like builds a case-insensitive contains pattern.
func like(s string) string {
	return "%" + strings.ToLower(strings.TrimSpace(s)) + "%"
}

// withGroups attaches enrolled and taught groups to each user.
func withGroups(db *gorm.DB, users []model.UserModel) ([]dto.UserResponse, error) {
	ids := make([]uint, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	enrolled, err := groupService.GroupsOfStudents(db, ids...)
	if err != nil {
		return nil, err
	}
	taught := make(map[uint][]dto.GroupRef)
	if len(ids) > 0 {
		var groups []groupModel.GroupModel
		if err := db.Where("teacher_id IN ?", ids).Order("id ASC").Find(&groups).Error; err != nil {
			return nil, err
		}
		for _, g := range groups {
			taught[*g.TeacherID] = append(taught[*g.TeacherID], dto.GroupRef{ID: g.ID, Name: g.Name, Status: string(g.Status)})
		}
	}

	out := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		r := dto.FromModel(u)
		r.Groups = []dto.GroupRef{}
		for _, g := range enrolled[u.ID] {
			r.Groups = append(r.Groups, dto.GroupRef{ID: g.ID, Name: g.Name, Status: string(g.Status)})
		}
		r.TaughtGroups = taught[u.ID]
		if r.TaughtGroups == nil {
			r.TaughtGroups = []dto.GroupRef{}
		}
		out = append(out, r)
	}
	return out, nil
}

func (uc *UserController) one(db *gorm.DB, id uint) (dto.UserResponse, error) {
	u, err := service.FindByID(db, id)
	if err != nil {
		return dto.UserResponse{}, err
	}
	list, err := withGroups(db, []model.UserModel{*u})
	if err != nil {
		return dto.UserResponse{}, err
	}
	return list[0], nil
}

/* =======================================================
   ADMIN CRUD
======================================================= */

// POST /api/users
func (uc *UserController) CreateUser(c *fiber.Ctx) error {
	actor, err := helper.GetActor(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var in dto.CreateUserRequest
	if err := c.BodyParser(&in); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	in.Normalize()
	if err := validateUser.Struct(in); err != nil {
		return helper.ValidationError(c, err)
	}

	var created *model.UserModel
	err = uc.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		u, err := service.CreateUserTx(tx, actor.Role, in)
		created = u
		return err
	})
	if err != nil {
		if helper.IsDuplicateKey(err) {
			return helper.JsonError(c, fiber.StatusConflict, "Username or phone already exists")
		}
		return helper.FromFiberError(c, err)
	}

	resp, err := uc.one(uc.DB.WithContext(c.UserContext()), created.ID)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonCreated(c, "User created", resp)
}

// GET /api/users?role=&firstName=&lastName=&phone=&page=&per_page=
func (uc *UserController) ListUsers(c *fiber.Ctx) error {
	db := uc.DB.WithContext(c.UserContext())
	q := db.Model(&model.UserModel{}).Joins("JOIN roles ON roles.id = users.role_id")
	if v := strings.TrimSpace(c.Query("role")); v != "" {
		q = q.Where("LOWER(roles.name) = ?", strings.ToLower(v))
	}
	for param, col := range map[string]string{
		"firstName": "users.first_name",
		"lastName":  "users.last_name",
		"phone":     "users.phone",
	} {
		if v := strings.TrimSpace(c.Query(param)); v != "" {
			q = q.Where("LOWER("+col+") LIKE ?", like(v))
		}
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return helper.FromFiberError(c, err)
	}
	p := helper.ResolvePaging(c, 20, 100)
	var users []model.UserModel
	if err := q.Preload("Role").
		Order("users.id ASC").
		Offset(p.Offset).Limit(p.Limit).
		Find(&users).Error; err != nil {
		return helper.FromFiberError(c, err)
	}
	resp, err := withGroups(db, users)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonList(c, "Users fetched", resp, helper.BuildPagination(total, p))
}

// GET /api/users/:id
func (uc *UserController) GetUser(c *fiber.Ctx) error {
	id, err := helper.ParseIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	resp, err := uc.one(uc.DB.WithContext(c.UserContext()), id)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "User fetched", resp)
}

// PATCH /api/users/:id
func (uc *UserController) UpdateUser(c *fiber.Ctx) error {
	id, err := helper.ParseIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return uc.update(c, id, false)
}

func (uc *UserController) update(c *fiber.Ctx, id uint, self bool) error {
	var in dto.UpdateUserRequest
	if err := c.BodyParser(&in); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	in.Normalize()
	if self {
		in.SelfService()
	}
	if err := validateUser.Struct(in); err != nil {
		return helper.ValidationError(c, err)
	}

	err := uc.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		_, err := service.UpdateUserTx(tx, id, in)
		return err
	})
	if err != nil {
		if helper.IsDuplicateKey(err) {
			return helper.JsonError(c, fiber.StatusConflict, "Username or phone already exists")
		}
		return helper.FromFiberError(c, err)
	}
	resp, err := uc.one(uc.DB.WithContext(c.UserContext()), id)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonUpdated(c, "User updated", resp)
}

// DELETE /api/users/:id?archive=true
func (uc *UserController) DeleteUser(c *fiber.Ctx) error {
	actor, err := helper.GetActor(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helper.ParseIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	archive := strings.EqualFold(c.Query("archive"), "true")

	err = uc.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		_, err := service.DeleteUserTx(tx, actor.Role, id, archive)
		return err
	})
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonDeleted(c, "User deleted", fiber.Map{"id": id, "archived": archive})
}

/* =======================================================
   SELF
======================================================= */

// GET /api/users/me
func (uc *UserController) GetMe(c *fiber.Ctx) error {
	id, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	resp, err := uc.one(uc.DB.WithContext(c.UserContext()), id)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "Profile fetched", resp)
}

// PATCH /api/users/me/update
func (uc *UserController) UpdateMe(c *fiber.Ctx) error {
	id, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return uc.update(c, id, true)
}
