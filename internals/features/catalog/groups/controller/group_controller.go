package controller

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"educenter_backend/internals/constants"
	courseModel "educenter_backend/internals/features/catalog/courses/model"
	"educenter_backend/internals/features/catalog/groups/dto"
	"educenter_backend/internals/features/catalog/groups/model"
	"educenter_backend/internals/features/catalog/groups/service"
	salary "educenter_backend/internals/features/finance/salary/service"
	userModel "educenter_backend/internals/features/users/user/model"
	helper "educenter_backend/internals/helpers"
	"educenter_backend/internals/helpers/dbtime"
	"educenter_backend/internals/helpers/money"
)

var validateGroup = money.NewValidator()

type GroupController struct {
	DB         *gorm.DB
	Enrollment *service.Enrollment
}

func NewGroupController(db *gorm.DB) *GroupController {
	return &GroupController{DB: db, Enrollment: service.NewEnrollment(db)}
}

/* =======================================================
   HELPERS
======================================================= */

func (gc *GroupController) respond(c *fiber.Ctx, db *gorm.DB, msg string, groups []model.GroupModel) error {
	ids := make([]uint, 0, len(groups))
	for _, g := range groups {
		ids = append(ids, g.ID)
	}
	counts, err := service.RosterCounts(db, ids...)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonList(c, msg, dto.FromModelList(groups, counts), nil)
}

func withRefs(db *gorm.DB) *gorm.DB {
	return db.Preload("Course").Preload("Teacher")
}

func requireTeacher(tx *gorm.DB, id uint) error {
	var u userModel.UserModel
	if err := tx.Preload("Role").First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusBadRequest, "Teacher not found")
		}
		return err
	}
	if !u.IsRole(constants.RoleTeacher) {
		return fiber.NewError(fiber.StatusBadRequest, "Assigned user is not a teacher")
	}
	return nil
}

// studentIDs keeps only ids that belong to students.
func studentIDs(tx *gorm.DB, ids []uint) ([]uint, error) {
	if len(ids) == 0 {
		return []uint{}, nil
	}
	var out []uint
	err := tx.Model(&userModel.UserModel{}).
		Joins("JOIN roles r ON r.id = users.role_id").
		Where("users.id IN ? AND r.name = ?", ids, string(constants.RoleStudent)).
		Order("users.id ASC").
		Pluck("users.id", &out).Error
	return out, err
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func replaceRoster(tx *gorm.DB, groupID uint, userIDs []uint) error {
	if err := tx.Where("group_id = ?", groupID).Delete(&model.GroupStudentModel{}).Error; err != nil {
		return err
	}
	for _, uid := range userIDs {
		row := model.GroupStudentModel{GroupID: groupID, UserID: uid}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

/* =======================================================
   CRUD
======================================================= */

// POST /api/groups
func (gc *GroupController) CreateGroup(c *fiber.Ctx) error {
	var in dto.CreateGroupRequest
	if err := c.BodyParser(&in); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validateGroup.Struct(in); err != nil {
		return helper.ValidationError(c, err)
	}
	if err := in.Normalize(); err != nil {
		return helper.FromFiberError(c, err)
	}

	var created model.GroupModel
	err := gc.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&courseModel.CourseModel{}).Where("id = ?", in.CourseID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Course not found")
		}
		if in.TeacherID != nil && *in.TeacherID == 0 {
			in.TeacherID = nil
		}
		if in.TeacherID != nil {
			if err := requireTeacher(tx, *in.TeacherID); err != nil {
				return err
			}
		}
		students, err := studentIDs(tx, uniqueIDs(in.UserIDs))
		if err != nil {
			return err
		}

		created = in.ToModel()
		if err := tx.Create(&created).Error; err != nil {
			if helper.IsDuplicateKey(err) {
				return fiber.NewError(fiber.StatusConflict, "Group with this name already exists in the course")
			}
			return err
		}
		if err := replaceRoster(tx, created.ID, students); err != nil {
			return err
		}
		if err := salary.RecomputeMany(tx, salary.TeacherIDs(created)...); err != nil {
			return err
		}
		return withRefs(tx).First(&created, created.ID).Error
	})
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	counts, _ := service.RosterCounts(gc.DB.WithContext(c.UserContext()), created.ID)
	return helper.JsonCreated(c, "Group created", dto.FromModel(created, counts[created.ID]))
}

// GET /api/groups?search=
func (gc *GroupController) ListGroups(c *fiber.Ctx) error {
	db := gc.DB.WithContext(c.UserContext())

	q := withRefs(db).Order("id DESC")
	if s := strings.TrimSpace(c.Query("search")); s != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(s)+"%")
	}
	var groups []model.GroupModel
	if err := q.Find(&groups).Error; err != nil {
		return helper.FromFiberError(c, err)
	}

	var stats struct {
		TotalGroups          int64 `json:"totalGroups"`
		TotalStudents        int64 `json:"totalStudents"`
		ActiveCourses        int64 `json:"activeCourses"`
		TotalGroupsThisMonth int64 `json:"totalGroupsThisMonth"`
	}
	stats.TotalGroups = int64(len(groups))
	var err error
	if stats.TotalStudents, err = service.CountDistinctStudents(db); err != nil {
		return helper.FromFiberError(c, err)
	}
	if err := db.Model(&model.GroupModel{}).
		Where("status = ?", model.GroupActive).
		Distinct("course_id").
		Count(&stats.ActiveCourses).Error; err != nil {
		return helper.FromFiberError(c, err)
	}
	now := dbtime.NowInCenter()
	monthStart, _ := dbtime.MonthBounds(now.Year(), now.Month())
	if err := db.Model(&model.GroupModel{}).
		Where("created_at >= ?", monthStart).
		Count(&stats.TotalGroupsThisMonth).Error; err != nil {
		return helper.FromFiberError(c, err)
	}

	ids := make([]uint, 0, len(groups))
	for _, g := range groups {
		ids = append(ids, g.ID)
	}
	counts, err := service.RosterCounts(db, ids...)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "Groups fetched", fiber.Map{
		"statistics": stats,
		"groups":     dto.FromModelList(groups, counts),
	})
}

// GET /api/groups/search?name=&teacherName=
func (gc *GroupController) SearchGroups(c *fiber.Ctx) error {
	db := gc.DB.WithContext(c.UserContext())
	q := withRefs(db).Model(&model.GroupModel{}).Order("groups.id ASC")
	if name := strings.TrimSpace(c.Query("name")); name != "" {
		q = q.Where("LOWER(groups.name) LIKE ?", "%"+strings.ToLower(name)+"%")
	}
	if tn := strings.TrimSpace(c.Query("teacherName")); tn != "" {
		like := "%" + strings.ToLower(tn) + "%"
		q = q.Joins("JOIN users t ON t.id = groups.teacher_id").
			Where("LOWER(t.first_name) LIKE ? OR LOWER(t.last_name) LIKE ?", like, like)
	}
	var groups []model.GroupModel
	if err := q.Find(&groups).Error; err != nil {
		return helper.FromFiberError(c, err)
	}
	return gc.respond(c, db, "Groups fetched", groups)
}

// GET /api/groups/course/:courseId
func (gc *GroupController) GroupsByCourse(c *fiber.Ctx) error {
	courseID, err := helper.ParseIDParam(c, "courseId")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	db := gc.DB.WithContext(c.UserContext())
	var groups []model.GroupModel
	if err := withRefs(db).Where("course_id = ?", courseID).Order("id ASC").Find(&groups).Error; err != nil {
		return helper.FromFiberError(c, err)
	}
	return gc.respond(c, db, "Groups fetched", groups)
}

// GET /api/groups/student/:username
func (gc *GroupController) StudentGroups(c *fiber.Ctx) error {
	username := strings.TrimSpace(c.Params("username"))
	db := gc.DB.WithContext(c.UserContext())

	var u userModel.UserModel
	if err := db.Where("username = ?", username).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Student not found")
		}
		return helper.FromFiberError(c, err)
	}
	var groups []model.GroupModel
	if err := withRefs(db).
		Joins("JOIN group_students gs ON gs.group_id = groups.id").
		Where("gs.user_id = ?", u.ID).
		Order("groups.id ASC").
		Find(&groups).Error; err != nil {
		return helper.FromFiberError(c, err)
	}
	return gc.respond(c, db, "Groups fetched", groups)
}

// GET /api/groups/:id
func (gc *GroupController) GetGroup(c *fiber.Ctx) error {
	id, err := helper.ParseIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	db := gc.DB.WithContext(c.UserContext())
	var g model.GroupModel
	if err := withRefs(db).First(&g, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Group not found")
		}
		return helper.FromFiberError(c, err)
	}
	counts, err := service.RosterCounts(db, g.ID)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "Group fetched", dto.FromModel(g, counts[g.ID]))
}

// PUT /api/groups/:id
func (gc *GroupController) UpdateGroup(c *fiber.Ctx) error {
	id, err := helper.ParseIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var in dto.UpdateGroupRequest
	if err := c.BodyParser(&in); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validateGroup.Struct(in); err != nil {
		return helper.ValidationError(c, err)
	}

	var updated model.GroupModel
	err = gc.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		groups, err := service.LockGroups(tx, id)
		if err != nil {
			return err
		}
		g, ok := groups[id]
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "Group not found")
		}
		oldTeachers := salary.TeacherIDs(g)

		if in.CourseID != nil {
			var n int64
			if err := tx.Model(&courseModel.CourseModel{}).Where("id = ?", *in.CourseID).Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return fiber.NewError(fiber.StatusNotFound, "Course not found")
			}
		}
		if in.TeacherID != nil && *in.TeacherID != 0 {
			if err := requireTeacher(tx, *in.TeacherID); err != nil {
				return err
			}
		}
		if err := in.ApplyToModel(&g); err != nil {
			return err
		}
		if err := tx.Select("name", "course_id", "teacher_id", "price", "start_time", "end_time", "days_of_week").
			Updates(&g).Error; err != nil {
			if helper.IsDuplicateKey(err) {
				return fiber.NewError(fiber.StatusConflict, "Group with this name already exists in the course")
			}
			return err
		}

		if in.UserIDs != nil {
			want := uniqueIDs(*in.UserIDs)
			students, err := studentIDs(tx, want)
			if err != nil {
				return err
			}
			if len(students) != len(want) {
				return fiber.NewError(fiber.StatusNotFound, "Some users are not students")
			}
			if err := replaceRoster(tx, id, students); err != nil {
				return err
			}
		}

		if err := salary.RecomputeMany(tx, append(oldTeachers, salary.TeacherIDs(g)...)...); err != nil {
			return err
		}
		return withRefs(tx).First(&updated, id).Error
	})
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	counts, _ := service.RosterCounts(gc.DB.WithContext(c.UserContext()), id)
	return helper.JsonUpdated(c, "Group updated", dto.FromModel(updated, counts[id]))
}

// PATCH /api/groups/:id/status/:status
func (gc *GroupController) UpdateStatus(c *fiber.Ctx) error {
	id, err := helper.ParseIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	status := model.GroupStatus(strings.TrimSpace(c.Params("status")))
	if !status.Valid() {
		return helper.JsonError(c, fiber.StatusBadRequest, "status must be one of: active planned completed")
	}

	err = gc.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		groups, err := service.LockGroups(tx, id)
		if err != nil {
			return err
		}
		g, ok := groups[id]
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "Group not found")
		}
		if err := tx.Model(&model.GroupModel{}).Where("id = ?", id).Update("status", status).Error; err != nil {
			return err
		}
		return salary.RecomputeMany(tx, salary.TeacherIDs(g)...)
	})
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonUpdated(c, "Group status updated", fiber.Map{"id": id, "status": status})
}

// DELETE /api/groups/:id
func (gc *GroupController) DeleteGroup(c *fiber.Ctx) error {
	id, err := helper.ParseIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	err = gc.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		g, err := service.DeleteGroupTx(tx, id)
		if err != nil {
			return err
		}
		return salary.RecomputeMany(tx, salary.TeacherIDs(*g)...)
	})
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonDeleted(c, "Group deleted", fiber.Map{"id": id})
}
