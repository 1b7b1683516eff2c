package controller

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"educenter_backend/internals/features/catalog/courses/dto"
	"educenter_backend/internals/features/catalog/courses/model"
	groupModel "educenter_backend/internals/features/catalog/groups/model"
	groupService "educenter_backend/internals/features/catalog/groups/service"
	helper "educenter_backend/internals/helpers"
	"educenter_backend/internals/helpers/dbtime"
)

var validateCourse = validator.New()

type CourseController struct {
	DB *gorm.DB
}

func NewCourseController(db *gorm.DB) *CourseController { return &CourseController{DB: db} }

// =====================================================
// POST /api/courses
// =====================================================
func (cc *CourseController) CreateCourse(c *fiber.Ctx) error {
	var in dto.CreateCourseRequest
	if err := c.BodyParser(&in); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	in.Normalize()
	if err := validateCourse.Struct(in); err != nil {
		return helper.ValidationError(c, err)
	}

	m := in.ToModel()
	if err := cc.DB.WithContext(c.UserContext()).Create(&m).Error; err != nil {
		if helper.IsDuplicateKey(err) {
			return helper.JsonError(c, fiber.StatusConflict, "Course with this name already exists")
		}
		return helper.FromFiberError(c, err)
	}
	return helper.JsonCreated(c, "Course created", m)
}

type courseCount struct {
	CourseID     uint
	GroupCount   int64
	StudentCount int64
}

// =====================================================
// GET /api/courses?name=
// =====================================================
func (cc *CourseController) ListCourses(c *fiber.Ctx) error {
	db := cc.DB.WithContext(c.UserContext())

	q := db.Model(&model.CourseModel{}).Order("id ASC")
	if name := strings.TrimSpace(c.Query("name")); name != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(name)+"%")
	}
	var courses []model.CourseModel
	if err := q.Find(&courses).Error; err != nil {
		return helper.FromFiberError(c, err)
	}
	ids := make([]uint, 0, len(courses))
	for _, co := range courses {
		ids = append(ids, co.ID)
	}

	var counts []courseCount
	if len(ids) > 0 {
		if err := db.Table("groups AS g").
			Select("g.course_id AS course_id, COUNT(DISTINCT g.id) AS group_count, COUNT(gs.user_id) AS student_count").
			Joins("LEFT JOIN group_students gs ON gs.group_id = g.id").
			Where("g.status = ? AND g.course_id IN ?", groupModel.GroupActive, ids).
			Group("g.course_id").
			Scan(&counts).Error; err != nil {
			return helper.FromFiberError(c, err)
		}
	}
	byCourse := make(map[uint]courseCount, len(counts))
	for _, ct := range counts {
		byCourse[ct.CourseID] = ct
	}

	stats := dto.CourseStats{TotalCourses: int64(len(courses))}
	if len(ids) > 0 {
		if err := db.Table("group_students gs").
			Joins("JOIN groups g ON g.id = gs.group_id").
			Where("g.status = ? AND g.course_id IN ?", groupModel.GroupActive, ids).
			Distinct("gs.user_id").
			Count(&stats.TotalStudents).Error; err != nil {
			return helper.FromFiberError(c, err)
		}
	}
	now := dbtime.NowInCenter()
	monthStart, _ := dbtime.MonthBounds(now.Year(), now.Month())
	if err := db.Model(&groupModel.GroupModel{}).
		Where("created_at >= ?", monthStart).
		Count(&stats.ThisMonthGroups).Error; err != nil {
		return helper.FromFiberError(c, err)
	}

	items := make([]dto.CourseListItem, 0, len(courses))
	for _, co := range courses {
		ct := byCourse[co.ID]
		items = append(items, dto.CourseListItem{
			ID:            co.ID,
			Name:          co.Name,
			Description:   co.Description,
			TotalGroups:   ct.GroupCount,
			TotalStudents: ct.StudentCount,
		})
	}
	return helper.JsonOK(c, "Courses fetched", fiber.Map{"stats": stats, "data": items})
}

// =====================================================
// GET /api/courses/:id
// =====================================================
func (cc *CourseController) GetCourse(c *fiber.Ctx) error {
	id, err := helper.ParseIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	db := cc.DB.WithContext(c.UserContext())

	var m model.CourseModel
	if err := db.First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Course not found")
		}
		return helper.FromFiberError(c, err)
	}

	var groups []groupModel.GroupModel
	if err := db.Preload("Teacher").Where("course_id = ?", id).Order("id ASC").Find(&groups).Error; err != nil {
		return helper.FromFiberError(c, err)
	}
	counts, err := groupService.RosterCounts(db, groupIDs(groups)...)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	out := dto.CourseDetail{CourseModel: m, Groups: make([]dto.CourseGroup, 0, len(groups))}
	for _, g := range groups {
		item := dto.CourseGroup{
			ID:           g.ID,
			Name:         g.Name,
			Status:       string(g.Status),
			Price:        g.Price,
			TeacherID:    g.TeacherID,
			StudentCount: counts[g.ID],
		}
		if g.Teacher != nil {
			item.TeacherName = g.Teacher.FullName()
		}
		out.Groups = append(out.Groups, item)
	}
	return helper.JsonOK(c, "Course fetched", out)
}

// =====================================================
// PUT /api/courses/:id
// =====================================================
func (cc *CourseController) UpdateCourse(c *fiber.Ctx) error {
	id, err := helper.ParseIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var in dto.UpdateCourseRequest
	if err := c.BodyParser(&in); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	in.Normalize()
	if err := validateCourse.Struct(in); err != nil {
		return helper.ValidationError(c, err)
	}

	db := cc.DB.WithContext(c.UserContext())
	var m model.CourseModel
	if err := db.First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Course not found")
		}
		return helper.FromFiberError(c, err)
	}
	in.ApplyToModel(&m)
	if err := db.Save(&m).Error; err != nil {
		if helper.IsDuplicateKey(err) {
			return helper.JsonError(c, fiber.StatusConflict, "Course with this name already exists")
		}
		return helper.FromFiberError(c, err)
	}
	return helper.JsonUpdated(c, "Course updated", m)
}

// =====================================================
// DELETE /api/courses/:id
// =====================================================
func (cc *CourseController) DeleteCourse(c *fiber.Ctx) error {
	id, err := helper.ParseIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	err = cc.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		var m model.CourseModel
		if err := tx.First(&m, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Course not found")
			}
			return err
		}
		if err := groupService.DeleteGroupsOfCourseTx(tx, id); err != nil {
			return err
		}
		for _, table := range []string{"users", "payments", "applications"} {
			if err := tx.Table(table).Where("course_id = ?", id).Update("course_id", nil).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&model.CourseModel{}, id).Error
	})
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonDeleted(c, "Course deleted", fiber.Map{"id": id})
}

func groupIDs(groups []groupModel.GroupModel) []uint {
	out := make([]uint, 0, len(groups))
	for _, g := range groups {
		out = append(out, g.ID)
	}
	return out
}
