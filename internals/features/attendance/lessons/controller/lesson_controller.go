package controller

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"educenter_backend/internals/constants"
	attendanceService "educenter_backend/internals/features/attendance/attendance/service"
	"educenter_backend/internals/features/attendance/lessons/model"
	"educenter_backend/internals/features/attendance/lessons/service"
	groupService "educenter_backend/internals/features/catalog/groups/service"
	helper "educenter_backend/internals/helpers"
	"educenter_backend/internals/helpers/dbtime"
)

var validateLesson = validator.New()

type CreateLessonRequest struct {
	GroupID    uint   `json:"groupId" validate:"required"`
	LessonName string `json:"lessonName" validate:"required,max=150"`
}

type RenameLessonRequest struct {
	LessonName string `json:"lessonName" validate:"required,max=150"`
}

type LessonController struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewLessonController(db *gorm.DB) *LessonController {
	return &LessonController{DB: db, Now: dbtime.NowInCenter}
}

// POST /api/lessons
func (lc *LessonController) Create(c *fiber.Ctx) error {
	var in CreateLessonRequest
	if err := c.BodyParser(&in); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validateLesson.Struct(in); err != nil {
		return helper.ValidationError(c, err)
	}
	actor, err := helper.GetActor(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	l, err := service.Create(c.UserContext(), lc.DB, actor.ID, in.GroupID, in.LessonName, lc.Now())
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonCreated(c, "Lesson created", l)
}

// GET /api/lessons/all
func (lc *LessonController) All(c *fiber.Ctx) error {
	db := lc.DB.WithContext(c.UserContext())
	var total int64
	if err := db.Model(&model.LessonModel{}).Count(&total).Error; err != nil {
		return helper.FromFiberError(c, err)
	}
	p := helper.ResolvePaging(c, 50, 500)
	var rows []model.LessonModel
	if err := db.Preload("Group").
		Order("lesson_date DESC, id DESC").
		Offset(p.Offset).Limit(p.Limit).
		Find(&rows).Error; err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonList(c, "Lessons fetched", rows, helper.BuildPagination(total, p))
}

// GET /api/lessons/group/:groupId?date=
func (lc *LessonController) ByGroup(c *fiber.Ctx) error {
	groupID, err := helper.ParseIDParam(c, "groupId")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	actor, err := helper.GetActor(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	db := lc.DB.WithContext(c.UserContext())
	g, err := attendanceService.LoadGroup(db, groupID)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if !actor.Role.In(constants.Admins) && !attendanceService.IsTeacherOf(g, actor.ID) {
		on, err := groupService.IsEnrolled(db, groupID, actor.ID)
		if err != nil {
			return helper.FromFiberError(c, err)
		}
		if !on {
			return helper.JsonError(c, fiber.StatusForbidden, "You are not a member of this group")
		}
	}

	q := db.Model(&model.LessonModel{}).Where("group_id = ?", groupID)
	if d := strings.TrimSpace(c.Query("date")); d != "" {
		if q, err = service.OnDate(q, d); err != nil {
			return helper.FromFiberError(c, err)
		}
	}
	var rows []model.LessonModel
	if err := q.Order("lesson_number ASC").Find(&rows).Error; err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonList(c, "Group lessons fetched", rows, nil)
}

// GET /api/lessons/statistics?groupId=&date=
func (lc *LessonController) Statistics(c *fiber.Ctx) error {
	groupID, err := helper.ParseIDQuery(c, "groupId", false)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	out, err := service.Statistics(lc.DB.WithContext(c.UserContext()), groupID, c.Query("date"))
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonList(c, "Lesson statistics fetched", out, nil)
}

// GET /api/lessons/:id/attendance-history
func (lc *LessonController) AttendanceHistory(c *fiber.Ctx) error {
	id, err := helper.ParseIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	actor, err := helper.GetActor(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	db := lc.DB.WithContext(c.UserContext())
	l, err := service.Load(db, id)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	h, err := attendanceService.GroupHistory(db, actor, l.GroupID, dbtime.FormatDate(l.LessonDate))
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "Lesson attendance fetched", fiber.Map{
		"lesson":     l,
		"statistics": h.Statistics,
		"date":       h.Date,
		"exportable": h.Exportable,
		"students":   h.Students,
	})
}

// PUT /api/lessons/:id
func (lc *LessonController) Rename(c *fiber.Ctx) error {
	id, err := helper.ParseIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var in RenameLessonRequest
	if err := c.BodyParser(&in); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validateLesson.Struct(in); err != nil {
		return helper.ValidationError(c, err)
	}
	actor, err := helper.GetActor(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	l, err := service.Rename(c.UserContext(), lc.DB, actor.ID, id, in.LessonName)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonUpdated(c, "Lesson renamed", l)
}

// DELETE /api/lessons/:id
func (lc *LessonController) Delete(c *fiber.Ctx) error {
	id, err := helper.ParseIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	actor, err := helper.GetActor(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if err := service.Delete(c.UserContext(), lc.DB, actor.ID, id); err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonDeleted(c, "Lesson deleted", fiber.Map{"id": id})
}
