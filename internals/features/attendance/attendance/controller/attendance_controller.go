package controller

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"educenter_backend/internals/features/attendance/attendance/dto"
	"educenter_backend/internals/features/attendance/attendance/model"
	"educenter_backend/internals/features/attendance/attendance/service"
	helper "educenter_backend/internals/helpers"
	"educenter_backend/internals/helpers/dbtime"
)

var validateAttendance = validator.New()

type AttendanceController struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewAttendanceController(db *gorm.DB) *AttendanceController {
	return &AttendanceController{DB: db, Now: dbtime.NowInCenter}
}

// today is the date query param or the center's current date.
func (ac *AttendanceController) today(c *fiber.Ctx) string {
	if d := strings.TrimSpace(c.Query("date")); d != "" {
		return d
	}
	return dbtime.FormatDate(ac.Now())
}

func bind(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	return validateAttendance.Struct(dst)
}

func fail(c *fiber.Ctx, err error) error {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return helper.ValidationError(c, err)
	}
	return helper.FromFiberError(c, err)
}

/* =======================================================
   MARK
======================================================= */

func (ac *AttendanceController) mark(c *fiber.Ctx, mode service.Mode, batch service.MarkBatch, msg string) error {
	actor, err := helper.GetActor(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	rows, err := service.Mark(c.UserContext(), ac.DB, actor.ID, mode, batch)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if mode == service.ModeCreate {
		return helper.JsonCreated(c, msg, dto.FromModelList(rows))
	}
	return helper.JsonUpdated(c, msg, dto.FromModelList(rows))
}

// POST /api/attendance
func (ac *AttendanceController) Create(c *fiber.Ctx) error {
	var in dto.MarkRequest
	if err := bind(c, &in); err != nil {
		return fail(c, err)
	}
	return ac.mark(c, service.ModeCreate, in.ToBatch(), "Attendance recorded")
}

// PUT /api/attendance
func (ac *AttendanceController) Upsert(c *fiber.Ctx) error {
	var in dto.MarkRequest
	if err := bind(c, &in); err != nil {
		return fail(c, err)
	}
	return ac.mark(c, service.ModeUpsert, in.ToBatch(), "Attendance saved")
}

// PATCH /api/attendance/group/:groupId/date/:date
func (ac *AttendanceController) BulkUpdate(c *fiber.Ctx) error {
	groupID, err := helper.ParseIDParam(c, "groupId")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var in dto.BulkUpdateRequest
	if err := bind(c, &in); err != nil {
		return fail(c, err)
	}
	return ac.mark(c, service.ModeUpdate, in.ToBatch(groupID, c.Params("date")), "Attendance updated")
}

// DELETE /api/attendance/:id
func (ac *AttendanceController) Delete(c *fiber.Ctx) error {
	id, err := helper.ParseIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	actor, err := helper.GetActor(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if err := service.Delete(c.UserContext(), ac.DB, actor.ID, id); err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonDeleted(c, "Attendance deleted", fiber.Map{"id": id})
}

/* =======================================================
   TEACHER ATTENDANCE
======================================================= */

// POST /api/attendance/teacher
func (ac *AttendanceController) MarkTeacher(c *fiber.Ctx) error {
	var in dto.TeacherMarkRequest
	if err := bind(c, &in); err != nil {
		return fail(c, err)
	}
	actor, err := helper.GetActor(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	row, err := service.MarkTeacher(c.UserContext(), ac.DB, actor.ID, in.ToInput())
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonCreated(c, "Teacher attendance saved", dto.FromModel(row))
}

// GET /api/attendance/teacher?groupId=&date=&teacherId=
func (ac *AttendanceController) ListTeacher(c *fiber.Ctx) error {
	q := ac.DB.WithContext(c.UserContext()).
		Preload("User").Preload("Group").Preload("MarkedBy").
		Where("is_teacher_attendance = ?", true)
	for _, key := range []string{"groupId", "teacherId"} {
		id, err := helper.ParseIDQuery(c, key, false)
		if err != nil {
			return helper.FromFiberError(c, err)
		}
		if id == 0 {
			continue
		}
		col := "group_id"
		if key == "teacherId" {
			col = "user_id"
		}
		q = q.Where(col+" = ?", id)
	}
	if d := strings.TrimSpace(c.Query("date")); d != "" {
		day, err := dbtime.ParseDate(d)
		if err != nil {
			return helper.FromFiberError(c, err)
		}
		q = q.Where("date = ?", dbtime.FormatDate(day))
	}
	var rows []model.AttendanceModel
	if err := q.Order("date DESC, id DESC").Find(&rows).Error; err != nil {
		return helper.FromFiberError(c, err)
	}
	out := make([]dto.TeacherAttendanceResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.FromTeacherModel(r))
	}
	return helper.JsonList(c, "Teacher attendance fetched", out, nil)
}

/* =======================================================
   READS
======================================================= */

// GET /api/attendance/missing?date=
func (ac *AttendanceController) Missing(c *fiber.Ctx) error {
	day, err := dbtime.ParseDate(ac.today(c))
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	out, err := service.Missing(ac.DB.WithContext(c.UserContext()), day, ac.Now())
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonList(c, "Groups without attendance fetched", out, nil)
}

// GET /api/attendance?groupId=&userId=&date=&page=&per_page=
func (ac *AttendanceController) List(c *fiber.Ctx) error {
	q := ac.DB.WithContext(c.UserContext()).Model(&model.AttendanceModel{}).
		Where("is_teacher_attendance = ?", false)
	if id, err := helper.ParseIDQuery(c, "groupId", false); err != nil {
		return helper.FromFiberError(c, err)
	} else if id > 0 {
		q = q.Where("group_id = ?", id)
	}
	if id, err := helper.ParseIDQuery(c, "userId", false); err != nil {
		return helper.FromFiberError(c, err)
	} else if id > 0 {
		q = q.Where("user_id = ?", id)
	}
	if d := strings.TrimSpace(c.Query("date")); d != "" {
		q = q.Where("date = ?", d)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return helper.FromFiberError(c, err)
	}
	p := helper.ResolvePaging(c, 20, 200)
	var rows []model.AttendanceModel
	if err := q.Preload("User").Preload("Group").
		Order("date DESC, id DESC").
		Offset(p.Offset).Limit(p.Limit).
		Find(&rows).Error; err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonList(c, "Attendance fetched", dto.FromModelList(rows), helper.BuildPagination(total, p))
}

// GET /api/attendance/statistics?groupId=
func (ac *AttendanceController) Statistics(c *fiber.Ctx) error {
	groupID, err := helper.ParseIDQuery(c, "groupId", false)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	out, err := service.Statistics(ac.DB.WithContext(c.UserContext()), groupID)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonList(c, "Attendance statistics fetched", out, nil)
}

// GET /api/attendance/group/:groupId
func (ac *AttendanceController) ByGroup(c *fiber.Ctx) error {
	groupID, err := helper.ParseIDParam(c, "groupId")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	db := ac.DB.WithContext(c.UserContext())
	if _, err := service.LoadGroup(db, groupID); err != nil {
		return helper.FromFiberError(c, err)
	}
	var rows []model.AttendanceModel
	if err := db.Preload("User").
		Where("group_id = ? AND is_teacher_attendance = ?", groupID, false).
		Order("date ASC, user_id ASC").
		Find(&rows).Error; err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonList(c, "Group attendance fetched", dto.FromModelList(rows), nil)
}

// GET /api/attendance/daily/:groupId?date=&studentName=
func (ac *AttendanceController) Daily(c *fiber.Ctx) error {
	groupID, err := helper.ParseIDParam(c, "groupId")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	out, err := service.DailyReport(ac.DB.WithContext(c.UserContext()), groupID, ac.today(c), c.Query("studentName"))
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "Daily attendance fetched", fiber.Map{
		"totalStudents": out.TotalStudents,
		"present":       out.Present,
		"absent":        out.Absent,
		"late":          out.Late,
		"attendances":   dto.FromModelList(out.Attendances),
	})
}

// GET /api/attendance/history/:groupId?date=
func (ac *AttendanceController) History(c *fiber.Ctx) error {
	groupID, err := helper.ParseIDParam(c, "groupId")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	actor, err := helper.GetActor(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	h, err := service.GroupHistory(ac.DB.WithContext(c.UserContext()), actor, groupID, ac.today(c))
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "Attendance history fetched", h)
}

// GET /api/attendance/:id
func (ac *AttendanceController) Get(c *fiber.Ctx) error {
	id, err := helper.ParseIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var row model.AttendanceModel
	if err := ac.DB.WithContext(c.UserContext()).Preload("User").Preload("Group").First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Attendance not found")
		}
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "Attendance fetched", dto.FromModel(row))
}
