package controller

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	attendanceModel "educenter_backend/internals/features/attendance/attendance/model"
	"educenter_backend/internals/features/catalog/groups/dto"
	"educenter_backend/internals/features/catalog/groups/model"
	"educenter_backend/internals/features/catalog/groups/service"
	helper "educenter_backend/internals/helpers"
	"educenter_backend/internals/helpers/dbtime"
)

/* =======================================================
   TEACHER VIEWS
======================================================= */

// GET /api/groups/my/teacher/groups
func (gc *GroupController) MyTeacherGroups(c *fiber.Ctx) error {
	teacherID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	db := gc.DB.WithContext(c.UserContext())

	var groups []model.GroupModel
	if err := withRefs(db).Where("teacher_id = ?", teacherID).Order("id ASC").Find(&groups).Error; err != nil {
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

	weekAgo := time.Now().Add(-7 * 24 * time.Hour)
	var stats struct {
		TotalGroups       int   `json:"totalGroups"`
		NewGroupsLastWeek int   `json:"newGroupsLastWeek"`
		ActiveGroups      int   `json:"activeGroups"`
		TotalStudents     int64 `json:"totalStudents"`
	}
	stats.TotalGroups = len(groups)
	items := make([]dto.GroupResponse, 0, len(groups))
	for _, g := range groups {
		if g.CreatedAt.After(weekAgo) {
			stats.NewGroupsLastWeek++
		}
		if g.IsActive() {
			stats.ActiveGroups++
		}
		stats.TotalStudents += counts[g.ID]

		item := dto.FromModel(g, counts[g.ID])
		uz := make([]string, 0, len(item.DaysOfWeek))
		for _, d := range item.DaysOfWeek {
			uz = append(uz, dbtime.UzbekWeekday(d))
		}
		item.DaysOfWeek = uz
		items = append(items, item)
	}
	return helper.JsonOK(c, "Teacher groups fetched", fiber.Map{"statistics": stats, "groups": items})
}

// GET /api/groups/my/schedule?month=&year=
func (gc *GroupController) MySchedule(c *fiber.Ctx) error {
	teacherID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	now := dbtime.NowInCenter()
	year, month := now.Year(), now.Month()
	if v := c.Query("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 2000 || y > 2100 {
			return helper.JsonError(c, fiber.StatusBadRequest, "Invalid year")
		}
		year = y
	}
	if v := c.Query("month"); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			return helper.JsonError(c, fiber.StatusBadRequest, "Invalid month")
		}
		month = time.Month(m)
	}
	from, to := dbtime.MonthBounds(year, month)
	fromDate, toDate := dbtime.FormatDate(from), dbtime.FormatDate(to)

	db := gc.DB.WithContext(c.UserContext())
	var groups []model.GroupModel
	if err := withRefs(db).
		Where("teacher_id = ? AND status = ?", teacherID, model.GroupActive).
		Order("id ASC").
		Find(&groups).Error; err != nil {
		return helper.FromFiberError(c, err)
	}

	out := make([]dto.ScheduleGroup, 0, len(groups))
	for _, g := range groups {
		dates, err := dbtime.LessonDates(g.DaysOfWeek, from, to)
		if err != nil {
			return helper.FromFiberError(c, err)
		}
		lessonDates := make([]string, 0, len(dates))
		for _, d := range dates {
			lessonDates = append(lessonDates, dbtime.FormatDate(d))
		}

		roster, err := service.Roster(db, g.ID)
		if err != nil {
			return helper.FromFiberError(c, err)
		}
		var marks []attendanceModel.AttendanceModel
		if err := db.Where("group_id = ? AND is_teacher_attendance = ? AND date BETWEEN ? AND ?",
			g.ID, false, fromDate, toDate).
			Order("date ASC").
			Find(&marks).Error; err != nil {
			return helper.FromFiberError(c, err)
		}
		byStudent := make(map[uint][]dto.ScheduleAttendance)
		for _, m := range marks {
			byStudent[m.UserID] = append(byStudent[m.UserID], dto.ScheduleAttendance{
				Date: m.Date, Status: string(m.Status), Grade: m.Grade,
			})
		}

		students := make([]dto.ScheduleStudent, 0, len(roster))
		for _, u := range roster {
			att := byStudent[u.ID]
			if att == nil {
				att = []dto.ScheduleAttendance{}
			}
			students = append(students, dto.ScheduleStudent{
				StudentItem: dto.StudentItem{ID: u.ID, FullName: u.FullName(), Phone: u.Phone},
				Attendance:  att,
			})
		}
		out = append(out, dto.ScheduleGroup{
			GroupResponse: dto.FromModel(g, int64(len(roster))),
			LessonDates:   lessonDates,
			Students:      students,
		})
	}
	return helper.JsonOK(c, "Schedule fetched", fiber.Map{
		"month":  dbtime.FormatMonth(from),
		"groups": out,
	})
}
