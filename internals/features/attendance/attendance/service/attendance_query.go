package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"educenter_backend/internals/constants"
	"educenter_backend/internals/features/attendance/attendance/model"
	groupModel "educenter_backend/internals/features/catalog/groups/model"
	groupService "educenter_backend/internals/features/catalog/groups/service"
	userModel "educenter_backend/internals/features/users/user/model"
	helper "educenter_backend/internals/helpers"
	"educenter_backend/internals/helpers/dbtime"
)

type StudentStats struct {
	StudentID    uint     `json:"studentId"`
	FullName     string   `json:"fullName"`
	Present      int64    `json:"present"`
	Absent       int64    `json:"absent"`
	Late         int64    `json:"late"`
	Total        int64    `json:"total"`
	AverageGrade *float64 `json:"averageGrade"`
}

// Statistics aggregates student rows, optionally for one group, ordered by
// present count descending.
func Statistics(db *gorm.DB, groupID uint) ([]StudentStats, error) {
	q := db.Model(&model.AttendanceModel{}).
		Select(`user_id AS student_id,
			SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS present,
			SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS absent,
			SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS late,
			COUNT(*) AS total,
			AVG(grade) AS average_grade`, model.StatusPresent, model.StatusAbsent, model.StatusLate).
		Where("is_teacher_attendance = ?", false)
	if groupID > 0 {
		q = q.Where("group_id = ?", groupID)
	}
	var rows []StudentStats
	if err := q.Group("user_id").Order("present DESC, user_id ASC").Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return rows, nil
	}
	ids := make([]uint, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.StudentID)
	}
	var users []userModel.UserModel
	if err := db.Select("id", "first_name", "last_name").Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	names := make(map[uint]string, len(users))
	for _, u := range users {
		names[u.ID] = u.FullName()
	}
	for i := range rows {
		rows[i].FullName = names[rows[i].StudentID]
	}
	return rows, nil
}

type MissingGroup struct {
	GroupID    uint   `json:"groupId"`
	GroupName  string `json:"groupName"`
	Date       string `json:"date"`
	LessonTime string `json:"lessonTime"`
	Teacher    string `json:"teacher"`
	Phone      string `json:"phone"`
	Reason     string `json:"reason"`
}

// lessonEnd is the group's end time on day; a missing or broken schedule
// falls back to two hours after the start, then to the end of the day.
func lessonEnd(g groupModel.GroupModel, day time.Time) time.Time {
	if end, err := dbtime.ParseTod(g.EndTime); err == nil {
		return end.On(day)
	}
	if start, err := dbtime.ParseTod(g.StartTime); err == nil {
		return start.On(day).Add(2 * time.Hour)
	}
	return day.AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// Missing lists active groups scheduled on day whose lesson has ended by
// now without any attendance row.
func Missing(db *gorm.DB, day, now time.Time) ([]MissingGroup, error) {
	day = dbtime.ToCenterTime(day)
	date := dbtime.FormatDate(day)

	var groups []groupModel.GroupModel
	if err := db.Preload("Teacher").
		Where("status = ?", groupModel.GroupActive).
		Order("id ASC").
		Find(&groups).Error; err != nil {
		return nil, err
	}
	var marked []uint
	if err := db.Model(&model.AttendanceModel{}).
		Where("date = ?", date).
		Distinct("group_id").
		Pluck("group_id", &marked).Error; err != nil {
		return nil, err
	}
	done := make(map[uint]bool, len(marked))
	for _, id := range marked {
		done[id] = true
	}

	out := make([]MissingGroup, 0)
	for _, g := range groups {
		if !dbtime.HasWeekday(g.DaysOfWeek, day) || done[g.ID] {
			continue
		}
		if now.Before(lessonEnd(g, day)) {
			continue
		}
		m := MissingGroup{
			GroupID:    g.ID,
			GroupName:  g.Name,
			Date:       date,
			LessonTime: fmt.Sprintf("%s-%s", g.StartTime, g.EndTime),
			Reason:     "Attendance was not taken",
		}
		if g.Teacher != nil {
			m.Teacher = g.Teacher.FullName()
			m.Phone = g.Teacher.Phone
		} else {
			m.Reason = "Group has no teacher"
		}
		out = append(out, m)
	}
	return out, nil
}

type DayCounts struct {
	Total   int `json:"total"`
	Present int `json:"present"`
	Absent  int `json:"absent"`
	Late    int `json:"late"`
}

func (d *DayCounts) add(s model.Status) {
	switch s {
	case model.StatusPresent:
		d.Present++
	case model.StatusAbsent:
		d.Absent++
	case model.StatusLate:
		d.Late++
	}
}

type HistoryStudent struct {
	ID       uint          `json:"id"`
	FullName string        `json:"fullName"`
	Status   *model.Status `json:"status"`
	Grade    *int          `json:"grade"`
}

type History struct {
	Statistics DayCounts        `json:"statistics"`
	Date       string           `json:"date"`
	Exportable bool             `json:"exportable"`
	Students   []HistoryStudent `json:"students"`
}

// GroupHistory is the roster of groupID with each student's mark on date.
// Teachers of the group and admins see everyone; a student on the roster
// sees only their own row.
func GroupHistory(db *gorm.DB, actor helper.Actor, groupID uint, date string) (History, error) {
	g, err := LoadGroup(db, groupID)
	if err != nil {
		return History{}, err
	}
	day, err := dbtime.ParseDate(date)
	if err != nil {
		return History{}, err
	}
	date = dbtime.FormatDate(day)

	privileged := actor.Role.In(constants.Admins) || IsTeacherOf(g, actor.ID)
	if !privileged {
		on, err := groupService.IsEnrolled(db, groupID, actor.ID)
		if err != nil {
			return History{}, err
		}
		if !on || actor.Role != constants.RoleStudent {
			return History{}, fiber.NewError(fiber.StatusForbidden, "You are not a member of this group")
		}
	}

	roster, err := groupService.Roster(db, groupID)
	if err != nil {
		return History{}, err
	}
	var rows []model.AttendanceModel
	if err := db.Where("group_id = ? AND date = ? AND is_teacher_attendance = ?", groupID, date, false).
		Find(&rows).Error; err != nil {
		return History{}, err
	}
	byUser := make(map[uint]model.AttendanceModel, len(rows))
	for _, r := range rows {
		byUser[r.UserID] = r
	}

	h := History{Date: date, Exportable: privileged, Students: make([]HistoryStudent, 0, len(roster))}
	for _, u := range roster {
		if !privileged && u.ID != actor.ID {
			continue
		}
		s := HistoryStudent{ID: u.ID, FullName: u.FullName()}
		if r, ok := byUser[u.ID]; ok {
			st := r.Status
			s.Status, s.Grade = &st, r.Grade
			h.Statistics.add(st)
		}
		h.Statistics.Total++
		h.Students = append(h.Students, s)
	}
	return h, nil
}

type Daily struct {
	TotalStudents int64                   `json:"totalStudents"`
	Present       int                     `json:"present"`
	Absent        int                     `json:"absent"`
	Late          int                     `json:"late"`
	Attendances   []model.AttendanceModel `json:"attendances"`
}

// DailyReport is one scheduled day of a group, optionally narrowed to
// students whose name contains studentName.
func DailyReport(db *gorm.DB, groupID uint, date, studentName string) (Daily, error) {
	g, err := LoadGroup(db, groupID)
	if err != nil {
		return Daily{}, err
	}
	day, err := ScheduledDate(g, date)
	if err != nil {
		return Daily{}, err
	}
	counts, err := groupService.RosterCounts(db, groupID)
	if err != nil {
		return Daily{}, err
	}

	q := db.Preload("User").
		Where("attendances.group_id = ? AND attendances.date = ? AND attendances.is_teacher_attendance = ?",
			groupID, dbtime.FormatDate(day), false)
	if name := strings.ToLower(strings.TrimSpace(studentName)); name != "" {
		pattern := "%" + name + "%"
		q = q.Joins("JOIN users u ON u.id = attendances.user_id").
			Where("LOWER(u.first_name) LIKE ? OR LOWER(u.last_name) LIKE ?", pattern, pattern)
	}
	out := Daily{TotalStudents: counts[groupID], Attendances: []model.AttendanceModel{}}
	if err := q.Order("attendances.user_id ASC").Find(&out.Attendances).Error; err != nil {
		return Daily{}, err
	}
	var dc DayCounts
	for _, r := range out.Attendances {
		dc.add(r.Status)
	}
	out.Present, out.Absent, out.Late = dc.Present, dc.Absent, dc.Late
	return out, nil
}
