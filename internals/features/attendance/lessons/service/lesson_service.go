package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	attendanceModel "educenter_backend/internals/features/attendance/attendance/model"
	attendanceService "educenter_backend/internals/features/attendance/attendance/service"
	"educenter_backend/internals/features/attendance/lessons/model"
	groupService "educenter_backend/internals/features/catalog/groups/service"
	"educenter_backend/internals/helpers/dbtime"
)

const defaultLessonSpan = 2 * time.Hour

// dayBounds is [00:00, 24:00) of t's center-local date, in UTC.
func dayBounds(t time.Time) (time.Time, time.Time) {
	t = dbtime.ToCenterTime(t)
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start.UTC(), start.AddDate(0, 0, 1).UTC()
}

// Create opens today's lesson for a group the teacher owns. now is the
// center-local clock.
func Create(ctx context.Context, db *gorm.DB, teacherID, groupID uint, name string, now time.Time) (model.LessonModel, error) {
	var lesson model.LessonModel
	name = strings.TrimSpace(name)
	if name == "" {
		return lesson, fiber.NewError(fiber.StatusBadRequest, "lessonName is required")
	}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := groupService.LockGroups(tx, groupID); err != nil {
			return err
		}
		g, err := attendanceService.LoadGroup(tx, groupID)
		if err != nil {
			return err
		}
		if !attendanceService.IsTeacherOf(g, teacherID) {
			return fiber.NewError(fiber.StatusForbidden, "Only the group teacher may create lessons")
		}
		if !dbtime.HasWeekday(g.DaysOfWeek, now) {
			return fiber.NewError(fiber.StatusBadRequest, "Group has no lesson today")
		}

		from, to := dayBounds(now)
		var today int64
		if err := tx.Model(&model.LessonModel{}).
			Where("group_id = ? AND lesson_date >= ? AND lesson_date < ?", groupID, from, to).
			Count(&today).Error; err != nil {
			return err
		}
		if today > 0 {
			return fiber.NewError(fiber.StatusConflict, "A lesson already exists for this group today")
		}
		var total int64
		if err := tx.Model(&model.LessonModel{}).Where("group_id = ?", groupID).Count(&total).Error; err != nil {
			return err
		}

		start := now.UTC()
		lesson = model.LessonModel{
			GroupID:      groupID,
			LessonName:   name,
			LessonNumber: int(total) + 1,
			LessonDate:   start,
			EndDate:      start.Add(dbtime.Span(g.StartTime, g.EndTime, defaultLessonSpan)),
		}
		return tx.Create(&lesson).Error
	})
	return lesson, err
}

// Load returns 404 when the lesson does not exist.
func Load(db *gorm.DB, id uint) (model.LessonModel, error) {
	var l model.LessonModel
	if err := db.Preload("Group").First(&l, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return l, fiber.NewError(fiber.StatusNotFound, "Lesson not found")
		}
		return l, err
	}
	return l, nil
}

// owned loads the lesson and requires teacherID to teach its group.
func owned(tx *gorm.DB, teacherID, id uint) (model.LessonModel, error) {
	l, err := Load(tx, id)
	if err != nil {
		return l, err
	}
	if l.Group == nil || l.Group.TeacherID == nil || *l.Group.TeacherID != teacherID {
		return l, fiber.NewError(fiber.StatusForbidden, "Only the group teacher may change this lesson")
	}
	return l, nil
}

func Rename(ctx context.Context, db *gorm.DB, teacherID, id uint, name string) (model.LessonModel, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.LessonModel{}, fiber.NewError(fiber.StatusBadRequest, "lessonName is required")
	}
	var l model.LessonModel
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if l, err = owned(tx, teacherID, id); err != nil {
			return err
		}
		l.LessonName = name
		return tx.Model(&l).Update("lesson_name", name).Error
	})
	return l, err
}

func Delete(ctx context.Context, db *gorm.DB, teacherID, id uint) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		l, err := owned(tx, teacherID, id)
		if err != nil {
			return err
		}
		return tx.Delete(&model.LessonModel{}, l.ID).Error
	})
}

// OnDate narrows q to lessons held on the center-local date.
func OnDate(q *gorm.DB, date string) (*gorm.DB, error) {
	day, err := dbtime.ParseDate(date)
	if err != nil {
		return nil, err
	}
	from, to := dayBounds(day)
	return q.Where("lessons.lesson_date >= ? AND lessons.lesson_date < ?", from, to), nil
}

type LessonStats struct {
	Lesson         string  `json:"lesson"`
	LessonID       uint    `json:"lessonId"`
	LessonNumber   int     `json:"lessonNumber"`
	Date           string  `json:"date"`
	Group          string  `json:"group"`
	Teacher        string  `json:"teacher"`
	Course         string  `json:"course"`
	TotalStudents  int64   `json:"totalStudents"`
	PresentCount   int64   `json:"presentCount"`
	AttendanceRate float64 `json:"attendanceRate"`
}

// Statistics reports present counts per lesson against the current roster.
func Statistics(db *gorm.DB, groupID uint, date string) ([]LessonStats, error) {
	q := db.Preload("Group.Teacher").Preload("Group.Course").Model(&model.LessonModel{})
	if groupID > 0 {
		q = q.Where("group_id = ?", groupID)
	}
	if strings.TrimSpace(date) != "" {
		var err error
		if q, err = OnDate(q, date); err != nil {
			return nil, err
		}
	}
	var lessons []model.LessonModel
	if err := q.Order("lesson_date DESC, id DESC").Find(&lessons).Error; err != nil {
		return nil, err
	}

	groupIDs := make([]uint, 0, len(lessons))
	for _, l := range lessons {
		groupIDs = append(groupIDs, l.GroupID)
	}
	roster, err := groupService.RosterCounts(db, groupIDs...)
	if err != nil {
		return nil, err
	}

	out := make([]LessonStats, 0, len(lessons))
	for _, l := range lessons {
		day := dbtime.FormatDate(l.LessonDate)
		var present int64
		if err := db.Model(&attendanceModel.AttendanceModel{}).
			Where("group_id = ? AND date = ? AND is_teacher_attendance = ? AND status = ?",
				l.GroupID, day, false, attendanceModel.StatusPresent).
			Count(&present).Error; err != nil {
			return nil, err
		}
		s := LessonStats{
			Lesson:        l.LessonName,
			LessonID:      l.ID,
			LessonNumber:  l.LessonNumber,
			Date:          day,
			TotalStudents: roster[l.GroupID],
			PresentCount:  present,
		}
		if s.TotalStudents > 0 {
			s.AttendanceRate = math.Round(float64(present)/float64(s.TotalStudents)*10000) / 100
		}
		if g := l.Group; g != nil {
			s.Group = g.Name
			if g.Teacher != nil {
				s.Teacher = g.Teacher.FullName()
			}
			if g.Course != nil {
				s.Course = g.Course.Name
			}
		}
		out = append(out, s)
	}
	return out, nil
}
