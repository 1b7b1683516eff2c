package service

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"educenter_backend/internals/features/attendance/attendance/model"
	groupModel "educenter_backend/internals/features/catalog/groups/model"
	helper "educenter_backend/internals/helpers"
	"educenter_backend/internals/helpers/dbtime"
)

type Mode int

const (
	ModeCreate Mode = iota
	ModeUpsert
	ModeUpdate
)

// dayKey is the uq_attendance_day conflict target.
var dayKey = []clause.Column{{Name: "user_id"}, {Name: "group_id"}, {Name: "date"}, {Name: "is_teacher_attendance"}}

type MarkRow struct {
	StudentID uint
	Status    model.Status
	Grade     *int
}

type MarkBatch struct {
	GroupID uint
	Date    string
	Rows    []MarkRow
}

// LoadGroup returns 404 when the group does not exist.
func LoadGroup(db *gorm.DB, id uint) (groupModel.GroupModel, error) {
	var g groupModel.GroupModel
	if err := db.Preload("Teacher").First(&g, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return g, fiber.NewError(fiber.StatusNotFound, "Group not found")
		}
		return g, err
	}
	return g, nil
}

func IsTeacherOf(g groupModel.GroupModel, userID uint) bool {
	return g.TeacherID != nil && *g.TeacherID == userID
}

// ScheduledDate parses date and requires it to be one of the group's days.
func ScheduledDate(g groupModel.GroupModel, date string) (time.Time, error) {
	day, err := dbtime.ParseDate(date)
	if err != nil {
		return day, err
	}
	if !dbtime.HasWeekday(g.DaysOfWeek, day) {
		return day, fiber.NewError(fiber.StatusBadRequest, "Group has no lesson on "+day.Weekday().String())
	}
	return day, nil
}

func rosterSet(tx *gorm.DB, groupID uint) (map[uint]bool, error) {
	var ids []uint
	if err := tx.Model(&groupModel.GroupStudentModel{}).
		Where("group_id = ?", groupID).
		Pluck("user_id", &ids).Error; err != nil {
		return nil, err
	}
	set := make(map[uint]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

func (b MarkBatch) validate(tx *gorm.DB, teacherID uint) (string, error) {
	g, err := LoadGroup(tx, b.GroupID)
	if err != nil {
		return "", err
	}
	if !IsTeacherOf(g, teacherID) {
		return "", fiber.NewError(fiber.StatusForbidden, "Only the group teacher may mark attendance")
	}
	day, err := ScheduledDate(g, b.Date)
	if err != nil {
		return "", err
	}
	if len(b.Rows) == 0 {
		return "", fiber.NewError(fiber.StatusBadRequest, "attendances must not be empty")
	}
	roster, err := rosterSet(tx, b.GroupID)
	if err != nil {
		return "", err
	}
	seen := make(map[uint]bool, len(b.Rows))
	for _, r := range b.Rows {
		if !roster[r.StudentID] {
			return "", fiber.NewError(fiber.StatusBadRequest, "Student is not in this group")
		}
		if seen[r.StudentID] {
			return "", fiber.NewError(fiber.StatusBadRequest, "Student listed twice")
		}
		seen[r.StudentID] = true
		if !r.Status.ValidStudent() {
			return "", fiber.NewError(fiber.StatusBadRequest, "status must be present, absent or late")
		}
		if r.Grade != nil && (*r.Grade < 0 || *r.Grade > 100) {
			return "", fiber.NewError(fiber.StatusBadRequest, "grade must be between 0 and 100")
		}
	}
	return dbtime.FormatDate(day), nil
}

// Mark validates the whole batch, then writes it in one transaction.
func Mark(ctx context.Context, db *gorm.DB, teacherID uint, mode Mode, b MarkBatch) ([]model.AttendanceModel, error) {
	var out []model.AttendanceModel
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		date, err := b.validate(tx, teacherID)
		if err != nil {
			return err
		}
		ids := make([]uint, 0, len(b.Rows))
		for _, r := range b.Rows {
			ids = append(ids, r.StudentID)
		}

		switch mode {
		case ModeCreate:
			var n int64
			if err := tx.Model(&model.AttendanceModel{}).
				Where("group_id = ? AND date = ? AND is_teacher_attendance = ? AND user_id IN ?", b.GroupID, date, false, ids).
				Count(&n).Error; err != nil {
				return err
			}
			if n > 0 {
				return fiber.NewError(fiber.StatusConflict, "Attendance already recorded for this date")
			}
			rows := b.models(date, teacherID)
			if err := tx.Create(&rows).Error; err != nil {
				if helper.IsDuplicateKey(err) {
					return fiber.NewError(fiber.StatusConflict, "Attendance already recorded for this date")
				}
				return err
			}

		case ModeUpsert:
			rows := b.models(date, teacherID)
			if err := tx.Clauses(clause.OnConflict{
				Columns:   dayKey,
				DoUpdates: clause.AssignmentColumns([]string{"status", "grade", "marked_by_id", "updated_at"}),
			}).Create(&rows).Error; err != nil {
				return err
			}

		case ModeUpdate:
			for _, r := range b.Rows {
				var row model.AttendanceModel
				err := tx.Where("group_id = ? AND date = ? AND is_teacher_attendance = ? AND user_id = ?",
					b.GroupID, date, false, r.StudentID).First(&row).Error
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fiber.NewError(fiber.StatusNotFound, "Attendance not found for this student and date")
				}
				if err != nil {
					return err
				}
				row.Status, row.Grade, row.MarkedByID = r.Status, r.Grade, &teacherID
				if err := tx.Select("status", "grade", "marked_by_id", "updated_at").Save(&row).Error; err != nil {
					return err
				}
			}
		}

		// re-read so upserted rows carry their stored ids
		out = nil
		return tx.Where("group_id = ? AND date = ? AND is_teacher_attendance = ? AND user_id IN ?",
			b.GroupID, date, false, ids).Order("user_id ASC").Find(&out).Error
	})
	return out, err
}

func (b MarkBatch) models(date string, teacherID uint) []model.AttendanceModel {
	out := make([]model.AttendanceModel, 0, len(b.Rows))
	for _, r := range b.Rows {
		by := teacherID
		out = append(out, model.AttendanceModel{
			UserID:     r.StudentID,
			GroupID:    b.GroupID,
			Date:       date,
			Status:     r.Status,
			Grade:      r.Grade,
			MarkedByID: &by,
		})
	}
	return out
}

type TeacherMark struct {
	TeacherID uint
	GroupID   uint
	Date      string
	Status    model.Status
}

// MarkTeacher upserts an admin's record of a teacher absence.
func MarkTeacher(ctx context.Context, db *gorm.DB, adminID uint, in TeacherMark) (model.AttendanceModel, error) {
	var row model.AttendanceModel
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		g, err := LoadGroup(tx, in.GroupID)
		if err != nil {
			return err
		}
		if !IsTeacherOf(g, in.TeacherID) {
			return fiber.NewError(fiber.StatusBadRequest, "Teacher does not teach this group")
		}
		day, err := dbtime.ParseDate(in.Date)
		if err != nil {
			return err
		}
		if !in.Status.ValidTeacher() {
			return fiber.NewError(fiber.StatusBadRequest, "status must be absent_with_reason or absent_without_reason")
		}
		row = model.AttendanceModel{
			UserID:              in.TeacherID,
			GroupID:             in.GroupID,
			Date:                dbtime.FormatDate(day),
			IsTeacherAttendance: true,
			Status:              in.Status,
			MarkedByID:          &adminID,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   dayKey,
			DoUpdates: clause.AssignmentColumns([]string{"status", "marked_by_id", "updated_at"}),
		}).Create(&row).Error; err != nil {
			return err
		}
		key := row
		row = model.AttendanceModel{}
		return tx.Where("user_id = ? AND group_id = ? AND date = ? AND is_teacher_attendance = ?",
			key.UserID, key.GroupID, key.Date, true).First(&row).Error
	})
	return row, err
}

// Delete removes one row; only the teacher of its group may do so.
func Delete(ctx context.Context, db *gorm.DB, teacherID, id uint) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row model.AttendanceModel
		if err := tx.First(&row, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Attendance not found")
			}
			return err
		}
		g, err := LoadGroup(tx, row.GroupID)
		if err != nil {
			return err
		}
		if !IsTeacherOf(g, teacherID) {
			return fiber.NewError(fiber.StatusForbidden, "Only the group teacher may delete attendance")
		}
		return tx.Delete(&row).Error
	})
}
