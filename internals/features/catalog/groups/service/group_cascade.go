package service

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	appModel "educenter_backend/internals/features/applications/model"
	attendanceModel "educenter_backend/internals/features/attendance/attendance/model"
	lessonModel "educenter_backend/internals/features/attendance/lessons/model"
	groupModel "educenter_backend/internals/features/catalog/groups/model"
	paymentModel "educenter_backend/internals/features/finance/payments/model"
	salary "educenter_backend/internals/features/finance/salary/service"
)

// DeleteGroupTx removes a group with its payments, attendance, lessons and
// roster, and unlinks applications. The caller recomputes the returned
// group's teacher.
func DeleteGroupTx(tx *gorm.DB, groupID uint) (*groupModel.GroupModel, error) {
	groups, err := LockGroups(tx, groupID)
	if err != nil {
		return nil, err
	}
	g, ok := groups[groupID]
	if !ok {
		return nil, fiber.NewError(fiber.StatusNotFound, "Group not found")
	}

	steps := []func() error{
		func() error { return tx.Where("group_id = ?", groupID).Delete(&paymentModel.PaymentModel{}).Error },
		func() error { return tx.Where("group_id = ?", groupID).Delete(&attendanceModel.AttendanceModel{}).Error },
		func() error { return tx.Where("group_id = ?", groupID).Delete(&lessonModel.LessonModel{}).Error },
		func() error { return tx.Where("group_id = ?", groupID).Delete(&groupModel.GroupStudentModel{}).Error },
		func() error {
			return tx.Model(&appModel.ApplicationModel{}).Where("group_id = ?", groupID).Update("group_id", nil).Error
		},
		func() error { return tx.Delete(&groupModel.GroupModel{}, groupID).Error },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}
	return &g, nil
}

// DeleteGroupsOfCourseTx cascades every group of a course and recomputes
// the salaries of their teachers.
func DeleteGroupsOfCourseTx(tx *gorm.DB, courseID uint) error {
	var ids []uint
	if err := tx.Model(&groupModel.GroupModel{}).
		Where("course_id = ?", courseID).
		Order("id ASC").
		Pluck("id", &ids).Error; err != nil {
		return err
	}
	var teachers []uint
	for _, id := range ids {
		g, err := DeleteGroupTx(tx, id)
		if err != nil {
			return err
		}
		teachers = append(teachers, salary.TeacherIDs(*g)...)
	}
	return salary.RecomputeMany(tx, teachers...)
}
