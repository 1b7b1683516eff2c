package service

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"educenter_backend/internals/constants"
	groupModel "educenter_backend/internals/features/catalog/groups/model"
	salary "educenter_backend/internals/features/finance/salary/service"
	userModel "educenter_backend/internals/features/users/user/model"
	helper "educenter_backend/internals/helpers"
)

// Enrollment owns roster mutations. Every mutation recomputes the affected
// teachers' salaries in the same transaction.
type Enrollment struct {
	DB *gorm.DB
}

func NewEnrollment(db *gorm.DB) *Enrollment {
	return &Enrollment{DB: db}
}

func (e *Enrollment) AddStudent(ctx context.Context, groupID, userID uint) error {
	return e.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return AddStudentTx(tx, groupID, userID, false)
	})
}

func (e *Enrollment) RemoveStudent(ctx context.Context, groupID, userID uint) error {
	return e.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return RemoveStudentTx(tx, groupID, userID)
	})
}

func (e *Enrollment) TransferStudent(ctx context.Context, fromGroupID, toGroupID, userID uint) error {
	return e.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return TransferStudentTx(tx, fromGroupID, toGroupID, userID)
	})
}

// AddStudentTx enrolls inside an existing transaction. With tolerateExisting
// an existing membership is not an error.
func AddStudentTx(tx *gorm.DB, groupID, userID uint, tolerateExisting bool) error {
	groups, err := LockGroups(tx, groupID)
	if err != nil {
		return err
	}
	g, ok := groups[groupID]
	if !ok || !g.IsActive() {
		return fiber.NewError(fiber.StatusNotFound, "Active group not found")
	}
	if err := requireStudent(tx, userID); err != nil {
		return err
	}

	enrolled, err := IsEnrolled(tx, groupID, userID)
	if err != nil {
		return err
	}
	if enrolled {
		if tolerateExisting {
			return nil
		}
		return fiber.NewError(fiber.StatusConflict, "Student already in this group")
	}

	row := groupModel.GroupStudentModel{GroupID: groupID, UserID: userID}
	if err := tx.Create(&row).Error; err != nil {
		if helper.IsDuplicateKey(err) {
			return fiber.NewError(fiber.StatusConflict, "Student already in this group")
		}
		return err
	}
	return salary.RecomputeMany(tx, salary.TeacherIDs(g)...)
}

func RemoveStudentTx(tx *gorm.DB, groupID, userID uint) error {
	groups, err := LockGroups(tx, groupID)
	if err != nil {
		return err
	}
	g, ok := groups[groupID]
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "Group not found")
	}

	res := tx.Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&groupModel.GroupStudentModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "Student not in this group")
	}
	return salary.RecomputeMany(tx, salary.TeacherIDs(g)...)
}

func TransferStudentTx(tx *gorm.DB, fromGroupID, toGroupID, userID uint) error {
	if fromGroupID == toGroupID {
		return fiber.NewError(fiber.StatusBadRequest, "Source and target groups must differ")
	}
	groups, err := LockGroups(tx, fromGroupID, toGroupID)
	if err != nil {
		return err
	}
	from, okFrom := groups[fromGroupID]
	to, okTo := groups[toGroupID]
	if !okFrom || !okTo {
		return fiber.NewError(fiber.StatusNotFound, "Group not found")
	}
	if !to.IsActive() {
		return fiber.NewError(fiber.StatusBadRequest, "Target group is not active")
	}

	inFrom, err := IsEnrolled(tx, fromGroupID, userID)
	if err != nil {
		return err
	}
	if !inFrom {
		return fiber.NewError(fiber.StatusBadRequest, "Student is not in the source group")
	}
	inTo, err := IsEnrolled(tx, toGroupID, userID)
	if err != nil {
		return err
	}
	if inTo {
		return fiber.NewError(fiber.StatusBadRequest, "Student is already in the target group")
	}

	if err := tx.Where("group_id = ? AND user_id = ?", fromGroupID, userID).
		Delete(&groupModel.GroupStudentModel{}).Error; err != nil {
		return err
	}
	row := groupModel.GroupStudentModel{GroupID: toGroupID, UserID: userID}
	if err := tx.Create(&row).Error; err != nil {
		return err
	}
	return salary.RecomputeMany(tx, salary.TeacherIDs(from, to)...)
}

// LockGroups takes FOR UPDATE locks on the given groups in ascending id order.
func LockGroups(tx *gorm.DB, ids ...uint) (map[uint]groupModel.GroupModel, error) {
	var rows []groupModel.GroupModel
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[uint]groupModel.GroupModel, len(rows))
	for _, g := range rows {
		out[g.ID] = g
	}
	return out, nil
}

func IsEnrolled(tx *gorm.DB, groupID, userID uint) (bool, error) {
	var n int64
	err := tx.Model(&groupModel.GroupStudentModel{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&n).Error
	return n > 0, err
}

func requireStudent(tx *gorm.DB, userID uint) error {
	var u userModel.UserModel
	if err := tx.Preload("Role").First(&u, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Student not found")
		}
		return err
	}
	if !u.IsRole(constants.RoleStudent) {
		return fiber.NewError(fiber.StatusNotFound, "Student not found")
	}
	return nil
}
