package service

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"educenter_backend/internals/constants"
	appModel "educenter_backend/internals/features/applications/model"
	attendanceModel "educenter_backend/internals/features/attendance/attendance/model"
	courseModel "educenter_backend/internals/features/catalog/courses/model"
	groupModel "educenter_backend/internals/features/catalog/groups/model"
	groupService "educenter_backend/internals/features/catalog/groups/service"
	paymentModel "educenter_backend/internals/features/finance/payments/model"
	salary "educenter_backend/internals/features/finance/salary/service"
	archiveModel "educenter_backend/internals/features/users/archive/model"
	authHelper "educenter_backend/internals/features/users/auth/helper"
	roleModel "educenter_backend/internals/features/users/role/model"
	"educenter_backend/internals/features/users/user/dto"
	userModel "educenter_backend/internals/features/users/user/model"
	"educenter_backend/internals/helpers/money"
)

// FindByID loads a user with its role.
func FindByID(db *gorm.DB, id uint) (*userModel.UserModel, error) {
	var u userModel.UserModel
	if err := db.Preload("Role").First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "User not found")
		}
		return nil, err
	}
	return &u, nil
}

// RoleByName returns 404 when the role row does not exist.
func RoleByName(db *gorm.DB, name string) (*roleModel.RoleModel, error) {
	var r roleModel.RoleModel
	if err := db.Where("name = ?", name).First(&r).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Role "+name+" not found")
		}
		return nil, err
	}
	return &r, nil
}

// EnsureUnique returns 409 when another user already holds the username
// or phone. selfID excludes the user being updated.
func EnsureUnique(db *gorm.DB, selfID uint, username *string, phone *string) error {
	if username != nil {
		var n int64
		if err := db.Model(&userModel.UserModel{}).
			Where("username = ? AND id <> ?", *username, selfID).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return fiber.NewError(fiber.StatusConflict, "Username "+*username+" already exists")
		}
	}
	if phone != nil {
		var n int64
		if err := db.Model(&userModel.UserModel{}).
			Where("phone = ? AND id <> ?", *phone, selfID).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return fiber.NewError(fiber.StatusConflict, "Phone "+*phone+" already exists")
		}
	}
	return nil
}

/* ===============================
   CREATE
=================================*/

// CreateUserTx creates a user on behalf of an actor. Students may be placed
// into a course and enrolled into a group; teachers start with a computed
// salary of zero.
func CreateUserTx(tx *gorm.DB, actor constants.Role, in dto.CreateUserRequest) (*userModel.UserModel, error) {
	roleName := constants.RoleStudent
	if in.Role != "" {
		r, ok := constants.ParseRole(in.Role)
		if !ok {
			return nil, fiber.NewError(fiber.StatusNotFound, "Role "+in.Role+" not found")
		}
		roleName = r
	}
	if !actor.CanManage(roleName) {
		return nil, fiber.NewError(fiber.StatusForbidden, constants.RoleErrorSuperAdmin("users"))
	}
	role, err := RoleByName(tx, string(roleName))
	if err != nil {
		return nil, err
	}

	u := in.ToModel()
	u.RoleID = role.ID

	switch roleName {
	case constants.RoleStudent:
		if in.CourseID != nil {
			var n int64
			if err := tx.Model(&courseModel.CourseModel{}).Where("id = ?", *in.CourseID).Count(&n).Error; err != nil {
				return nil, err
			}
			if n == 0 {
				return nil, fiber.NewError(fiber.StatusNotFound, "Course not found")
			}
			u.CourseID = in.CourseID
		}
		u.Salary = in.Salary
	case constants.RoleTeacher:
		if in.Percent == nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "percent is required for teacher")
		}
		u.Salary = money.Ptr(decimal.Zero)
	default:
		u.Salary = in.Salary
	}

	if err := EnsureUnique(tx, 0, in.Username, &in.Phone); err != nil {
		return nil, err
	}
	if in.Password != nil {
		hash, err := authHelper.HashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		u.Password = &hash
	}

	if err := tx.Create(&u).Error; err != nil {
		return nil, err
	}
	if roleName == constants.RoleStudent && in.GroupID != nil {
		if err := groupService.AddStudentTx(tx, *in.GroupID, u.ID, false); err != nil {
			return nil, err
		}
	}
	return FindByID(tx, u.ID)
}

// FindOrCreateStudent looks a student up by phone and creates one when
// absent. A phone held by a non-student is a conflict.
func FindOrCreateStudent(tx *gorm.DB, firstName, lastName, phone string) (*userModel.UserModel, error) {
	var u userModel.UserModel
	err := tx.Preload("Role").Where("phone = ?", phone).First(&u).Error
	if err == nil {
		if !u.IsRole(constants.RoleStudent) {
			return nil, fiber.NewError(fiber.StatusConflict, "Phone "+phone+" belongs to a non-student user")
		}
		return &u, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	role, err := RoleByName(tx, string(constants.RoleStudent))
	if err != nil {
		return nil, err
	}
	u = userModel.UserModel{FirstName: firstName, LastName: lastName, Phone: phone, RoleID: role.ID}
	if err := tx.Create(&u).Error; err != nil {
		return nil, err
	}
	u.Role = role
	return &u, nil
}

/* ===============================
   UPDATE
=================================*/

// UpdateUserTx applies a partial update. Salary is accepted only for
// non-teachers; a teacher's salary is recomputed from the new percent.
func UpdateUserTx(tx *gorm.DB, id uint, in dto.UpdateUserRequest) (*userModel.UserModel, error) {
	var u userModel.UserModel
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Preload("Role").First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "User not found")
		}
		return nil, err
	}
	if err := EnsureUnique(tx, id, in.Username, in.Phone); err != nil {
		return nil, err
	}
	in.ApplyToModel(&u)
	isTeacher := u.IsRole(constants.RoleTeacher)
	if !isTeacher && in.Salary != nil {
		u.Salary = in.Salary
	}
	if in.Password != nil {
		hash, err := authHelper.HashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		u.Password = &hash
	}

	if err := tx.Select("first_name", "last_name", "username", "password", "phone",
		"address", "specialty", "salary", "percent").
		Updates(&u).Error; err != nil {
		return nil, err
	}
	if isTeacher {
		if err := salary.RecomputeTeacherSalary(tx, id); err != nil {
			return nil, err
		}
	}
	return FindByID(tx, id)
}

/* ===============================
   DELETE
=================================*/

// DeleteUserTx removes a user with their payments, attendance and roster
// rows, unlinks taught groups and applications, and recomputes every
// teacher whose group lost the student. With archive the user is
// snapshotted first.
func DeleteUserTx(tx *gorm.DB, actor constants.Role, id uint, archive bool) (*userModel.UserModel, error) {
	var u userModel.UserModel
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Preload("Role").First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "User not found")
		}
		return nil, err
	}
	if u.IsRole(constants.RoleSuperAdmin) && actor != constants.RoleSuperAdmin {
		return nil, fiber.NewError(fiber.StatusForbidden, constants.RoleErrorSuperAdmin("users"))
	}

	if archive {
		snap := Snapshot(u)
		if err := tx.Create(&snap).Error; err != nil {
			return nil, err
		}
	}

	var affected []uint
	if err := tx.Model(&groupModel.GroupModel{}).
		Joins("JOIN group_students gs ON gs.group_id = groups.id").
		Where("gs.user_id = ? AND groups.teacher_id IS NOT NULL", id).
		Pluck("groups.teacher_id", &affected).Error; err != nil {
		return nil, err
	}

	steps := []func() error{
		func() error { return tx.Where("user_id = ?", id).Delete(&paymentModel.PaymentModel{}).Error },
		func() error { return tx.Where("user_id = ?", id).Delete(&attendanceModel.AttendanceModel{}).Error },
		func() error {
			return tx.Model(&attendanceModel.AttendanceModel{}).Where("marked_by_id = ?", id).Update("marked_by_id", nil).Error
		},
		func() error { return tx.Where("user_id = ?", id).Delete(&groupModel.GroupStudentModel{}).Error },
		func() error {
			return tx.Model(&groupModel.GroupModel{}).Where("teacher_id = ?", id).Update("teacher_id", nil).Error
		},
		func() error {
			return tx.Model(&appModel.ApplicationModel{}).Where("user_id = ?", id).Update("user_id", nil).Error
		},
		func() error { return tx.Delete(&userModel.UserModel{}, id).Error },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}
	if err := salary.RecomputeMany(tx, affected...); err != nil {
		return nil, err
	}
	return &u, nil
}

// Snapshot copies a user into an archive row.
func Snapshot(u userModel.UserModel) archiveModel.ArchivedUserModel {
	id := u.ID
	return archiveModel.ArchivedUserModel{
		OriginalID: &id,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Username:   u.Username,
		Password:   u.Password,
		Phone:      u.Phone,
		Address:    u.Address,
		Specialty:  u.Specialty,
		Salary:     u.Salary,
		Percent:    u.Percent,
		CourseID:   u.CourseID,
		RoleID:     u.RoleID,
	}
}
