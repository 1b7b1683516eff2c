package service

import (
	"errors"
	"sort"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"educenter_backend/internals/constants"
	groupModel "educenter_backend/internals/features/catalog/groups/model"
	userModel "educenter_backend/internals/features/users/user/model"
	"educenter_backend/internals/helpers/money"
	"educenter_backend/internals/metrics"
)

type groupLoad struct {
	Price    decimal.Decimal
	Students int64
}

// ComputeTeacherSalary reads only. Non-teachers keep their stored salary.
func ComputeTeacherSalary(db *gorm.DB, teacherID uint) (decimal.Decimal, error) {
	var u userModel.UserModel
	if err := db.Preload("Role").First(&u, teacherID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, fiber.NewError(fiber.StatusNotFound, "Teacher not found")
		}
		return decimal.Zero, err
	}
	if !u.IsRole(constants.RoleTeacher) {
		if u.Salary != nil {
			return *u.Salary, nil
		}
		return decimal.Zero, nil
	}
	if u.Percent == nil || *u.Percent <= 0 {
		return decimal.Zero, nil
	}

	var loads []groupLoad
	err := db.Table("groups AS g").
		Select("g.price AS price, COUNT(gs.user_id) AS students").
		Joins("LEFT JOIN group_students gs ON gs.group_id = g.id").
		Where("g.teacher_id = ? AND g.status = ?", teacherID, groupModel.GroupActive).
		Group("g.id, g.price").
		Scan(&loads).Error
	if err != nil {
		return decimal.Zero, err
	}

	revenue := decimal.Zero
	for _, l := range loads {
		revenue = revenue.Add(money.Cents(l.Price).Mul(decimal.NewFromInt(l.Students)))
	}
	return revenue.Mul(decimal.NewFromFloat(*u.Percent)).Div(decimal.NewFromInt(100)).Round(2), nil
}

// RecomputeTeacherSalary locks the teacher row and persists the computed
// salary. Unknown ids and non-teachers are skipped.
func RecomputeTeacherSalary(tx *gorm.DB, teacherID uint) error {
	return RecomputeMany(tx, teacherID)
}

// RecomputeMany locks every teacher row in ascending id order before writing.
func RecomputeMany(tx *gorm.DB, teacherIDs ...uint) error {
	ids := uniqueSorted(teacherIDs)
	if len(ids) == 0 {
		return nil
	}

	var locked []userModel.UserModel
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&locked).Error; err != nil {
		return err
	}

	teacherRole, err := roleID(tx, constants.RoleTeacher)
	if err != nil {
		return err
	}

	for _, u := range locked {
		if u.RoleID != teacherRole {
			continue
		}
		salary, err := ComputeTeacherSalary(tx, u.ID)
		if err != nil {
			return err
		}
		if err := tx.Model(&userModel.UserModel{}).
			Where("id = ?", u.ID).
			Update("salary", salary).Error; err != nil {
			return err
		}
		metrics.SalaryRecomputations.Inc()
	}
	return nil
}

// TeacherIDs collects the non-nil teacher ids of the given groups.
func TeacherIDs(groups ...groupModel.GroupModel) []uint {
	out := make([]uint, 0, len(groups))
	for _, g := range groups {
		if g.TeacherID != nil {
			out = append(out, *g.TeacherID)
		}
	}
	return out
}

func roleID(db *gorm.DB, r constants.Role) (uint, error) {
	var id uint
	err := db.Table("roles").Select("id").Where("name = ?", string(r)).Scan(&id).Error
	return id, err
}

func uniqueSorted(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
