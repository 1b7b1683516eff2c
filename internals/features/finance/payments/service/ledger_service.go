package service

import (
	"context"
	"errors"
	"regexp"
	"sort"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"educenter_backend/internals/constants"
	courseModel "educenter_backend/internals/features/catalog/courses/model"
	groupModel "educenter_backend/internals/features/catalog/groups/model"
	"educenter_backend/internals/features/finance/payments/model"
	userModel "educenter_backend/internals/features/users/user/model"
	"educenter_backend/internals/helpers/money"
	"educenter_backend/internals/metrics"
)

var monthForPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

type PaymentInput struct {
	UserID      uint
	GroupID     uint
	CourseID    *uint
	Amount      decimal.Decimal
	MonthFor    string
	PaymentType model.PaymentType
}

// PaymentPatch carries the fields an update sets; nil keeps the stored
// value. The course stays put on a group change unless one is given.
type PaymentPatch struct {
	UserID      *uint
	GroupID     *uint
	CourseID    *uint
	Amount      *decimal.Decimal
	MonthFor    *string
	PaymentType *model.PaymentType
}

func (p PaymentPatch) merge(existing model.PaymentModel) PaymentInput {
	in := PaymentInput{
		UserID:      existing.UserID,
		GroupID:     existing.GroupID,
		CourseID:    existing.CourseID,
		Amount:      existing.Amount,
		MonthFor:    existing.MonthFor,
		PaymentType: existing.PaymentType,
	}
	if p.UserID != nil {
		in.UserID = *p.UserID
	}
	if p.GroupID != nil {
		in.GroupID = *p.GroupID
	}
	if p.CourseID != nil {
		in.CourseID = p.CourseID
	}
	if p.Amount != nil {
		in.Amount = *p.Amount
	}
	if p.MonthFor != nil {
		in.MonthFor = *p.MonthFor
	}
	if p.PaymentType != nil {
		in.PaymentType = *p.PaymentType
	}
	return in
}

// ledgerKey identifies the rows whose amounts together settle one month.
type ledgerKey struct {
	UserID   uint
	GroupID  uint
	MonthFor string
}

// Record inserts a payment. The student row lock serializes concurrent
// submissions for the same student; paid flips on every row of the
// (user, group, month) set once the cumulative amount reaches the price.
func Record(ctx context.Context, db *gorm.DB, in PaymentInput) (*model.PaymentModel, error) {
	var out model.PaymentModel
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		group, courseID, err := validate(tx, in)
		if err != nil {
			return err
		}
		if err := lockStudents(tx, in.UserID); err != nil {
			return err
		}
		key := ledgerKey{in.UserID, in.GroupID, in.MonthFor}
		before, err := lockedSum(tx, key)
		if err != nil {
			return err
		}

		out = model.PaymentModel{
			UserID:      in.UserID,
			GroupID:     in.GroupID,
			CourseID:    &courseID,
			Amount:      money.Cents(in.Amount),
			MonthFor:    in.MonthFor,
			PaymentType: in.PaymentType,
			Paid:        before.Add(money.Cents(in.Amount)).GreaterThanOrEqual(group.Price),
		}
		if err := tx.Create(&out).Error; err != nil {
			return err
		}
		if out.Paid {
			return setPaid(tx, key, true)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.PaymentsRecorded.WithLabelValues(string(out.PaymentType)).Inc()
	return &out, nil
}

// Update applies patch to a payment and reconciles both the old and the
// new set.
func Update(ctx context.Context, db *gorm.DB, id uint, patch PaymentPatch) (*model.PaymentModel, error) {
	var out model.PaymentModel
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := lockPayment(tx, id)
		if err != nil {
			return err
		}
		in := patch.merge(*existing)
		_, courseID, err := validate(tx, in)
		if err != nil {
			return err
		}
		if err := lockStudents(tx, existing.UserID, in.UserID); err != nil {
			return err
		}

		oldKey := ledgerKey{existing.UserID, existing.GroupID, existing.MonthFor}
		newKey := ledgerKey{in.UserID, in.GroupID, in.MonthFor}

		existing.UserID = in.UserID
		existing.GroupID = in.GroupID
		existing.CourseID = &courseID
		existing.Amount = money.Cents(in.Amount)
		existing.MonthFor = in.MonthFor
		existing.PaymentType = in.PaymentType
		if err := tx.Select("user_id", "group_id", "course_id", "amount", "month_for", "payment_type").
			Updates(existing).Error; err != nil {
			return err
		}

		if oldKey != newKey {
			if err := Reconcile(tx, oldKey.UserID, oldKey.GroupID, oldKey.MonthFor); err != nil {
				return err
			}
		}
		if err := Reconcile(tx, newKey.UserID, newKey.GroupID, newKey.MonthFor); err != nil {
			return err
		}
		return tx.First(&out, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a payment and reconciles what is left of its set.
func Delete(ctx context.Context, db *gorm.DB, id uint) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := lockPayment(tx, id)
		if err != nil {
			return err
		}
		if err := lockStudents(tx, existing.UserID); err != nil {
			return err
		}
		if err := tx.Delete(&model.PaymentModel{}, id).Error; err != nil {
			return err
		}
		return Reconcile(tx, existing.UserID, existing.GroupID, existing.MonthFor)
	})
}

// Reconcile sets paid := Σ amount >= price on every row of the set.
// A set whose group is gone is left untouched.
func Reconcile(tx *gorm.DB, userID, groupID uint, monthFor string) error {
	var g groupModel.GroupModel
	if err := tx.First(&g, groupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	key := ledgerKey{userID, groupID, monthFor}
	sum, err := lockedSum(tx, key)
	if err != nil {
		return err
	}
	return setPaid(tx, key, sum.GreaterThanOrEqual(g.Price))
}

func ValidMonthFor(s string) bool {
	return monthForPattern.MatchString(s)
}

func validate(tx *gorm.DB, in PaymentInput) (groupModel.GroupModel, uint, error) {
	var g groupModel.GroupModel
	if !ValidMonthFor(in.MonthFor) {
		return g, 0, fiber.NewError(fiber.StatusBadRequest, "monthFor must be YYYY-MM")
	}
	if in.Amount.IsNegative() {
		return g, 0, fiber.NewError(fiber.StatusBadRequest, "amount must not be negative")
	}
	if !in.PaymentType.Valid() {
		return g, 0, fiber.NewError(fiber.StatusBadRequest, "paymentType must be one of: click naxt percheslinei")
	}

	var u userModel.UserModel
	if err := tx.Preload("Role").First(&u, in.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return g, 0, fiber.NewError(fiber.StatusNotFound, "Student not found")
		}
		return g, 0, err
	}
	if !u.IsRole(constants.RoleStudent) {
		return g, 0, fiber.NewError(fiber.StatusNotFound, "Student not found")
	}

	if err := tx.First(&g, in.GroupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return g, 0, fiber.NewError(fiber.StatusNotFound, "Group not found")
		}
		return g, 0, err
	}
	if !g.IsActive() {
		return g, 0, fiber.NewError(fiber.StatusNotFound, "Active group not found")
	}

	courseID := g.CourseID
	if in.CourseID != nil && *in.CourseID != 0 {
		courseID = *in.CourseID
	}
	var n int64
	if err := tx.Model(&courseModel.CourseModel{}).Where("id = ?", courseID).Count(&n).Error; err != nil {
		return g, 0, err
	}
	if n == 0 {
		return g, 0, fiber.NewError(fiber.StatusNotFound, "Course not found")
	}
	return g, courseID, nil
}

func lockPayment(tx *gorm.DB, id uint) (*model.PaymentModel, error) {
	var p model.PaymentModel
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Payment not found")
		}
		return nil, err
	}
	return &p, nil
}

// lockStudents locks user rows ascending so two ledgers never deadlock.
func lockStudents(tx *gorm.DB, ids ...uint) error {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	var rows []userModel.UserModel
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&rows).Error
}

// lockedSum locks the set and adds its amounts.
func lockedSum(tx *gorm.DB, key ledgerKey) (decimal.Decimal, error) {
	var rows []model.PaymentModel
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND group_id = ? AND month_for = ?", key.UserID, key.GroupID, key.MonthFor).
		Find(&rows).Error; err != nil {
		return decimal.Zero, err
	}
	amounts := make([]decimal.Decimal, 0, len(rows))
	for _, r := range rows {
		amounts = append(amounts, r.Amount)
	}
	return money.Sum(amounts...), nil
}

func setPaid(tx *gorm.DB, key ledgerKey, paid bool) error {
	return tx.Model(&model.PaymentModel{}).
		Where("user_id = ? AND group_id = ? AND month_for = ?", key.UserID, key.GroupID, key.MonthFor).
		Update("paid", paid).Error
}
