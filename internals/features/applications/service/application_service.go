package service

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"educenter_backend/internals/features/applications/model"
	courseModel "educenter_backend/internals/features/catalog/courses/model"
	groupModel "educenter_backend/internals/features/catalog/groups/model"
	groupService "educenter_backend/internals/features/catalog/groups/service"
	userService "educenter_backend/internals/features/users/user/service"
)

type Intake struct {
	FirstName string
	LastName  string
	Phone     string
	GroupID   *uint
	CourseID  *uint
}

type Filter struct {
	FirstName string
	LastName  string
	Phone     string
}

type Statistics struct {
	TotalApplications int `json:"totalApplications"`
	NewApplications   int `json:"newApplications"`
	InContact         int `json:"inContact"`
}

type Listing struct {
	Statistics   Statistics               `json:"statistics"`
	Applications []model.ApplicationModel `json:"applications"`
}

func activeGroup(tx *gorm.DB, id uint) (groupModel.GroupModel, error) {
	var g groupModel.GroupModel
	err := tx.Where("id = ? AND status = ?", id, groupModel.GroupActive).First(&g).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return g, fiber.NewError(fiber.StatusNotFound, "Active group not found")
	}
	return g, err
}

// convert links the applicant to a student account, enrolling them when a
// group is given. An existing membership is kept.
func convert(tx *gorm.DB, a *model.ApplicationModel, groupID *uint) error {
	u, err := userService.FindOrCreateStudent(tx, a.FirstName, a.LastName, a.Phone)
	if err != nil {
		return err
	}
	if groupID != nil {
		if err := groupService.AddStudentTx(tx, *groupID, u.ID, true); err != nil {
			return err
		}
		a.GroupID = groupID
	}
	a.UserID = &u.ID
	a.Status = true
	return nil
}

// Create stores a lead. With a group or course the applicant is converted
// in the same transaction.
func Create(ctx context.Context, db *gorm.DB, in Intake) (*model.ApplicationModel, error) {
	a := model.ApplicationModel{
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Phone:     strings.TrimSpace(in.Phone),
	}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.GroupID != nil || in.CourseID != nil {
			if in.GroupID != nil {
				g, err := activeGroup(tx, *in.GroupID)
				if err != nil {
					return err
				}
				a.CourseID = &g.CourseID
			}
			if in.CourseID != nil {
				if err := tx.First(&courseModel.CourseModel{}, *in.CourseID).Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return fiber.NewError(fiber.StatusNotFound, "Course not found")
					}
					return err
				}
				a.CourseID = in.CourseID
			}
			if err := convert(tx, &a, in.GroupID); err != nil {
				return err
			}
		}
		return tx.Create(&a).Error
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func Load(db *gorm.DB, id uint) (*model.ApplicationModel, error) {
	var a model.ApplicationModel
	if err := db.Preload("Group").First(&a, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Application not found")
		}
		return nil, err
	}
	return &a, nil
}

func lock(tx *gorm.DB, id uint) (*model.ApplicationModel, error) {
	return Load(tx.Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

// List returns matching applications newest first. Statistics cover the
// filtered set.
func List(db *gorm.DB, f Filter) (Listing, error) {
	q := db.Model(&model.ApplicationModel{}).Preload("Group")
	like := func(col, v string) {
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
			q = q.Where("LOWER("+col+") LIKE ?", "%"+v+"%")
		}
	}
	like("first_name", f.FirstName)
	like("last_name", f.LastName)
	like("phone", f.Phone)

	out := Listing{Applications: make([]model.ApplicationModel, 0)}
	if err := q.Order("created_at DESC, id DESC").Find(&out.Applications).Error; err != nil {
		return out, err
	}
	out.Statistics.TotalApplications = len(out.Applications)
	for _, a := range out.Applications {
		if a.Status {
			out.Statistics.InContact++
		} else {
			out.Statistics.NewApplications++
		}
	}
	return out, nil
}

type Patch struct {
	FirstName   *string
	LastName    *string
	Phone       *string
	Status      *bool
	IsContacted *bool
}

func Update(ctx context.Context, db *gorm.DB, id uint, p Patch) (*model.ApplicationModel, error) {
	var out *model.ApplicationModel
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		a, err := lock(tx, id)
		if err != nil {
			return err
		}
		if p.FirstName != nil {
			a.FirstName = strings.TrimSpace(*p.FirstName)
		}
		if p.LastName != nil {
			a.LastName = strings.TrimSpace(*p.LastName)
		}
		if p.Phone != nil {
			a.Phone = strings.TrimSpace(*p.Phone)
		}
		if p.Status != nil {
			a.Status = *p.Status
		}
		if p.IsContacted != nil {
			a.IsContacted = *p.IsContacted
		}
		if err := tx.Select("first_name", "last_name", "phone", "status", "is_contacted").Save(a).Error; err != nil {
			return err
		}
		out = a
		return nil
	})
	return out, err
}

func Delete(ctx context.Context, db *gorm.DB, id uint) error {
	res := db.WithContext(ctx).Delete(&model.ApplicationModel{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "Application not found")
	}
	return nil
}

// AssignGroup converts an existing lead into a student of an active group.
func AssignGroup(ctx context.Context, db *gorm.DB, id, groupID uint) (*model.ApplicationModel, error) {
	var out *model.ApplicationModel
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		a, err := lock(tx, id)
		if err != nil {
			return err
		}
		if _, err := activeGroup(tx, groupID); err != nil {
			return err
		}
		if err := convert(tx, a, &groupID); err != nil {
			return err
		}
		if err := tx.Select("user_id", "group_id", "status").Save(a).Error; err != nil {
			return err
		}
		out, err = Load(tx, id)
		return err
	})
	return out, err
}

// RemoveGroup unlinks the group. The roster is left as is.
func RemoveGroup(ctx context.Context, db *gorm.DB, id uint) (*model.ApplicationModel, error) {
	var out *model.ApplicationModel
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		a, err := lock(tx, id)
		if err != nil {
			return err
		}
		if err := tx.Model(a).Update("group_id", nil).Error; err != nil {
			return err
		}
		a.GroupID, a.Group = nil, nil
		out = a
		return nil
	})
	return out, err
}

func MarkContacted(ctx context.Context, db *gorm.DB, id uint) (*model.ApplicationModel, error) {
	var out *model.ApplicationModel
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		a, err := lock(tx, id)
		if err != nil {
			return err
		}
		a.IsContacted, a.Status = true, true
		if err := tx.Select("is_contacted", "status").Save(a).Error; err != nil {
			return err
		}
		out = a
		return nil
	})
	return out, err
}
