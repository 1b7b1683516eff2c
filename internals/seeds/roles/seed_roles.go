package roles

import (
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"educenter_backend/internals/constants"
	roleModel "educenter_backend/internals/features/users/role/model"
)

// SeedRoles ensures the four fixed roles exist and returns their ids.
func SeedRoles(db *gorm.DB) (map[constants.Role]uint, error) {
	ids := make(map[constants.Role]uint, len(constants.AllRoles))
	for _, r := range constants.AllRoles {
		row := roleModel.RoleModel{Name: string(r)}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
			return nil, err
		}
		var existing roleModel.RoleModel
		if err := db.Where("name = ?", string(r)).First(&existing).Error; err != nil {
			return nil, err
		}
		ids[r] = existing.ID
	}
	zap.S().Debugw("roles seeded", "count", len(ids))
	return ids, nil
}
