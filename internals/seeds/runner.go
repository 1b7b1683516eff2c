package seeds

import (
	"fmt"

	"gorm.io/gorm"

	"educenter_backend/internals/configs"
	"educenter_backend/internals/constants"
	roleSeed "educenter_backend/internals/seeds/roles"
	userSeed "educenter_backend/internals/seeds/users/auth"
)

func RunAllSeeds(db *gorm.DB, cfg *configs.Config) error {
	//* Roles
	ids, err := roleSeed.SeedRoles(db)
	if err != nil {
		return fmt.Errorf("seed roles: %w", err)
	}

	//* Bootstrap superAdmin
	if err := userSeed.SeedSuperAdmin(db, ids[constants.RoleSuperAdmin], cfg.SuperAdminUsername, cfg.SuperAdminPassword); err != nil {
		return fmt.Errorf("seed superAdmin: %w", err)
	}
	return nil
}
