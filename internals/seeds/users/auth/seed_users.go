package user

import (
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	authHelper "educenter_backend/internals/features/users/auth/helper"
	userModel "educenter_backend/internals/features/users/user/model"
)

// SeedSuperAdmin creates the bootstrap superAdmin once. It is skipped when
// either credential is empty or the username is already taken.
func SeedSuperAdmin(db *gorm.DB, roleID uint, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil
	}

	var existing userModel.UserModel
	err := db.Where("username = ?", username).First(&existing).Error
	if err == nil {
		zap.S().Debugw("superAdmin already present", "username", username)
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := authHelper.HashPassword(password)
	if err != nil {
		return err
	}
	u := userModel.UserModel{
		FirstName: "Super",
		LastName:  "Admin",
		Username:  &username,
		Password:  &hashed,
		Phone:     "+000000000",
		RoleID:    roleID,
	}
	if err := db.Create(&u).Error; err != nil {
		return err
	}
	zap.S().Infow("superAdmin seeded", "username", username)
	return nil
}
