package repository

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	authModel "educenter_backend/internals/features/users/auth/model"
	userModel "educenter_backend/internals/features/users/user/model"
)

/* ====================== USER ====================== */

func FindUserByUsername(db *gorm.DB, username string) (*userModel.UserModel, error) {
	var user userModel.UserModel
	if err := db.Preload("Role").Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

/* ====================== BLACKLIST TOKEN ====================== */

// BlacklistToken is idempotent for an already revoked token.
func BlacklistToken(db *gorm.DB, token string, ttl time.Duration) error {
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&authModel.TokenBlacklist{
		Token:     token,
		ExpiredAt: time.Now().UTC().Add(ttl),
	}).Error
}

func IsBlacklisted(db *gorm.DB, token string) (bool, error) {
	var n int64
	err := db.Model(&authModel.TokenBlacklist{}).
		Where("token = ? AND expired_at > ?", token, time.Now().UTC()).
		Count(&n).Error
	return n > 0, err
}

func CleanupExpiredBlacklist(db *gorm.DB) (int64, error) {
	res := db.Exec(`DELETE FROM token_blacklist WHERE expired_at <= ?`, time.Now().UTC())
	return res.RowsAffected, res.Error
}
