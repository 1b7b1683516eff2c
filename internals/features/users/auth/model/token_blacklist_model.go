package model

import "time"

type TokenBlacklist struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Token     string    `gorm:"type:text;not null;uniqueIndex" json:"token"`
	ExpiredAt time.Time `gorm:"not null;index" json:"expired_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName maps to the token_blacklist table.
func (TokenBlacklist) TableName() string {
	return "token_blacklist"
}
