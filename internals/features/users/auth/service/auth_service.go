package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"

	authHelper "educenter_backend/internals/features/users/auth/helper"
	authRepo "educenter_backend/internals/features/users/auth/repository"
	userModel "educenter_backend/internals/features/users/user/model"
)

const fallbackBlacklistTTL = 2 * time.Minute

var errBadCredentials = fiber.NewError(fiber.StatusUnauthorized, "Invalid username or password")

// Authenticate never tells apart an unknown user from a wrong password.
func Authenticate(ctx context.Context, db *gorm.DB, username, password string) (*userModel.UserModel, error) {
	username = strings.TrimSpace(username)
	user, err := authRepo.FindUserByUsername(db.WithContext(ctx), username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errBadCredentials
		}
		return nil, err
	}
	if user.Password == nil || *user.Password == "" {
		return nil, errBadCredentials
	}
	if err := authHelper.CheckPasswordHash(*user.Password, password); err != nil {
		return nil, errBadCredentials
	}
	return user, nil
}

func buildAccessClaims(user userModel.UserModel, now time.Time, ttl time.Duration) jwt.MapClaims {
	username := ""
	if user.Username != nil {
		username = *user.Username
	}
	return jwt.MapClaims{
		"id":       user.ID,
		"username": username,
		"role":     string(user.RoleName()),
		"iat":      now.Unix(),
		"exp":      now.Add(ttl).Unix(),
	}
}

// IssueAccessToken signs an HS256 access token. user.Role must be loaded.
func IssueAccessToken(user userModel.UserModel, secret string, ttl time.Duration, now time.Time) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, buildAccessClaims(user, now, ttl)).
		SignedString([]byte(secret))
}

// ResolveBlacklistTTL keeps a revoked token listed until shortly after it
// would have expired anyway.
func ResolveBlacklistTTL(accessToken, secret string) time.Duration {
	if secret == "" || accessToken == "" {
		return fallbackBlacklistTTL
	}
	tok, err := jwt.Parse(accessToken, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return fallbackBlacklistTTL
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return fallbackBlacklistTTL
	}
	exp, ok := claims["exp"].(float64)
	if !ok {
		return fallbackBlacklistTTL
	}
	if until := time.Until(time.Unix(int64(exp), 0)); until > 0 {
		return until + time.Minute
	}
	return time.Minute
}
