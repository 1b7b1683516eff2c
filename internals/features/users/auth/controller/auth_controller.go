package controller

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	authRepo "educenter_backend/internals/features/users/auth/repository"
	"educenter_backend/internals/features/users/auth/service"
	userDTO "educenter_backend/internals/features/users/user/dto"
	helper "educenter_backend/internals/helpers"
)

var validateAuth = validator.New()

type AuthController struct {
	DB        *gorm.DB
	Secret    string
	AccessTTL time.Duration
}

func NewAuthController(db *gorm.DB, secret string, accessTTL time.Duration) *AuthController {
	return &AuthController{DB: db, Secret: secret, AccessTTL: accessTTL}
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// POST /api/auth/login
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var in LoginRequest
	if err := c.BodyParser(&in); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validateAuth.Struct(in); err != nil {
		return helper.ValidationError(c, err)
	}

	user, err := service.Authenticate(c.UserContext(), ac.DB, in.Username, in.Password)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	token, err := service.IssueAccessToken(*user, ac.Secret, ac.AccessTTL, time.Now())
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to issue token")
	}

	return helper.JsonOK(c, "Login successful", fiber.Map{
		"accessToken": token,
		"user":        userDTO.FromModel(*user),
	})
}

// POST /api/auth/logout
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	raw := helper.GetRawAccessToken(c)
	if raw != "" {
		ttl := service.ResolveBlacklistTTL(raw, ac.Secret)
		if err := authRepo.BlacklistToken(ac.DB.WithContext(c.UserContext()), raw, ttl); err != nil {
			zap.S().Warnw("failed to blacklist token", "err", err)
			return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to logout")
		}
	}
	return helper.JsonOK(c, "Logout successful", nil)
}
