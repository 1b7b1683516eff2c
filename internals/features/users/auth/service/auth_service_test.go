package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"educenter_backend/internals/constants"
	authHelper "educenter_backend/internals/features/users/auth/helper"
	authRepo "educenter_backend/internals/features/users/auth/repository"
	userModel "educenter_backend/internals/features/users/user/model"
	"educenter_backend/internals/testutil/memdb"
)

func TestAuthenticate(t *testing.T) {
	f := memdb.New(t)
	hash, err := authHelper.HashPassword("s3cret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u := f.User(constants.RoleAdmin, "Admin", func(u *userModel.UserModel) { u.Password = &hash })
	noPass := f.User(constants.RoleStudent, "NoPass")
	ctx := context.Background()

	got, err := Authenticate(ctx, f.DB, *u.Username, "s3cret")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if got.RoleName() != constants.RoleAdmin {
		t.Fatalf("role = %q, want admin", got.RoleName())
	}

	for name, tc := range map[string][2]string{
		"bad password": {*u.Username, "nope"},
		"unknown user": {"ghost", "s3cret"},
		"no password":  {*noPass.Username, ""},
	} {
		if _, err := Authenticate(ctx, f.DB, tc[0], tc[1]); err != errBadCredentials {
			t.Errorf("%s: err = %v, want bad credentials", name, err)
		}
	}
}

func TestIssueAccessTokenClaims(t *testing.T) {
	f := memdb.New(t)
	u := f.User(constants.RoleTeacher, "T")
	if err := f.DB.Preload("Role").First(&u, u.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}

	tok, err := IssueAccessToken(u, "k", time.Hour, time.Now())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	parsed, err := jwt.Parse(tok, func(*jwt.Token) (any, error) { return []byte("k"), nil })
	if err != nil || !parsed.Valid {
		t.Fatalf("parse: %v", err)
	}
	claims := parsed.Claims.(jwt.MapClaims)
	if claims["role"] != "teacher" || claims["username"] != *u.Username {
		t.Fatalf("claims = %v", claims)
	}
	if id, _ := claims["id"].(float64); uint(id) != u.ID {
		t.Fatalf("id claim = %v", claims["id"])
	}

	ttl := ResolveBlacklistTTL(tok, "k")
	if ttl < time.Hour || ttl > time.Hour+2*time.Minute {
		t.Fatalf("ttl = %v", ttl)
	}
	if ResolveBlacklistTTL("garbage", "k") != fallbackBlacklistTTL {
		t.Fatal("garbage token should use fallback ttl")
	}
}

func TestBlacklistLifecycle(t *testing.T) {
	f := memdb.New(t)
	if err := authRepo.BlacklistToken(f.DB, "tok", time.Hour); err != nil {
		t.Fatalf("blacklist: %v", err)
	}
	if err := authRepo.BlacklistToken(f.DB, "tok", time.Hour); err != nil {
		t.Fatalf("blacklist twice: %v", err)
	}
	if ok, _ := authRepo.IsBlacklisted(f.DB, "tok"); !ok {
		t.Fatal("token should be blacklisted")
	}
	if err := authRepo.BlacklistToken(f.DB, "old", -time.Minute); err != nil {
		t.Fatalf("blacklist: %v", err)
	}
	n, err := authRepo.CleanupExpiredBlacklist(f.DB)
	if err != nil || n != 1 {
		t.Fatalf("cleanup = %d, %v; want 1", n, err)
	}
}
