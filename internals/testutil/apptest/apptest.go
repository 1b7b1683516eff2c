// Package apptest mounts feature routes on a fiber app backed by memdb.
package apptest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"

	"educenter_backend/internals/constants"
	userModel "educenter_backend/internals/features/users/user/model"
	"educenter_backend/internals/middlewares"
	authMiddleware "educenter_backend/internals/middlewares/auth"
	"educenter_backend/internals/testutil/memdb"
)

const Secret = "apptest-secret"

type Mount func(api fiber.Router, db *gorm.DB, authMw fiber.Handler)

type Harness struct {
	*memdb.Fixture
	App *fiber.App
	t   testing.TB
}

type Response struct {
	Status int
	Body   map[string]any
	Raw    []byte
}

func New(t testing.TB, mounts ...Mount) *Harness {
	t.Helper()
	f := memdb.New(t)
	app := fiber.New(fiber.Config{ErrorHandler: middlewares.ErrorHandler})
	app.Use(middlewares.RequestContext(10 * time.Second))
	authMw := authMiddleware.AuthJWT(authMiddleware.AuthJWTOpts{Secret: Secret})
	api := app.Group("/api")
	for _, m := range mounts {
		m(api, f.DB, authMw)
	}
	return &Harness{Fixture: f, App: app, t: t}
}

// Token signs an access token for u with the given role.
func (h *Harness) Token(u userModel.UserModel, role constants.Role) string {
	h.t.Helper()
	username := ""
	if u.Username != nil {
		username = *u.Username
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":       u.ID,
		"username": username,
		"role":     string(role),
		"iat":      time.Now().Unix(),
		"exp":      time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(Secret))
	if err != nil {
		h.t.Fatalf("sign: %v", err)
	}
	return s
}

// As creates a user with role and returns it with a token.
func (h *Harness) As(role constants.Role) (userModel.UserModel, string) {
	u := h.User(role, string(role))
	return u, h.Token(u, role)
}

func (h *Harness) Do(method, path string, body any, token string) Response {
	h.t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			h.t.Fatalf("marshal: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := h.App.Test(req, -1)
	if err != nil {
		h.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	out := Response{Status: resp.StatusCode, Raw: raw}
	if resp.Header.Get("Content-Type") != "" && json.Valid(raw) {
		_ = json.Unmarshal(raw, &out.Body)
	}
	return out
}

// Expect fails the test unless the response has the given status.
func (r Response) Expect(t testing.TB, status int) Response {
	t.Helper()
	if r.Status != status {
		t.Fatalf("status = %d, want %d; body = %s", r.Status, status, r.Raw)
	}
	return r
}

// Data returns body.data as a map.
func (r Response) Data() map[string]any {
	m, _ := r.Body["data"].(map[string]any)
	return m
}

// List returns body.data as a slice.
func (r Response) List() []any {
	l, _ := r.Body["data"].([]any)
	return l
}
