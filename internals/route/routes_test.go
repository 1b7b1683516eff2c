package routes

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	"educenter_backend/internals/constants"
	budgetService "educenter_backend/internals/features/finance/budget/service"
	authRepo "educenter_backend/internals/features/users/auth/repository"
	"educenter_backend/internals/middlewares"
	"educenter_backend/internals/testutil/memdb"
)

const secret = "routes-test"

func setup(t *testing.T) (*fiber.App, *memdb.Fixture) {
	f := memdb.New(t)
	app := fiber.New(fiber.Config{ErrorHandler: middlewares.ErrorHandler})
	SetupRoutes(app, f.DB, Options{JWTSecret: secret, AccessTTL: time.Hour, Env: "test", Rates: budgetService.FixedRate(0.01)})
	return app, f
}

func sign(t *testing.T, id uint, role constants.Role) string {
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id": id, "role": string(role), "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(secret))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func get(t *testing.T, app *fiber.App, path, token string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(b)
}

func TestHealthAndMetrics(t *testing.T) {
	app, _ := setup(t)
	if code, body := get(t, app, "/health", ""); code != fiber.StatusOK || !strings.Contains(body, `"database":"Connected"`) {
		t.Fatalf("health = %d %s", code, body)
	}
	if code, body := get(t, app, "/metrics", ""); code != fiber.StatusOK || !strings.Contains(body, "educenter_db_ping_seconds") {
		t.Fatalf("metrics = %d", code)
	}
}

func TestDashboardMountedBeforeUserByID(t *testing.T) {
	app, f := setup(t)
	admin := f.User(constants.RoleAdmin, "Admin")
	if code, body := get(t, app, "/api/users/dashboard", sign(t, admin.ID, constants.RoleAdmin)); code != fiber.StatusOK ||
		!strings.Contains(body, "monthlyRevenue") {
		t.Fatalf("dashboard = %d %s", code, body)
	}
}

func TestRevokedTokenIsRejected(t *testing.T) {
	app, f := setup(t)
	admin := f.User(constants.RoleAdmin, "Admin")
	tok := sign(t, admin.ID, constants.RoleAdmin)
	if code, _ := get(t, app, "/api/courses", tok); code != fiber.StatusOK {
		t.Fatalf("courses = %d", code)
	}
	if err := authRepo.BlacklistToken(f.DB, tok, time.Hour); err != nil {
		t.Fatal(err)
	}
	if code, _ := get(t, app, "/api/courses", tok); code != fiber.StatusUnauthorized {
		t.Fatalf("revoked = %d", code)
	}
}
