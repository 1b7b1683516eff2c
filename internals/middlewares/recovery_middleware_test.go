package middlewares

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	helper "educenter_backend/internals/helpers"
)

func TestPanicBecomesJSONErrorWithRequestID(t *testing.T) {
	app := fiber.New()
	app.Use(RecoveryMiddleware())
	app.Use(RequestContext(time.Second))
	app.Get("/boom", func(c *fiber.Ctx) error { panic("ledger exploded") })

	req := httptest.NewRequest(fiber.MethodGet, "/boom", nil)
	req.Header.Set("X-Request-ID", "req-panic")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
	if got := resp.Header.Get("X-Request-ID"); got != "req-panic" {
		t.Fatalf("X-Request-ID = %q", got)
	}
	var body helper.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Success || body.ErrorCode != "INTERNAL_ERROR" {
		t.Fatalf("body = %+v", body)
	}
}
