package route

import (
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"

	"educenter_backend/internals/constants"
	"educenter_backend/internals/testutil/apptest"
)

func TestRoleRoutesGuard(t *testing.T) {
	h := apptest.New(t, RoleRoutes)
	_, student := h.As(constants.RoleStudent)

	h.Do(fiber.MethodGet, "/api/roles", nil, "").Expect(t, fiber.StatusUnauthorized)
	h.Do(fiber.MethodGet, "/api/roles", nil, student).Expect(t, fiber.StatusForbidden)
}

func TestCreateRoleRules(t *testing.T) {
	h := apptest.New(t, RoleRoutes)
	_, admin := h.As(constants.RoleAdmin)
	_, super := h.As(constants.RoleSuperAdmin)

	h.Do(fiber.MethodPost, "/api/roles", map[string]string{"name": "janitor"}, admin).Expect(t, fiber.StatusBadRequest)
	h.Do(fiber.MethodPost, "/api/roles", map[string]string{"name": "teacher"}, admin).Expect(t, fiber.StatusConflict)
	h.Do(fiber.MethodPost, "/api/roles", map[string]string{"name": "superAdmin"}, admin).Expect(t, fiber.StatusForbidden)
	h.Do(fiber.MethodPost, "/api/roles", map[string]string{}, super).Expect(t, fiber.StatusBadRequest)

	list := h.Do(fiber.MethodGet, "/api/roles", nil, admin).Expect(t, fiber.StatusOK).List()
	if len(list) != 4 {
		t.Fatalf("roles = %d, want 4", len(list))
	}
}

func TestDeleteRoleInUse(t *testing.T) {
	h := apptest.New(t, RoleRoutes)
	_, super := h.As(constants.RoleSuperAdmin)
	h.Student("A")

	h.Do(fiber.MethodDelete, "/api/roles/999", nil, super).Expect(t, fiber.StatusNotFound)
	path := "/api/roles/" + itoa(h.Roles[constants.RoleStudent])
	h.Do(fiber.MethodDelete, path, nil, super).Expect(t, fiber.StatusConflict)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
