package route

import (
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"

	"educenter_backend/internals/constants"
	"educenter_backend/internals/features/users/archive/model"
	userModel "educenter_backend/internals/features/users/user/model"
	"educenter_backend/internals/testutil/apptest"
)

func TestArchiveRestoreRoundTrip(t *testing.T) {
	h := apptest.New(t, ArchiveRoutes)
	_, admin := h.As(constants.RoleAdmin)

	created := h.Do(fiber.MethodPost, "/api/archive", map[string]any{
		"firstName": "Old", "lastName": "Student", "phone": "+998909998877",
		"roleId": h.Roles[constants.RoleStudent],
	}, admin).Expect(t, fiber.StatusCreated).Data()
	id := uint(created["id"].(float64))

	list := h.Do(fiber.MethodGet, "/api/archive?firstName=ol", nil, admin).Expect(t, fiber.StatusOK).List()
	if len(list) != 1 {
		t.Fatalf("list = %d, want 1", len(list))
	}

	h.Do(fiber.MethodPut, fmt.Sprintf("/api/archive/restore/%d", id), nil, admin).Expect(t, fiber.StatusOK)

	var n int64
	h.DB.Model(&userModel.UserModel{}).Where("phone = ?", "+998909998877").Count(&n)
	if n != 1 {
		t.Fatalf("restored users = %d", n)
	}
	h.DB.Model(&model.ArchivedUserModel{}).Count(&n)
	if n != 0 {
		t.Fatalf("archive rows left = %d", n)
	}
	h.Do(fiber.MethodGet, fmt.Sprintf("/api/archive/%d", id), nil, admin).Expect(t, fiber.StatusNotFound)
}

func TestRestoreConflictKeepsArchiveRow(t *testing.T) {
	h := apptest.New(t, ArchiveRoutes)
	_, admin := h.As(constants.RoleAdmin)
	live := h.Student("Live")

	a := model.ArchivedUserModel{FirstName: "Dup", LastName: "X", Phone: live.Phone, RoleID: h.Roles[constants.RoleStudent]}
	h.DB.Create(&a)
	h.Do(fiber.MethodPut, fmt.Sprintf("/api/archive/restore/%d", a.ID), nil, admin).Expect(t, fiber.StatusConflict)

	gone := model.ArchivedUserModel{FirstName: "Gone", LastName: "X", Phone: "+998900000111", RoleID: 999}
	h.DB.Create(&gone)
	h.Do(fiber.MethodPut, fmt.Sprintf("/api/archive/restore/%d", gone.ID), nil, admin).Expect(t, fiber.StatusNotFound)

	var n int64
	h.DB.Model(&model.ArchivedUserModel{}).Count(&n)
	if n != 2 {
		t.Fatalf("archive rows = %d, want 2", n)
	}
	h.Do(fiber.MethodDelete, fmt.Sprintf("/api/archive/%d", gone.ID), nil, admin).Expect(t, fiber.StatusOK)
	h.Do(fiber.MethodDelete, fmt.Sprintf("/api/archive/%d", gone.ID), nil, admin).Expect(t, fiber.StatusNotFound)
}
