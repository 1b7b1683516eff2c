package route

import (
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"educenter_backend/internals/constants"
	groupModel "educenter_backend/internals/features/catalog/groups/model"
	paymentModel "educenter_backend/internals/features/finance/payments/model"
	userModel "educenter_backend/internals/features/users/user/model"
	"educenter_backend/internals/testutil/apptest"
)

func TestCourseCRUD(t *testing.T) {
	h := apptest.New(t, CourseRoutes)
	_, admin := h.As(constants.RoleAdmin)
	_, student := h.As(constants.RoleStudent)

	created := h.Do(fiber.MethodPost, "/api/courses", map[string]any{"name": "English"}, admin).
		Expect(t, fiber.StatusCreated).Data()
	id := uint(created["id"].(float64))

	h.Do(fiber.MethodPost, "/api/courses", map[string]any{"name": "English"}, admin).Expect(t, fiber.StatusConflict)
	h.Do(fiber.MethodPost, "/api/courses", map[string]any{"name": "Math"}, student).Expect(t, fiber.StatusForbidden)

	other := h.Course("Math")
	h.Do(fiber.MethodPut, fmt.Sprintf("/api/courses/%d", id), map[string]any{"name": other.Name}, admin).
		Expect(t, fiber.StatusConflict)
	upd := h.Do(fiber.MethodPut, fmt.Sprintf("/api/courses/%d", id), map[string]any{"description": "Beginner"}, admin).
		Expect(t, fiber.StatusOK).Data()
	if upd["description"] != "Beginner" || upd["name"] != "English" {
		t.Fatalf("updated = %v", upd)
	}

	h.Do(fiber.MethodGet, "/api/courses/999", nil, student).Expect(t, fiber.StatusNotFound)
}

func TestListCoursesStats(t *testing.T) {
	h := apptest.New(t, CourseRoutes)
	_, admin := h.As(constants.RoleAdmin)
	course := h.Course("English")
	h.Course("Math")
	g := h.Group("E-1", course.ID, nil, 1000)
	h.Enroll(g.ID, h.Student("A").ID, h.Student("B").ID)

	body := h.Do(fiber.MethodGet, "/api/courses", nil, admin).Expect(t, fiber.StatusOK).Data()
	stats := body["stats"].(map[string]any)
	if stats["totalCourses"].(float64) != 2 || stats["totalStudents"].(float64) != 2 {
		t.Fatalf("stats = %v", stats)
	}
	items := body["data"].([]any)
	first := items[0].(map[string]any)
	if first["totalGroups"].(float64) != 1 || first["totalStudents"].(float64) != 2 {
		t.Fatalf("first = %v", first)
	}

	filtered := h.Do(fiber.MethodGet, "/api/courses?name=mat", nil, admin).Expect(t, fiber.StatusOK).Data()
	if n := len(filtered["data"].([]any)); n != 1 {
		t.Fatalf("filtered = %d, want 1", n)
	}
}

func TestDeleteCourseCascades(t *testing.T) {
	h := apptest.New(t, CourseRoutes)
	_, admin := h.As(constants.RoleAdmin)
	teacher := h.Teacher("T", 10)
	course := h.Course("English")
	g := h.Group("E-1", course.ID, &teacher.ID, 50000)
	s := h.Student("A")
	h.Enroll(g.ID, s.ID)
	h.DB.Create(&paymentModel.PaymentModel{UserID: s.ID, GroupID: g.ID, Amount: decimal.NewFromInt(1), MonthFor: "2025-01", PaymentType: paymentModel.PaymentCash})
	salary := 5000.0
	h.DB.Model(&userModel.UserModel{}).Where("id = ?", teacher.ID).Update("salary", salary)

	h.Do(fiber.MethodDelete, fmt.Sprintf("/api/courses/%d", course.ID), nil, admin).Expect(t, fiber.StatusOK)

	var n int64
	h.DB.Model(&groupModel.GroupModel{}).Count(&n)
	if n != 0 {
		t.Fatalf("groups left = %d", n)
	}
	h.DB.Model(&paymentModel.PaymentModel{}).Count(&n)
	if n != 0 {
		t.Fatalf("payments left = %d", n)
	}
	var tt userModel.UserModel
	h.DB.First(&tt, teacher.ID)
	if tt.Salary == nil || !tt.Salary.IsZero() {
		t.Fatalf("teacher salary = %v, want 0", tt.Salary)
	}
}
