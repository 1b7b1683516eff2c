package route

import (
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"

	"educenter_backend/internals/constants"
	userModel "educenter_backend/internals/features/users/user/model"
	"educenter_backend/internals/testutil/apptest"
)

func salaryOf(t *testing.T, h *apptest.Harness, id uint) float64 {
	t.Helper()
	var u userModel.UserModel
	if err := h.DB.First(&u, id).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if u.Salary == nil {
		return 0
	}
	return u.Salary.InexactFloat64()
}

func TestCreateGroupValidatesAndRecomputes(t *testing.T) {
	h := apptest.New(t, GroupRoutes)
	_, admin := h.As(constants.RoleAdmin)
	teacher := h.Teacher("Aziz", 10)
	course := h.Course("English")
	s1, s2 := h.Student("A"), h.Student("B")
	notStudent := h.Teacher("Other", 5)

	body := map[string]any{
		"name":       "E-1",
		"courseId":   course.ID,
		"teacherId":  teacher.ID,
		"price":      50000,
		"startTime":  "14:00",
		"endTime":    "16:00",
		"daysOfWeek": []string{"monday", "Wednesday"},
		"userIds":    []uint{s1.ID, s2.ID, notStudent.ID},
	}
	created := h.Do(fiber.MethodPost, "/api/groups", body, admin).Expect(t, fiber.StatusCreated).Data()
	if created["studentCount"].(float64) != 2 {
		t.Fatalf("studentCount = %v, want 2", created["studentCount"])
	}
	days := created["daysOfWeek"].([]any)
	if days[0] != "Monday" {
		t.Fatalf("days = %v", days)
	}
	if got := salaryOf(t, h, teacher.ID); got != 10000 {
		t.Fatalf("salary = %v, want 10000", got)
	}

	h.Do(fiber.MethodPost, "/api/groups", body, admin).Expect(t, fiber.StatusConflict)

	bad := func(k string, v any) map[string]any {
		cp := map[string]any{}
		for kk, vv := range body {
			cp[kk] = vv
		}
		cp["name"] = "E-" + k
		cp[k] = v
		return cp
	}
	h.Do(fiber.MethodPost, "/api/groups", bad("courseId", 999), admin).Expect(t, fiber.StatusBadRequest)
	h.Do(fiber.MethodPost, "/api/groups", bad("teacherId", s1.ID), admin).Expect(t, fiber.StatusBadRequest)
	h.Do(fiber.MethodPost, "/api/groups", bad("startTime", "2pm"), admin).Expect(t, fiber.StatusBadRequest)
	h.Do(fiber.MethodPost, "/api/groups", bad("daysOfWeek", []string{"Funday"}), admin).Expect(t, fiber.StatusBadRequest)
}

func TestEnrollmentRoutes(t *testing.T) {
	h := apptest.New(t, GroupRoutes)
	_, admin := h.As(constants.RoleAdmin)
	t1 := h.Teacher("One", 10)
	t2 := h.Teacher("Two", 10)
	course := h.Course("Math")
	g1 := h.Group("M-1", course.ID, &t1.ID, 100000)
	g2 := h.Group("M-2", course.ID, &t2.ID, 100000)
	s := h.Student("A")

	add := fmt.Sprintf("/api/groups/%d/add-student?userId=%d", g1.ID, s.ID)
	h.Do(fiber.MethodPost, add, nil, admin).Expect(t, fiber.StatusOK)
	h.Do(fiber.MethodPost, add, nil, admin).Expect(t, fiber.StatusConflict)
	if got := salaryOf(t, h, t1.ID); got != 10000 {
		t.Fatalf("t1 salary = %v", got)
	}

	transfer := fmt.Sprintf("/api/groups/transfer-student?fromGroupId=%d&toGroupId=%d&userId=%d", g1.ID, g2.ID, s.ID)
	h.Do(fiber.MethodPost, transfer, nil, admin).Expect(t, fiber.StatusOK)
	if salaryOf(t, h, t1.ID) != 0 || salaryOf(t, h, t2.ID) != 10000 {
		t.Fatal("transfer did not move salary")
	}

	list := h.Do(fiber.MethodGet, fmt.Sprintf("/api/groups/%d/students", g2.ID), nil, admin).Expect(t, fiber.StatusOK).List()
	if len(list) != 1 {
		t.Fatalf("roster = %d, want 1", len(list))
	}

	h.Do(fiber.MethodDelete, fmt.Sprintf("/api/groups/%d/remove-student?userId=%d", g2.ID, s.ID), nil, admin).
		Expect(t, fiber.StatusOK)
	h.Do(fiber.MethodDelete, fmt.Sprintf("/api/groups/%d/remove-student?userId=%d", g2.ID, s.ID), nil, admin).
		Expect(t, fiber.StatusNotFound)
	h.Do(fiber.MethodPost, fmt.Sprintf("/api/groups/%d/restore-student?userId=%d", g2.ID, s.ID), nil, admin).
		Expect(t, fiber.StatusOK)
}

func TestStatusChangeRecomputesSalary(t *testing.T) {
	h := apptest.New(t, GroupRoutes)
	_, admin := h.As(constants.RoleAdmin)
	teacher := h.Teacher("T", 10)
	course := h.Course("Art")
	g := h.Group("A-1", course.ID, &teacher.ID, 100000)
	h.Enroll(g.ID, h.Student("A").ID)

	h.Do(fiber.MethodPatch, fmt.Sprintf("/api/groups/%d/status/active", g.ID), nil, admin).Expect(t, fiber.StatusOK)
	if got := salaryOf(t, h, teacher.ID); got != 10000 {
		t.Fatalf("salary = %v", got)
	}
	h.Do(fiber.MethodPatch, fmt.Sprintf("/api/groups/%d/status/completed", g.ID), nil, admin).Expect(t, fiber.StatusOK)
	if got := salaryOf(t, h, teacher.ID); got != 0 {
		t.Fatalf("salary = %v, want 0", got)
	}
	h.Do(fiber.MethodPatch, fmt.Sprintf("/api/groups/%d/status/paused", g.ID), nil, admin).Expect(t, fiber.StatusBadRequest)
}

func TestUpdateGroupReassignsTeacher(t *testing.T) {
	h := apptest.New(t, GroupRoutes)
	_, admin := h.As(constants.RoleAdmin)
	oldT := h.Teacher("Old", 10)
	newT := h.Teacher("New", 20)
	course := h.Course("Bio")
	g := h.Group("B-1", course.ID, &oldT.ID, 100000)
	s := h.Student("A")
	h.Enroll(g.ID, s.ID)

	h.Do(fiber.MethodPut, fmt.Sprintf("/api/groups/%d", g.ID), map[string]any{"teacherId": newT.ID}, admin).
		Expect(t, fiber.StatusOK)
	if salaryOf(t, h, oldT.ID) != 0 || salaryOf(t, h, newT.ID) != 20000 {
		t.Fatalf("salaries old=%v new=%v", salaryOf(t, h, oldT.ID), salaryOf(t, h, newT.ID))
	}

	h.Do(fiber.MethodPut, fmt.Sprintf("/api/groups/%d", g.ID), map[string]any{"userIds": []uint{newT.ID}}, admin).
		Expect(t, fiber.StatusNotFound)
	h.Do(fiber.MethodPut, fmt.Sprintf("/api/groups/%d", g.ID), map[string]any{"userIds": []uint{}}, admin).
		Expect(t, fiber.StatusOK)
	if got := salaryOf(t, h, newT.ID); got != 0 {
		t.Fatalf("salary after emptying roster = %v", got)
	}
}

func TestTeacherViewsAndGuards(t *testing.T) {
	h := apptest.New(t, GroupRoutes)
	teacher, tok := h.As(constants.RoleTeacher)
	_, student := h.As(constants.RoleStudent)
	course := h.Course("Geo")
	g := h.Group("G-1", course.ID, &teacher.ID, 1000, "Monday", "Thursday")
	h.Enroll(g.ID, h.Student("A").ID)

	body := h.Do(fiber.MethodGet, "/api/groups/my/teacher/groups", nil, tok).Expect(t, fiber.StatusOK).Data()
	groups := body["groups"].([]any)
	days := groups[0].(map[string]any)["daysOfWeek"].([]any)
	if days[0] != "Dushanba" {
		t.Fatalf("days = %v", days)
	}

	sched := h.Do(fiber.MethodGet, "/api/groups/my/schedule?year=2025&month=5", nil, tok).Expect(t, fiber.StatusOK).Data()
	sg := sched["groups"].([]any)[0].(map[string]any)
	// May 2025 has 4 Mondays and 5 Thursdays.
	if n := len(sg["lessonDates"].([]any)); n != 9 {
		t.Fatalf("lesson dates = %d, want 9", n)
	}

	h.Do(fiber.MethodGet, "/api/groups/my/teacher/groups", nil, student).Expect(t, fiber.StatusForbidden)
	h.Do(fiber.MethodGet, "/api/groups/search", nil, student).Expect(t, fiber.StatusForbidden)
	h.Do(fiber.MethodGet, "/api/groups", nil, student).Expect(t, fiber.StatusOK)
	h.Do(fiber.MethodGet, "/api/groups/999", nil, student).Expect(t, fiber.StatusNotFound)
}
