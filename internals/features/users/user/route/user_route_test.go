package route

import (
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"educenter_backend/internals/constants"
	archiveModel "educenter_backend/internals/features/users/archive/model"
	paymentModel "educenter_backend/internals/features/finance/payments/model"
	userModel "educenter_backend/internals/features/users/user/model"
	"educenter_backend/internals/testutil/apptest"
)

func TestCreateUserRules(t *testing.T) {
	h := apptest.New(t, UserRoutes)
	_, admin := h.As(constants.RoleAdmin)
	_, super := h.As(constants.RoleSuperAdmin)

	created := h.Do(fiber.MethodPost, "/api/users", map[string]any{
		"firstName": "Ali", "lastName": "Valiyev", "phone": "+998901112233",
		"username": "ali", "password": "secret123",
	}, admin).Expect(t, fiber.StatusCreated).Data()
	if created["role"] != string(constants.RoleStudent) {
		t.Fatalf("role = %v, want student", created["role"])
	}
	if _, leaked := created["password"]; leaked {
		t.Fatal("password serialized")
	}

	h.Do(fiber.MethodPost, "/api/users", map[string]any{
		"firstName": "B", "lastName": "B", "phone": "+998901112233",
	}, admin).Expect(t, fiber.StatusConflict)
	h.Do(fiber.MethodPost, "/api/users", map[string]any{
		"firstName": "B", "lastName": "B", "phone": "+998900000001", "username": "ali",
	}, admin).Expect(t, fiber.StatusConflict)
	h.Do(fiber.MethodPost, "/api/users", map[string]any{
		"firstName": "B", "lastName": "B", "phone": "+998900000002", "role": "janitor",
	}, admin).Expect(t, fiber.StatusNotFound)
	h.Do(fiber.MethodPost, "/api/users", map[string]any{
		"firstName": "B", "lastName": "B", "phone": "+998900000003", "role": "teacher",
	}, admin).Expect(t, fiber.StatusBadRequest)
	h.Do(fiber.MethodPost, "/api/users", map[string]any{
		"firstName": "B", "lastName": "B", "phone": "+998900000004", "role": "superAdmin",
	}, admin).Expect(t, fiber.StatusForbidden)
	h.Do(fiber.MethodPost, "/api/users", map[string]any{
		"firstName": "B", "lastName": "B", "phone": "+998900000004", "role": "superAdmin",
	}, super).Expect(t, fiber.StatusCreated)
	h.Do(fiber.MethodPost, "/api/users", map[string]any{
		"firstName": "B", "lastName": "B", "phone": "+998900000005", "courseId": 999,
	}, admin).Expect(t, fiber.StatusNotFound)
	h.Do(fiber.MethodPost, "/api/users", map[string]any{"firstName": "B"}, admin).
		Expect(t, fiber.StatusBadRequest)
}

func TestCreateStudentWithGroupRecomputesSalary(t *testing.T) {
	h := apptest.New(t, UserRoutes)
	_, admin := h.As(constants.RoleAdmin)
	teacher := h.Teacher("T", 10)
	course := h.Course("English")
	g := h.Group("E-1", course.ID, &teacher.ID, 50000)

	created := h.Do(fiber.MethodPost, "/api/users", map[string]any{
		"firstName": "S", "lastName": "S", "phone": "+998907654321", "groupId": g.ID, "courseId": course.ID,
	}, admin).Expect(t, fiber.StatusCreated).Data()
	groups := created["groups"].([]any)
	if len(groups) != 1 {
		t.Fatalf("groups = %v", groups)
	}

	var tt userModel.UserModel
	h.DB.First(&tt, teacher.ID)
	if tt.Salary == nil || !tt.Salary.Equal(decimal.NewFromInt(5000)) {
		t.Fatalf("salary = %v, want 5000", tt.Salary)
	}
}

func TestUpdateUserSalaryRules(t *testing.T) {
	h := apptest.New(t, UserRoutes)
	_, admin := h.As(constants.RoleAdmin)
	teacher := h.Teacher("T", 10)
	course := h.Course("English")
	g := h.Group("E-1", course.ID, &teacher.ID, 100000)
	h.Enroll(g.ID, h.Student("A").ID)
	worker := h.User(constants.RoleAdmin, "W")

	upd := h.Do(fiber.MethodPatch, fmt.Sprintf("/api/users/%d", teacher.ID),
		map[string]any{"percent": 20, "salary": 1}, admin).Expect(t, fiber.StatusOK).Data()
	if upd["salary"].(float64) != 20000 {
		t.Fatalf("teacher salary = %v, want 20000", upd["salary"])
	}

	upd = h.Do(fiber.MethodPatch, fmt.Sprintf("/api/users/%d", worker.ID),
		map[string]any{"salary": 3000000}, admin).Expect(t, fiber.StatusOK).Data()
	if upd["salary"].(float64) != 3000000 {
		t.Fatalf("worker salary = %v", upd["salary"])
	}

	h.Do(fiber.MethodPatch, fmt.Sprintf("/api/users/%d", worker.ID),
		map[string]any{"phone": teacher.Phone}, admin).Expect(t, fiber.StatusConflict)
	h.Do(fiber.MethodPatch, "/api/users/999", map[string]any{"firstName": "X"}, admin).
		Expect(t, fiber.StatusNotFound)
}

func TestSelfUpdateIgnoresSalary(t *testing.T) {
	h := apptest.New(t, UserRoutes)
	me, tok := h.As(constants.RoleAdmin)

	upd := h.Do(fiber.MethodPatch, "/api/users/me/update",
		map[string]any{"firstName": "Renamed", "salary": 999}, tok).Expect(t, fiber.StatusOK).Data()
	if upd["firstName"] != "Renamed" || upd["salary"] != nil {
		t.Fatalf("updated = %v", upd)
	}
	got := h.Do(fiber.MethodGet, "/api/users/me", nil, tok).Expect(t, fiber.StatusOK).Data()
	if uint(got["id"].(float64)) != me.ID {
		t.Fatalf("me = %v", got)
	}
}

func TestDeleteUserArchivesAndCascades(t *testing.T) {
	h := apptest.New(t, UserRoutes)
	_, admin := h.As(constants.RoleAdmin)
	teacher := h.Teacher("T", 10)
	course := h.Course("English")
	g := h.Group("E-1", course.ID, &teacher.ID, 50000)
	s1, s2 := h.Student("A"), h.Student("B")
	h.Enroll(g.ID, s1.ID, s2.ID)
	h.DB.Model(&userModel.UserModel{}).Where("id = ?", teacher.ID).Update("salary", 10000)
	h.DB.Create(&paymentModel.PaymentModel{UserID: s1.ID, GroupID: g.ID, Amount: decimal.NewFromInt(1), MonthFor: "2025-01", PaymentType: paymentModel.PaymentCash})

	h.Do(fiber.MethodDelete, fmt.Sprintf("/api/users/%d?archive=true", s1.ID), nil, admin).Expect(t, fiber.StatusOK)

	var n int64
	h.DB.Model(&archiveModel.ArchivedUserModel{}).Where("phone = ?", s1.Phone).Count(&n)
	if n != 1 {
		t.Fatalf("archived = %d, want 1", n)
	}
	h.DB.Model(&paymentModel.PaymentModel{}).Count(&n)
	if n != 0 {
		t.Fatalf("payments left = %d", n)
	}
	var tt userModel.UserModel
	h.DB.First(&tt, teacher.ID)
	if tt.Salary == nil || !tt.Salary.Equal(decimal.NewFromInt(5000)) {
		t.Fatalf("salary = %v, want 5000", tt.Salary)
	}

	h.Do(fiber.MethodDelete, fmt.Sprintf("/api/users/%d", s1.ID), nil, admin).Expect(t, fiber.StatusNotFound)
	super := h.User(constants.RoleSuperAdmin, "Root")
	h.Do(fiber.MethodDelete, fmt.Sprintf("/api/users/%d", super.ID), nil, admin).Expect(t, fiber.StatusForbidden)
}

func TestAllStudentsSyntheticUnpaidRow(t *testing.T) {
	h := apptest.New(t, UserRoutes)
	_, admin := h.As(constants.RoleAdmin)
	course := h.Course("English")
	g1 := h.Group("E-1", course.ID, nil, 100)
	g2 := h.Group("E-2", course.ID, nil, 100)
	s := h.Student("A")
	h.Enroll(g1.ID, s.ID)
	h.Enroll(g2.ID, s.ID)
	h.DB.Create(&paymentModel.PaymentModel{UserID: s.ID, GroupID: g1.ID, Amount: decimal.NewFromInt(100), MonthFor: "2025-03", PaymentType: paymentModel.PaymentClick, Paid: true})

	list := h.Do(fiber.MethodGet, "/api/users/all/students?monthFor=2025-03", nil, admin).Expect(t, fiber.StatusOK).List()
	if len(list) != 1 {
		t.Fatalf("students = %d", len(list))
	}
	payments := list[0].(map[string]any)["payments"].([]any)
	if len(payments) != 2 {
		t.Fatalf("payments = %v", payments)
	}
	var synthetic int
	for _, p := range payments {
		if p.(map[string]any)["id"] == nil {
			synthetic++
		}
	}
	if synthetic != 1 {
		t.Fatalf("synthetic rows = %d, want 1", synthetic)
	}

	unpaid := h.Do(fiber.MethodGet, "/api/users/all/students?monthFor=2025-04&paid=true", nil, admin).
		Expect(t, fiber.StatusOK).List()
	if len(unpaid) != 0 {
		t.Fatalf("paid filter = %d, want 0", len(unpaid))
	}
	h.Do(fiber.MethodGet, "/api/users/all/students?monthFor=2025-13", nil, admin).Expect(t, fiber.StatusBadRequest)
}

func TestListUsersPaginatesAndGuards(t *testing.T) {
	h := apptest.New(t, UserRoutes)
	_, admin := h.As(constants.RoleAdmin)
	_, student := h.As(constants.RoleStudent)
	for i := 0; i < 3; i++ {
		h.Teacher(fmt.Sprintf("T%d", i), 10)
	}

	res := h.Do(fiber.MethodGet, "/api/users?role=teacher&per_page=2", nil, admin).Expect(t, fiber.StatusOK)
	if len(res.List()) != 2 {
		t.Fatalf("page = %d, want 2", len(res.List()))
	}
	pg := res.Body["pagination"].(map[string]any)
	if pg["total"].(float64) != 3 {
		t.Fatalf("total = %v", pg["total"])
	}

	h.Do(fiber.MethodGet, "/api/users", nil, "").Expect(t, fiber.StatusUnauthorized)
	h.Do(fiber.MethodGet, "/api/users", nil, student).Expect(t, fiber.StatusForbidden)
	h.Do(fiber.MethodGet, "/api/users/students", nil, student).Expect(t, fiber.StatusForbidden)
	h.Do(fiber.MethodGet, "/api/users/me", nil, student).Expect(t, fiber.StatusOK)
}
