package route

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"educenter_backend/internals/constants"
	"educenter_backend/internals/features/finance/payments/model"
	"educenter_backend/internals/helpers/dbtime"
	"educenter_backend/internals/testutil/apptest"
)

func TestPaymentLedgerOverHTTP(t *testing.T) {
	h := apptest.New(t, PaymentRoutes)
	_, admin := h.As(constants.RoleAdmin)
	course := h.Course("English")
	g := h.Group("E-1", course.ID, nil, 100000)
	s := h.Student("A")
	h.Enroll(g.ID, s.ID)

	body := func(amount float64) map[string]any {
		return map[string]any{
			"userId": s.ID, "groupId": g.ID, "amount": amount,
			"monthFor": "2025-05", "paymentType": "click",
		}
	}
	first := h.Do(fiber.MethodPost, "/api/payments", body(40000), admin).Expect(t, fiber.StatusCreated).Data()
	if first["paid"] != false || first["courseId"].(float64) != float64(course.ID) {
		t.Fatalf("first = %v", first)
	}
	second := h.Do(fiber.MethodPost, "/api/payments", body(60000), admin).Expect(t, fiber.StatusCreated).Data()
	if second["paid"] != true {
		t.Fatalf("second = %v", second)
	}
	firstID := uint(first["id"].(float64))
	got := h.Do(fiber.MethodGet, fmt.Sprintf("/api/payments/%d", firstID), nil, admin).Expect(t, fiber.StatusOK).Data()
	if got["paid"] != true {
		t.Fatal("first row not reconciled to paid")
	}

	paid := h.Do(fiber.MethodGet, "/api/payments/paid?monthFor=2025-05&studentName=a", nil, admin).Expect(t, fiber.StatusOK).List()
	if len(paid) != 2 {
		t.Fatalf("paid list = %d, want 2", len(paid))
	}

	h.Do(fiber.MethodDelete, fmt.Sprintf("/api/payments/%d", uint(second["id"].(float64))), nil, admin).Expect(t, fiber.StatusOK)
	got = h.Do(fiber.MethodGet, fmt.Sprintf("/api/payments/%d", firstID), nil, admin).Expect(t, fiber.StatusOK).Data()
	if got["paid"] != false {
		t.Fatal("delete did not reconcile remaining row")
	}

	bad := body(10)
	bad["paymentType"] = "crypto"
	h.Do(fiber.MethodPost, "/api/payments", bad, admin).Expect(t, fiber.StatusBadRequest)
	bad = body(10)
	delete(bad, "amount")
	h.Do(fiber.MethodPost, "/api/payments", bad, admin).Expect(t, fiber.StatusBadRequest)
}

func TestPartialUpdateAndCentAmountsOverHTTP(t *testing.T) {
	h := apptest.New(t, PaymentRoutes)
	_, admin := h.As(constants.RoleAdmin)
	course := h.Course("English")
	g := h.Group("E-1", course.ID, nil, 0.80)
	s := h.Student("A")
	h.Enroll(g.ID, s.ID)

	post := func(amount float64) map[string]any {
		return h.Do(fiber.MethodPost, "/api/payments", map[string]any{
			"userId": s.ID, "groupId": g.ID, "amount": amount,
			"monthFor": "2025-05", "paymentType": "click",
		}, admin).Expect(t, fiber.StatusCreated).Data()
	}
	first := post(0.10)
	second := post(0.70)
	if first["paid"] != false || second["paid"] != true || second["amount"].(float64) != 0.7 {
		t.Fatalf("first = %v, second = %v", first, second)
	}

	path := fmt.Sprintf("/api/payments/%d", uint(second["id"].(float64)))
	upd := h.Do(fiber.MethodPut, path, map[string]any{"paymentType": "naxt"}, admin).Expect(t, fiber.StatusOK).Data()
	if upd["paymentType"] != "naxt" || upd["amount"].(float64) != 0.7 || upd["monthFor"] != "2025-05" || upd["paid"] != true {
		t.Fatalf("partial update = %v", upd)
	}

	upd = h.Do(fiber.MethodPut, path, map[string]any{"amount": 0.69}, admin).Expect(t, fiber.StatusOK).Data()
	if upd["paid"] != false {
		t.Fatalf("0.10 + 0.69 must leave the month unpaid: %v", upd)
	}
	h.Do(fiber.MethodPut, path, map[string]any{"amount": -1}, admin).Expect(t, fiber.StatusBadRequest)
	h.Do(fiber.MethodPut, path, map[string]any{"monthFor": "2025-13"}, admin).Expect(t, fiber.StatusBadRequest)
	h.Do(fiber.MethodPut, "/api/payments/999", map[string]any{"amount": 1}, admin).Expect(t, fiber.StatusNotFound)
}

func TestReportExportAndUnpaidMonths(t *testing.T) {
	h := apptest.New(t, PaymentRoutes)
	_, admin := h.As(constants.RoleAdmin)
	course := h.Course("English")
	g := h.Group("E-1", course.ID, nil, 100)
	s := h.Student("A")
	h.Enroll(g.ID, s.ID)

	months := h.Do(fiber.MethodGet, fmt.Sprintf("/api/payments/unpaid-months?userId=%d&groupId=%d", s.ID, g.ID), nil, admin).
		Expect(t, fiber.StatusOK).List()
	if len(months) != 1 || months[0] != dbtime.CurrentMonth() {
		t.Fatalf("unpaid months = %v", months)
	}

	h.DB.Create(&model.PaymentModel{
		UserID: s.ID, GroupID: g.ID, Amount: decimal.NewFromInt(100), MonthFor: dbtime.CurrentMonth(),
		PaymentType: model.PaymentCash, Paid: true, CreatedAt: time.Now().UTC(),
	})
	months = h.Do(fiber.MethodGet, fmt.Sprintf("/api/payments/unpaid-months?userId=%d&groupId=%d", s.ID, g.ID), nil, admin).
		Expect(t, fiber.StatusOK).List()
	if len(months) != 0 {
		t.Fatalf("unpaid months after payment = %v", months)
	}
	h.Do(fiber.MethodGet, fmt.Sprintf("/api/payments/unpaid-months?userId=%d&groupId=999", s.ID), nil, admin).
		Expect(t, fiber.StatusNotFound)

	report := h.Do(fiber.MethodGet, fmt.Sprintf("/api/payments/report?groupId=%d", g.ID), nil, admin).Expect(t, fiber.StatusOK).List()
	if len(report) != 1 {
		t.Fatalf("report = %d rows", len(report))
	}
	res := h.Do(fiber.MethodGet, fmt.Sprintf("/api/payments/report/export?groupId=%d", g.ID), nil, admin).Expect(t, fiber.StatusOK)
	if !strings.HasPrefix(string(res.Raw), "PK") {
		t.Fatal("export is not an xlsx archive")
	}

	year := dbtime.NowInCenter().Year()
	income := h.Do(fiber.MethodGet, fmt.Sprintf("/api/payments/yearly-income?year=%d", year), nil, admin).Expect(t, fiber.StatusOK).Data()
	if income["income"].(float64) != 100 {
		t.Fatalf("yearly income = %v", income)
	}
	h.Do(fiber.MethodGet, "/api/payments/monthly-income?month=13", nil, admin).Expect(t, fiber.StatusBadRequest)
}

func TestPaymentsAdminOnly(t *testing.T) {
	h := apptest.New(t, PaymentRoutes)
	_, teacher := h.As(constants.RoleTeacher)
	h.Do(fiber.MethodGet, "/api/payments", nil, "").Expect(t, fiber.StatusUnauthorized)
	h.Do(fiber.MethodGet, "/api/payments", nil, teacher).Expect(t, fiber.StatusForbidden)
}
