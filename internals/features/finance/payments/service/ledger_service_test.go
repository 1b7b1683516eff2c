package service

import (
	"context"
	"errors"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"educenter_backend/internals/features/finance/payments/model"
	"educenter_backend/internals/helpers/money"
	"educenter_backend/internals/testutil/memdb"
)

type ledgerFixture struct {
	f       *memdb.Fixture
	student uint
	group   uint
}

func newLedger(t *testing.T) ledgerFixture {
	return newLedgerPriced(t, 100000)
}

func newLedgerPriced(t *testing.T, price float64) ledgerFixture {
	f := memdb.New(t)
	course := f.Course("English")
	g := f.Group("E-1", course.ID, nil, price)
	s := f.Student("Ali")
	f.Enroll(g.ID, s.ID)
	return ledgerFixture{f: f, student: s.ID, group: g.ID}
}

func (l ledgerFixture) input(amount float64) PaymentInput {
	return PaymentInput{
		UserID:      l.student,
		GroupID:     l.group,
		Amount:      money.FromFloat(amount),
		MonthFor:    "2025-03",
		PaymentType: model.PaymentCash,
	}
}

func (l ledgerFixture) rows(t *testing.T) []model.PaymentModel {
	t.Helper()
	var rows []model.PaymentModel
	if err := l.f.DB.Order("id").Find(&rows).Error; err != nil {
		t.Fatalf("load payments: %v", err)
	}
	return rows
}

func TestRecordFlipsPaidWhenCumulativeReachesPrice(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	first, err := Record(ctx, l.f.DB, l.input(40000))
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if first.Paid {
		t.Fatal("first partial payment must not be paid")
	}
	if first.CourseID == nil || *first.CourseID == 0 {
		t.Fatal("course should default to the group's course")
	}

	if _, err := Record(ctx, l.f.DB, l.input(60000)); err != nil {
		t.Fatalf("record: %v", err)
	}
	for _, r := range l.rows(t) {
		if !r.Paid {
			t.Fatalf("payment %d not paid after settling", r.ID)
		}
	}

	if err := Delete(ctx, l.f.DB, first.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	rows := l.rows(t)
	if len(rows) != 1 || rows[0].Paid {
		t.Fatalf("remaining rows = %+v, want one unpaid", rows)
	}
}

func TestUpdateReconcilesOldAndNewSets(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	a, _ := Record(ctx, l.f.DB, l.input(50000))
	b, _ := Record(ctx, l.f.DB, l.input(50000))
	if rows := l.rows(t); !rows[0].Paid || !rows[1].Paid {
		t.Fatal("set should be paid")
	}

	month, amount := "2025-04", money.FromFloat(100000)
	if _, err := Update(ctx, l.f.DB, b.ID, PaymentPatch{MonthFor: &month, Amount: &amount}); err != nil {
		t.Fatalf("update: %v", err)
	}

	var old, next model.PaymentModel
	l.f.DB.First(&old, a.ID)
	l.f.DB.First(&next, b.ID)
	if old.Paid {
		t.Fatal("old set lost half its amount and must be unpaid")
	}
	if !next.Paid || next.MonthFor != "2025-04" {
		t.Fatalf("moved payment = %+v, want paid in 2025-04", next)
	}
}

func TestRecordSettlesFractionalAmountsExactly(t *testing.T) {
	l := newLedgerPriced(t, 0.80)
	ctx := context.Background()

	first, err := Record(ctx, l.f.DB, l.input(0.10))
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if first.Paid {
		t.Fatal("0.10 of 0.80 must not be paid")
	}
	second, err := Record(ctx, l.f.DB, l.input(0.70))
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if !second.Paid {
		t.Fatal("0.10 + 0.70 reaches a price of 0.80")
	}
	for _, r := range l.rows(t) {
		if !r.Paid {
			t.Fatalf("payment %d (%s) not paid", r.ID, r.Amount)
		}
	}

	// Reconcile after an update must agree with Record.
	low := money.FromFloat(0.69)
	if _, err := Update(ctx, l.f.DB, second.ID, PaymentPatch{Amount: &low}); err != nil {
		t.Fatalf("update: %v", err)
	}
	for _, r := range l.rows(t) {
		if r.Paid {
			t.Fatalf("0.10 + 0.69 is short of 0.80 but payment %d is paid", r.ID)
		}
	}
	exact := money.FromFloat(0.70)
	if _, err := Update(ctx, l.f.DB, second.ID, PaymentPatch{Amount: &exact}); err != nil {
		t.Fatalf("update: %v", err)
	}
	for _, r := range l.rows(t) {
		if !r.Paid {
			t.Fatalf("payment %d unpaid after restoring 0.70", r.ID)
		}
	}
}

func TestUpdateKeepsFieldsAbsentFromPatch(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	p, err := Record(ctx, l.f.DB, l.input(40000))
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	transfer := model.PaymentTransfer
	got, err := Update(ctx, l.f.DB, p.ID, PaymentPatch{PaymentType: &transfer})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.PaymentType != model.PaymentTransfer {
		t.Fatalf("paymentType = %s", got.PaymentType)
	}
	if !got.Amount.Equal(decimal.NewFromInt(40000)) || got.MonthFor != "2025-03" ||
		got.UserID != l.student || got.GroupID != l.group || got.CourseID == nil || *got.CourseID != *p.CourseID {
		t.Fatalf("untouched fields changed: %+v", got)
	}

	bad := "2025-13"
	_, err = Update(ctx, l.f.DB, p.ID, PaymentPatch{MonthFor: &bad})
	var fe *fiber.Error
	if !errors.As(err, &fe) || fe.Code != fiber.StatusBadRequest {
		t.Fatalf("err = %v, want 400", err)
	}
}

func TestRecordValidation(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	cases := []struct {
		name string
		mut  func(*PaymentInput)
		code int
	}{
		{"bad month", func(in *PaymentInput) { in.MonthFor = "2025-13" }, fiber.StatusBadRequest},
		{"bad month shape", func(in *PaymentInput) { in.MonthFor = "03-2025" }, fiber.StatusBadRequest},
		{"negative", func(in *PaymentInput) { in.Amount = decimal.NewFromInt(-1) }, fiber.StatusBadRequest},
		{"bad type", func(in *PaymentInput) { in.PaymentType = "card" }, fiber.StatusBadRequest},
		{"unknown student", func(in *PaymentInput) { in.UserID = 999 }, fiber.StatusNotFound},
		{"unknown group", func(in *PaymentInput) { in.GroupID = 999 }, fiber.StatusNotFound},
		{"unknown course", func(in *PaymentInput) { c := uint(999); in.CourseID = &c }, fiber.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := l.input(1000)
			tc.mut(&in)
			_, err := Record(ctx, l.f.DB, in)
			var fe *fiber.Error
			if !errors.As(err, &fe) || fe.Code != tc.code {
				t.Fatalf("err = %v, want %d", err, tc.code)
			}
		})
	}
	if n := len(l.rows(t)); n != 0 {
		t.Fatalf("rows written = %d, want 0", n)
	}
}

func TestDeleteUnknownPayment(t *testing.T) {
	l := newLedger(t)
	err := Delete(context.Background(), l.f.DB, 42)
	var fe *fiber.Error
	if !errors.As(err, &fe) || fe.Code != fiber.StatusNotFound {
		t.Fatalf("err = %v, want 404", err)
	}
}
