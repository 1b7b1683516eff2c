package service

import (
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	groupModel "educenter_backend/internals/features/catalog/groups/model"
	paymentModel "educenter_backend/internals/features/finance/payments/model"
	"educenter_backend/internals/helpers/dbtime"
	"educenter_backend/internals/helpers/money"
	"educenter_backend/internals/testutil/memdb"
)

type world struct {
	f          *memdb.Fixture
	g1, g2, g3 groupModel.GroupModel
	a, b, c    uint
}

func seed(t *testing.T) world {
	f := memdb.New(t)
	course := f.Course("English")
	w := world{f: f}
	w.g1 = f.Group("E-1", course.ID, nil, 100)
	w.g2 = f.Group("E-2", course.ID, nil, 200)
	w.g3 = f.Group("E-3", course.ID, nil, 300)
	f.DB.Model(&w.g3).Update("status", groupModel.GroupCompleted)
	w.a, w.b, w.c = f.Student("A").ID, f.Student("B").ID, f.Student("C").ID
	f.Enroll(w.g1.ID, w.a, w.b)
	f.Enroll(w.g2.ID, w.c)
	f.Enroll(w.g3.ID, w.a)

	pay := func(u, g uint, amount float64, month string, paid bool) {
		f.DB.Create(&paymentModel.PaymentModel{UserID: u, GroupID: g, Amount: money.FromFloat(amount), MonthFor: month,
			PaymentType: paymentModel.PaymentClick, Paid: paid})
	}
	pay(w.a, w.g1.ID, 100, "2025-01", true)
	pay(w.b, w.g1.ID, 40, "2025-02", false)
	pay(w.c, w.g2.ID, 150, "2025-03", true)
	pay(w.a, w.g1.ID, 100, "2025-06", true)
	return w
}

func amountIs(d decimal.Decimal, want string) bool {
	return d.Equal(decimal.RequireFromString(want))
}

// debtorRow flattens a Debtor so amounts compare by value.
type debtorRow struct {
	UserID      uint
	FullName    string
	Group       string
	GroupID     uint
	Debt        string
	UnpaidMonth string
}

func rowsOf(list []Debtor) []debtorRow {
	out := make([]debtorRow, 0, len(list))
	for _, d := range list {
		out = append(out, debtorRow{d.UserID, d.FullName, d.Group, d.GroupID, d.Debt.String(), d.UnpaidMonth})
	}
	return out
}

func TestDebtorsShortfallAndIdempotence(t *testing.T) {
	w := seed(t)

	first, err := Debtors(w.f.DB, DebtorFilter{}, "2025-06")
	if err != nil {
		t.Fatal(err)
	}
	want := []debtorRow{
		{w.b, "B Test", "E-1", w.g1.ID, "100", "2025-06"},
		{w.c, "C Test", "E-2", w.g2.ID, "50", "2025-04"},
	}
	if !reflect.DeepEqual(rowsOf(first.Debtors), want) || !amountIs(first.TotalDebt, "150") || first.DebtorCount != 2 {
		t.Fatalf("debtors = %+v", first)
	}

	second, err := Debtors(w.f.DB, DebtorFilter{}, "2025-06")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("not idempotent:\n%+v\n%+v", first, second)
	}

	byGroup, _ := Debtors(w.f.DB, DebtorFilter{GroupID: w.g2.ID}, "2025-06")
	byName, _ := Debtors(w.f.DB, DebtorFilter{FirstName: "c"}, "2025-06")
	if byGroup.DebtorCount != 1 || byName.DebtorCount != 1 || byName.Debtors[0].UserID != w.c {
		t.Fatalf("filters: %+v %+v", byGroup, byName)
	}
}

func TestDashboardFiguresAndIdempotence(t *testing.T) {
	w := seed(t)
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, dbtime.CenterLocation())

	d, err := BuildDashboard(w.f.DB, now, 0.01)
	if err != nil {
		t.Fatal(err)
	}
	if d.TotalStudents != 3 || d.ActiveGroups != 2 || d.AverageStudentsPerGroup != 1.5 {
		t.Fatalf("counts = %+v", d)
	}
	if d.PaidStudents != 1 || d.UnpaidStudents != 2 {
		t.Fatalf("paid = %d unpaid = %d", d.PaidStudents, d.UnpaidStudents)
	}
	if len(d.MonthlyRevenue) != 12 || d.MonthlyRevenue[0].Month != "Jan" || !amountIs(d.MonthlyRevenue[0].Income, "100") ||
		!d.MonthlyRevenue[1].Income.IsZero() || !amountIs(d.MonthlyRevenue[2].Income, "150") {
		t.Fatalf("monthly = %+v", d.MonthlyRevenue)
	}
	if !amountIs(d.AnnualRevenue, "350") || d.AnnualRevenueUSD != "$3.50" || d.ReportDate != "2025-06-15" {
		t.Fatalf("annual = %v %q %q", d.AnnualRevenue, d.AnnualRevenueUSD, d.ReportDate)
	}

	again, err := BuildDashboard(w.f.DB, now, 0.01)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(d, again) {
		t.Fatalf("not idempotent:\n%+v\n%+v", d, again)
	}
}

func TestDebtorsCompareCentsExactly(t *testing.T) {
	f := memdb.New(t)
	course := f.Course("English")
	g := f.Group("E-1", course.ID, nil, 0.30)
	settled, short := f.Student("A"), f.Student("B")
	f.Enroll(g.ID, settled.ID, short.ID)
	for _, amount := range []float64{0.10, 0.20} {
		f.DB.Create(&paymentModel.PaymentModel{UserID: settled.ID, GroupID: g.ID, Amount: money.FromFloat(amount),
			MonthFor: "2025-05", PaymentType: paymentModel.PaymentCash, Paid: true})
	}
	f.DB.Create(&paymentModel.PaymentModel{UserID: short.ID, GroupID: g.ID, Amount: money.FromFloat(0.10),
		MonthFor: "2025-05", PaymentType: paymentModel.PaymentCash, Paid: true})

	r, err := Debtors(f.DB, DebtorFilter{}, "2025-06")
	if err != nil {
		t.Fatal(err)
	}
	if r.DebtorCount != 1 || r.Debtors[0].UserID != short.ID || !amountIs(r.Debtors[0].Debt, "0.20") {
		t.Fatalf("debtors = %+v", r)
	}
	if !amountIs(r.TotalDebt, "0.20") {
		t.Fatalf("total = %s", r.TotalDebt)
	}
}
