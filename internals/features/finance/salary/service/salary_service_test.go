package service

import (
	"testing"

	"github.com/shopspring/decimal"

	groupModel "educenter_backend/internals/features/catalog/groups/model"
	userModel "educenter_backend/internals/features/users/user/model"
	"educenter_backend/internals/testutil/memdb"
)

func storedSalary(t *testing.T, f *memdb.Fixture, id uint) decimal.Decimal {
	t.Helper()
	var u userModel.UserModel
	if err := f.DB.First(&u, id).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if u.Salary == nil {
		return decimal.Zero
	}
	return *u.Salary
}

func wantAmount(t *testing.T, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Fatalf("salary = %s, want %s", got, want)
	}
}

func TestComputeTeacherSalary(t *testing.T) {
	f := memdb.New(t)
	teacher := f.Teacher("Aziz", 10)
	course := f.Course("English")
	g := f.Group("E-1", course.ID, &teacher.ID, 50000)
	for i := 0; i < 4; i++ {
		s := f.Student("S")
		f.Enroll(g.ID, s.ID)
	}

	got, err := ComputeTeacherSalary(f.DB, teacher.ID)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	wantAmount(t, got, "20000")
}

func TestComputeIgnoresInactiveGroups(t *testing.T) {
	f := memdb.New(t)
	teacher := f.Teacher("Aziz", 10)
	course := f.Course("Math")
	active := f.Group("M-1", course.ID, &teacher.ID, 100000)
	planned := f.Group("M-2", course.ID, &teacher.ID, 100000)
	f.DB.Model(&planned).Update("status", groupModel.GroupPlanned)

	s1, s2 := f.Student("A"), f.Student("B")
	f.Enroll(active.ID, s1.ID)
	f.Enroll(planned.ID, s2.ID)

	got, err := ComputeTeacherSalary(f.DB, teacher.ID)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	wantAmount(t, got, "10000")
}

func TestComputeNonTeacherKeepsStoredSalary(t *testing.T) {
	f := memdb.New(t)
	salary := decimal.NewFromInt(3000000)
	admin := f.User("admin", "Dilnoza", func(u *userModel.UserModel) { u.Salary = &salary })

	got, err := ComputeTeacherSalary(f.DB, admin.ID)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	wantAmount(t, got, "3000000")
}

func TestComputeZeroPercent(t *testing.T) {
	f := memdb.New(t)
	teacher := f.Teacher("Zero", 0)
	course := f.Course("Art")
	g := f.Group("A-1", course.ID, &teacher.ID, 90000)
	f.Enroll(g.ID, f.Student("A").ID)

	got, err := ComputeTeacherSalary(f.DB, teacher.ID)
	if err != nil || !got.IsZero() {
		t.Fatalf("got %v, %v; want 0, nil", got, err)
	}
}

func TestRecomputeManyPersists(t *testing.T) {
	f := memdb.New(t)
	t1 := f.Teacher("One", 10)
	t2 := f.Teacher("Two", 20)
	course := f.Course("Physics")
	g1 := f.Group("P-1", course.ID, &t1.ID, 50000)
	g2 := f.Group("P-2", course.ID, &t2.ID, 10000)
	f.Enroll(g1.ID, f.Student("A").ID, f.Student("B").ID)
	f.Enroll(g2.ID, f.Student("C").ID)

	if err := RecomputeMany(f.DB, t2.ID, t1.ID, t2.ID, 0); err != nil {
		t.Fatalf("recompute: %v", err)
	}
	wantAmount(t, storedSalary(t, f, t1.ID), "10000")
	wantAmount(t, storedSalary(t, f, t2.ID), "2000")
}

func TestComputeRoundsFractionalRevenueToCents(t *testing.T) {
	f := memdb.New(t)
	teacher := f.Teacher("Aziz", 12.5)
	course := f.Course("English")
	g := f.Group("E-1", course.ID, &teacher.ID, 33.33)
	f.Enroll(g.ID, f.Student("A").ID, f.Student("B").ID, f.Student("C").ID)

	// 3 x 33.33 = 99.99; 12.5% of that is 12.49875.
	got, err := ComputeTeacherSalary(f.DB, teacher.ID)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	wantAmount(t, got, "12.50")
}

func TestComputeUnknownTeacher(t *testing.T) {
	f := memdb.New(t)
	if _, err := ComputeTeacherSalary(f.DB, 999); err == nil {
		t.Fatal("expected not found")
	}
}
