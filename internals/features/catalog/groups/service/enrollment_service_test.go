package service

import (
	"context"
	"errors"
	"testing"

	"github.com/gofiber/fiber/v2"

	groupModel "educenter_backend/internals/features/catalog/groups/model"
	userModel "educenter_backend/internals/features/users/user/model"
	"educenter_backend/internals/testutil/memdb"
)

func salaryOf(t *testing.T, f *memdb.Fixture, id uint) float64 {
	t.Helper()
	var u userModel.UserModel
	if err := f.DB.First(&u, id).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if u.Salary == nil {
		return 0
	}
	return u.Salary.InexactFloat64()
}

func wantStatus(t *testing.T, err error, code int) {
	t.Helper()
	var fe *fiber.Error
	if !errors.As(err, &fe) || fe.Code != code {
		t.Fatalf("err = %v, want status %d", err, code)
	}
}

func TestAddAndRemoveStudentRecomputesSalary(t *testing.T) {
	f := memdb.New(t)
	ctx := context.Background()
	e := NewEnrollment(f.DB)

	teacher := f.Teacher("Aziz", 10)
	course := f.Course("English")
	g := f.Group("E-1", course.ID, &teacher.ID, 50000)

	students := make([]uint, 0, 4)
	for i := 0; i < 4; i++ {
		s := f.Student("S")
		students = append(students, s.ID)
		if err := e.AddStudent(ctx, g.ID, s.ID); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	if got := salaryOf(t, f, teacher.ID); got != 20000 {
		t.Fatalf("salary = %v, want 20000", got)
	}

	if err := e.RemoveStudent(ctx, g.ID, students[0]); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if got := salaryOf(t, f, teacher.ID); got != 15000 {
		t.Fatalf("salary = %v, want 15000", got)
	}
}

func TestAddStudentTwiceConflicts(t *testing.T) {
	f := memdb.New(t)
	ctx := context.Background()
	e := NewEnrollment(f.DB)
	course := f.Course("Math")
	g := f.Group("M-1", course.ID, nil, 1000)
	s := f.Student("A")

	if err := e.AddStudent(ctx, g.ID, s.ID); err != nil {
		t.Fatalf("add: %v", err)
	}
	wantStatus(t, e.AddStudent(ctx, g.ID, s.ID), fiber.StatusConflict)

	var n int64
	f.DB.Model(&groupModel.GroupStudentModel{}).Where("group_id = ?", g.ID).Count(&n)
	if n != 1 {
		t.Fatalf("roster size = %d, want 1", n)
	}
}

func TestAddStudentRejectsInactiveGroupAndNonStudent(t *testing.T) {
	f := memdb.New(t)
	ctx := context.Background()
	e := NewEnrollment(f.DB)
	course := f.Course("Art")
	g := f.Group("A-1", course.ID, nil, 1000)
	f.DB.Model(&g).Update("status", groupModel.GroupCompleted)

	wantStatus(t, e.AddStudent(ctx, g.ID, f.Student("A").ID), fiber.StatusNotFound)

	active := f.Group("A-2", course.ID, nil, 1000)
	teacher := f.Teacher("T", 5)
	wantStatus(t, e.AddStudent(ctx, active.ID, teacher.ID), fiber.StatusNotFound)
	wantStatus(t, e.AddStudent(ctx, 999, f.Student("B").ID), fiber.StatusNotFound)
}

func TestRemoveStudentNotOnRoster(t *testing.T) {
	f := memdb.New(t)
	e := NewEnrollment(f.DB)
	course := f.Course("Bio")
	g := f.Group("B-1", course.ID, nil, 1000)
	wantStatus(t, e.RemoveStudent(context.Background(), g.ID, f.Student("A").ID), fiber.StatusNotFound)
}

func TestTransferUpdatesBothTeachersOnly(t *testing.T) {
	f := memdb.New(t)
	ctx := context.Background()
	e := NewEnrollment(f.DB)
	course := f.Course("Chem")

	t1 := f.Teacher("One", 10)
	t2 := f.Teacher("Two", 10)
	t3 := f.Teacher("Three", 10)
	g1 := f.Group("C-1", course.ID, &t1.ID, 100000)
	g2 := f.Group("C-2", course.ID, &t2.ID, 200000)
	g3 := f.Group("C-3", course.ID, &t3.ID, 300000)

	s := f.Student("Mover")
	other := f.Student("Stay")
	if err := e.AddStudent(ctx, g1.ID, s.ID); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := e.AddStudent(ctx, g3.ID, other.ID); err != nil {
		t.Fatalf("add: %v", err)
	}
	before := salaryOf(t, f, t3.ID)

	if err := e.TransferStudent(ctx, g1.ID, g2.ID, s.ID); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if got := salaryOf(t, f, t1.ID); got != 0 {
		t.Fatalf("t1 salary = %v, want 0", got)
	}
	if got := salaryOf(t, f, t2.ID); got != 20000 {
		t.Fatalf("t2 salary = %v, want 20000", got)
	}
	if got := salaryOf(t, f, t3.ID); got != before {
		t.Fatalf("t3 salary changed: %v -> %v", before, got)
	}
}

func TestTransferValidation(t *testing.T) {
	f := memdb.New(t)
	ctx := context.Background()
	e := NewEnrollment(f.DB)
	course := f.Course("Geo")
	g1 := f.Group("G-1", course.ID, nil, 1000)
	g2 := f.Group("G-2", course.ID, nil, 1000)
	s := f.Student("A")

	wantStatus(t, e.TransferStudent(ctx, g1.ID, g1.ID, s.ID), fiber.StatusBadRequest)
	wantStatus(t, e.TransferStudent(ctx, g1.ID, 999, s.ID), fiber.StatusNotFound)
	wantStatus(t, e.TransferStudent(ctx, g1.ID, g2.ID, s.ID), fiber.StatusBadRequest)

	f.Enroll(g1.ID, s.ID)
	f.Enroll(g2.ID, s.ID)
	wantStatus(t, e.TransferStudent(ctx, g1.ID, g2.ID, s.ID), fiber.StatusBadRequest)

	g3 := f.Group("G-3", course.ID, nil, 1000)
	f.DB.Model(&g3).Update("status", groupModel.GroupPlanned)
	wantStatus(t, e.TransferStudent(ctx, g1.ID, g3.ID, s.ID), fiber.StatusBadRequest)
}
