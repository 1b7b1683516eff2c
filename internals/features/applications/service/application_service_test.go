package service

import (
	"context"
	"errors"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"educenter_backend/internals/features/applications/model"
	groupModel "educenter_backend/internals/features/catalog/groups/model"
	userModel "educenter_backend/internals/features/users/user/model"
	"educenter_backend/internals/testutil/memdb"
)

func wantStatus(t *testing.T, err error, code int) {
	t.Helper()
	var fe *fiber.Error
	if !errors.As(err, &fe) || fe.Code != code {
		t.Fatalf("err = %v, want status %d", err, code)
	}
}

func count(t *testing.T, f *memdb.Fixture, m any, where ...any) int64 {
	t.Helper()
	var n int64
	q := f.DB.Model(m)
	if len(where) > 0 {
		q = q.Where(where[0], where[1:]...)
	}
	if err := q.Count(&n).Error; err != nil {
		t.Fatal(err)
	}
	return n
}

func TestCreateWithoutGroupIsNew(t *testing.T) {
	f := memdb.New(t)
	a, err := Create(context.Background(), f.DB, Intake{FirstName: " Ali ", LastName: "Valiyev", Phone: "+998901112233"})
	if err != nil {
		t.Fatal(err)
	}
	if a.Status || a.UserID != nil || a.FirstName != "Ali" {
		t.Fatalf("application = %+v", a)
	}
	if n := count(t, f, &userModel.UserModel{}, "phone = ?", "+998901112233"); n != 0 {
		t.Fatalf("users created = %d", n)
	}
}

func TestCreateWithGroupEnrolsAndRecomputesSalary(t *testing.T) {
	f := memdb.New(t)
	teacher := f.Teacher("T", 10)
	course := f.Course("English")
	g := f.Group("E-1", course.ID, &teacher.ID, 1000)
	ctx := context.Background()

	a, err := Create(ctx, f.DB, Intake{FirstName: "Ali", LastName: "V", Phone: "+998901112233", GroupID: &g.ID, CourseID: &course.ID})
	if err != nil {
		t.Fatal(err)
	}
	if !a.Status || a.UserID == nil || a.GroupID == nil || *a.GroupID != g.ID || *a.CourseID != course.ID {
		t.Fatalf("application = %+v", a)
	}
	if n := count(t, f, &groupModel.GroupStudentModel{}, "group_id = ? AND user_id = ?", g.ID, *a.UserID); n != 1 {
		t.Fatalf("roster rows = %d", n)
	}
	var tu userModel.UserModel
	f.DB.First(&tu, teacher.ID)
	if tu.Salary == nil || !tu.Salary.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("salary = %v", tu.Salary)
	}

	// same phone again reuses the student and tolerates the membership
	again, err := Create(ctx, f.DB, Intake{FirstName: "Ali", LastName: "V", Phone: "+998901112233", GroupID: &g.ID})
	if err != nil {
		t.Fatal(err)
	}
	if *again.UserID != *a.UserID {
		t.Fatalf("user = %d, want %d", *again.UserID, *a.UserID)
	}
	if n := count(t, f, &userModel.UserModel{}, "phone = ?", "+998901112233"); n != 1 {
		t.Fatalf("users = %d", n)
	}
}

func TestCreateRollsBackOnFailure(t *testing.T) {
	f := memdb.New(t)
	course := f.Course("English")
	g := f.Group("E-1", course.ID, nil, 1000)
	f.DB.Model(&g).Update("status", groupModel.GroupPlanned)
	teacher := f.Teacher("T", 10)
	active := f.Group("E-2", course.ID, nil, 1000)
	missing := uint(999)
	ctx := context.Background()

	_, err := Create(ctx, f.DB, Intake{FirstName: "A", LastName: "B", Phone: "+998900000001", GroupID: &g.ID})
	wantStatus(t, err, fiber.StatusNotFound)
	_, err = Create(ctx, f.DB, Intake{FirstName: "A", LastName: "B", Phone: "+998900000001", CourseID: &missing})
	wantStatus(t, err, fiber.StatusNotFound)
	_, err = Create(ctx, f.DB, Intake{FirstName: "A", LastName: "B", Phone: teacher.Phone, GroupID: &active.ID})
	wantStatus(t, err, fiber.StatusConflict)

	if n := count(t, f, &model.ApplicationModel{}); n != 0 {
		t.Fatalf("applications = %d", n)
	}
	if n := count(t, f, &userModel.UserModel{}, "phone = ?", "+998900000001"); n != 0 {
		t.Fatalf("users = %d", n)
	}
}

func TestListStatisticsAndFilters(t *testing.T) {
	f := memdb.New(t)
	course := f.Course("English")
	g := f.Group("E-1", course.ID, nil, 1000)
	ctx := context.Background()

	first, _ := Create(ctx, f.DB, Intake{FirstName: "Ali", LastName: "V", Phone: "+998900000001"})
	_, _ = Create(ctx, f.DB, Intake{FirstName: "Vali", LastName: "S", Phone: "+998900000002", GroupID: &g.ID})
	last, _ := Create(ctx, f.DB, Intake{FirstName: "Olim", LastName: "K", Phone: "+998900000003"})

	l, err := List(f.DB, Filter{})
	if err != nil {
		t.Fatal(err)
	}
	want := Statistics{TotalApplications: 3, NewApplications: 2, InContact: 1}
	if l.Statistics != want {
		t.Fatalf("stats = %+v", l.Statistics)
	}
	if l.Applications[0].ID != last.ID || l.Applications[2].ID != first.ID {
		t.Fatalf("order = %d..%d", l.Applications[0].ID, l.Applications[2].ID)
	}
	if l.Applications[1].Group == nil || l.Applications[1].Group.Name != "E-1" {
		t.Fatalf("group not preloaded: %+v", l.Applications[1])
	}

	l, _ = List(f.DB, Filter{FirstName: "ALI"})
	if l.Statistics.TotalApplications != 2 {
		t.Fatalf("firstName filter = %+v", l.Statistics)
	}
	l, _ = List(f.DB, Filter{Phone: "0003"})
	if len(l.Applications) != 1 || l.Applications[0].ID != last.ID {
		t.Fatalf("phone filter = %+v", l.Applications)
	}
}

func TestAssignRemoveAndContact(t *testing.T) {
	f := memdb.New(t)
	course := f.Course("English")
	g := f.Group("E-1", course.ID, nil, 1000)
	ctx := context.Background()

	a, _ := Create(ctx, f.DB, Intake{FirstName: "Ali", LastName: "V", Phone: "+998900000001"})

	_, err := AssignGroup(ctx, f.DB, a.ID, 999)
	wantStatus(t, err, fiber.StatusNotFound)
	_, err = AssignGroup(ctx, f.DB, 999, g.ID)
	wantStatus(t, err, fiber.StatusNotFound)

	assigned, err := AssignGroup(ctx, f.DB, a.ID, g.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !assigned.Status || assigned.UserID == nil || assigned.Group == nil || assigned.Group.ID != g.ID {
		t.Fatalf("assigned = %+v", assigned)
	}
	if _, err := AssignGroup(ctx, f.DB, a.ID, g.ID); err != nil {
		t.Fatalf("second assign: %v", err)
	}
	if n := count(t, f, &userModel.UserModel{}, "phone = ?", "+998900000001"); n != 1 {
		t.Fatalf("users = %d", n)
	}

	removed, err := RemoveGroup(ctx, f.DB, a.ID)
	if err != nil || removed.GroupID != nil {
		t.Fatalf("removed = %+v %v", removed, err)
	}
	if n := count(t, f, &groupModel.GroupStudentModel{}, "group_id = ?", g.ID); n != 1 {
		t.Fatalf("roster = %d", n)
	}

	b, _ := Create(ctx, f.DB, Intake{FirstName: "Olim", LastName: "K", Phone: "+998900000002"})
	contacted, err := MarkContacted(ctx, f.DB, b.ID)
	if err != nil || !contacted.IsContacted || !contacted.Status {
		t.Fatalf("contacted = %+v %v", contacted, err)
	}

	if err := Delete(ctx, f.DB, b.ID); err != nil {
		t.Fatal(err)
	}
	wantStatus(t, Delete(ctx, f.DB, b.ID), fiber.StatusNotFound)
}
