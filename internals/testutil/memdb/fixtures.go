package memdb

import (
	"fmt"
	"testing"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"educenter_backend/internals/constants"
	courseModel "educenter_backend/internals/features/catalog/courses/model"
	groupModel "educenter_backend/internals/features/catalog/groups/model"
	userModel "educenter_backend/internals/features/users/user/model"
	"educenter_backend/internals/helpers/money"
	roleSeed "educenter_backend/internals/seeds/roles"
)

// Fixture is a seeded database plus small builders for common rows.
type Fixture struct {
	t     testing.TB
	DB    *gorm.DB
	Roles map[constants.Role]uint
	seq   int
}

func New(t testing.TB) *Fixture {
	t.Helper()
	db := Open(t)
	ids, err := roleSeed.SeedRoles(db)
	if err != nil {
		t.Fatalf("seed roles: %v", err)
	}
	return &Fixture{t: t, DB: db, Roles: ids}
}

func (f *Fixture) next() int {
	f.seq++
	return f.seq
}

// FixturePhone is the phone User gives its n-th row. Fixture phones use
// the +99891 prefix so tests are free to pick +99890 numbers.
func FixturePhone(n int) string {
	return fmt.Sprintf("+99891%07d", n)
}

func (f *Fixture) User(role constants.Role, firstName string, mut ...func(*userModel.UserModel)) userModel.UserModel {
	f.t.Helper()
	n := f.next()
	username := fmt.Sprintf("%s%d", role, n)
	u := userModel.UserModel{
		FirstName: firstName,
		LastName:  "Test",
		Username:  &username,
		Phone:     FixturePhone(n),
		RoleID:    f.Roles[role],
	}
	for _, m := range mut {
		m(&u)
	}
	if err := f.DB.Create(&u).Error; err != nil {
		f.t.Fatalf("create user: %v", err)
	}
	return u
}

func (f *Fixture) Student(firstName string) userModel.UserModel {
	return f.User(constants.RoleStudent, firstName)
}

func (f *Fixture) Teacher(firstName string, percent float64) userModel.UserModel {
	return f.User(constants.RoleTeacher, firstName, func(u *userModel.UserModel) {
		u.Percent = &percent
	})
}

func (f *Fixture) Course(name string) courseModel.CourseModel {
	f.t.Helper()
	c := courseModel.CourseModel{Name: name}
	if err := f.DB.Create(&c).Error; err != nil {
		f.t.Fatalf("create course: %v", err)
	}
	return c
}

// Group creates an active group; days default to every weekday.
func (f *Fixture) Group(name string, courseID uint, teacherID *uint, price float64, days ...string) groupModel.GroupModel {
	f.t.Helper()
	if len(days) == 0 {
		days = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
	}
	g := groupModel.GroupModel{
		Name:       name,
		CourseID:   courseID,
		TeacherID:  teacherID,
		Price:      money.FromFloat(price),
		StartTime:  "14:00",
		EndTime:    "16:00",
		DaysOfWeek: datatypes.JSONSlice[string](days),
		Status:     groupModel.GroupActive,
	}
	if err := f.DB.Create(&g).Error; err != nil {
		f.t.Fatalf("create group: %v", err)
	}
	return g
}

// Enroll writes roster rows directly, bypassing salary recomputation.
func (f *Fixture) Enroll(groupID uint, userIDs ...uint) {
	f.t.Helper()
	for _, id := range userIDs {
		row := groupModel.GroupStudentModel{GroupID: groupID, UserID: id}
		if err := f.DB.Create(&row).Error; err != nil {
			f.t.Fatalf("enroll: %v", err)
		}
	}
}

func Ptr[T any](v T) *T { return &v }
