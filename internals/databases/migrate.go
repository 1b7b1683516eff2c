package database

import (
	"database/sql"
	"embed"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	applicationModel "educenter_backend/internals/features/applications/model"
	attendanceModel "educenter_backend/internals/features/attendance/attendance/model"
	lessonModel "educenter_backend/internals/features/attendance/lessons/model"
	courseModel "educenter_backend/internals/features/catalog/courses/model"
	groupModel "educenter_backend/internals/features/catalog/groups/model"
	paymentModel "educenter_backend/internals/features/finance/payments/model"
	archiveModel "educenter_backend/internals/features/users/archive/model"
	authModel "educenter_backend/internals/features/users/auth/model"
	roleModel "educenter_backend/internals/features/users/role/model"
	userModel "educenter_backend/internals/features/users/user/model"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate applies the embedded goose migrations.
func Migrate(db *sql.DB) error {
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return err
	}
	zap.S().Info("migrations applied")
	return nil
}

// MigrationsFS exposes the migration files to test harnesses.
func MigrationsFS() embed.FS { return migrationsFS }

// AllModels is the AutoMigrate set; it mirrors the SQL migrations and is
// used by the in-memory test database.
func AllModels() []any {
	return []any{
		&roleModel.RoleModel{},
		&courseModel.CourseModel{},
		&userModel.UserModel{},
		&groupModel.GroupModel{},
		&groupModel.GroupStudentModel{},
		&paymentModel.PaymentModel{},
		&attendanceModel.AttendanceModel{},
		&lessonModel.LessonModel{},
		&applicationModel.ApplicationModel{},
		&archiveModel.ArchivedUserModel{},
		&authModel.TokenBlacklist{},
	}
}
