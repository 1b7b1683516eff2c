package constants

import (
	"fmt"
	"strings"
)

// Role is the closed set of roles a user can hold.
type Role string

const (
	RoleStudent    Role = "student"
	RoleTeacher    Role = "teacher"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superAdmin"
)

// Role error message templates
const (
	ErrOnlyAdminsCanAccess     = "Only admin or superAdmin may access %s."
	ErrOnlyStaffCanAccess      = "Only teacher, admin or superAdmin may access %s."
	ErrOnlyTeachersCanAccess   = "Only the group teacher may access %s."
	ErrOnlySuperAdminCanManage = "Only a superAdmin may manage superAdmin %s."
)

func RoleErrorAdmin(feature string) string {
	return fmt.Sprintf(ErrOnlyAdminsCanAccess, feature)
}

func RoleErrorStaff(feature string) string {
	return fmt.Sprintf(ErrOnlyStaffCanAccess, feature)
}

func RoleErrorTeacher(feature string) string {
	return fmt.Sprintf(ErrOnlyTeachersCanAccess, feature)
}

func RoleErrorSuperAdmin(what string) string {
	return fmt.Sprintf(ErrOnlySuperAdminCanManage, what)
}

// ParseRole matches the stored spelling, case-insensitively.
func ParseRole(s string) (Role, bool) {
	s = strings.TrimSpace(s)
	for _, r := range AllRoles {
		if strings.EqualFold(string(r), s) {
			return r, true
		}
	}
	return "", false
}

func (r Role) String() string { return string(r) }

func (r Role) Valid() bool {
	_, ok := ParseRole(string(r))
	return ok
}

// In reports whether r is one of allowed.
func (r Role) In(allowed []Role) bool {
	for _, a := range allowed {
		if r == a {
			return true
		}
	}
	return false
}

// CanManage reports whether an actor with role r may create, delete or
// grant the target role. Only a superAdmin may touch superAdmin rows.
func (r Role) CanManage(target Role) bool {
	if target == RoleSuperAdmin {
		return r == RoleSuperAdmin
	}
	return r.In(Admins)
}

// ==========================
// ✅ Grouped Role Slices
// ==========================
var (
	AllRoles = []Role{
		RoleStudent,
		RoleTeacher,
		RoleAdmin,
		RoleSuperAdmin,
	}

	Everyone = AllRoles

	Staff = []Role{
		RoleTeacher,
		RoleAdmin,
		RoleSuperAdmin,
	}

	Admins = []Role{
		RoleAdmin,
		RoleSuperAdmin,
	}

	TeacherOnly = []Role{
		RoleTeacher,
	}
)
