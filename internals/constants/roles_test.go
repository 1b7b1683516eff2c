package constants

import "testing"

func TestParseRole(t *testing.T) {
	cases := map[string]Role{
		"student":    RoleStudent,
		" Teacher ":  RoleTeacher,
		"ADMIN":      RoleAdmin,
		"superadmin": RoleSuperAdmin,
	}
	for in, want := range cases {
		got, ok := ParseRole(in)
		if !ok || got != want {
			t.Fatalf("ParseRole(%q) = %q,%v want %q", in, got, ok, want)
		}
	}
	if _, ok := ParseRole("owner"); ok {
		t.Fatal("owner must not parse")
	}
}

func TestCanManage(t *testing.T) {
	if RoleAdmin.CanManage(RoleSuperAdmin) {
		t.Fatal("admin must not manage superAdmin")
	}
	if !RoleSuperAdmin.CanManage(RoleSuperAdmin) {
		t.Fatal("superAdmin must manage superAdmin")
	}
	if !RoleAdmin.CanManage(RoleTeacher) {
		t.Fatal("admin must manage teacher")
	}
	if RoleTeacher.CanManage(RoleStudent) {
		t.Fatal("teacher must not manage users")
	}
}
