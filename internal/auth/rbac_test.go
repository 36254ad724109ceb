package auth

import (
	"errors"
	"testing"
)

func TestRolePermissions(t *testing.T) {
	if got := len(RoleAdmin.Permissions()); got != 16 {
		t.Fatalf("admin should hold all 16 permissions, got %d", got)
	}
	for _, role := range []Role{RoleAttendant, RolePhysician, RolePatient} {
		if got := len(role.Permissions()); got != 4 {
			t.Fatalf("%s should hold 4 permissions, got %d", role, got)
		}
	}

	if !RoleAdmin.HasPermission(PermPatientDelete) {
		t.Fatal("admin must carry patient:delete")
	}
	if RolePatient.HasPermission(PermAdminRead) {
		t.Fatal("patient must not carry admin:read")
	}
	if !RoleAttendant.HasPermission(PermAttendantUpdate) {
		t.Fatal("attendant must carry attendant:update")
	}
	if RolePhysician.HasPermission(PermPatientRead) {
		t.Fatal("physician must not carry patient:read")
	}
}

func TestRolePermissionsReturnsCopy(t *testing.T) {
	perms := RolePatient.Permissions()
	delete(perms, PermPatientRead)
	if !RolePatient.HasPermission(PermPatientRead) {
		t.Fatal("mutating the returned set leaked into the role table")
	}
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole("  admin ")
	if err != nil {
		t.Fatalf("ParseRole: %v", err)
	}
	if role != RoleAdmin {
		t.Fatalf("unexpected role %q", role)
	}

	if _, err := ParseRole("SUPERUSER"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := ParseRole(""); err == nil {
		t.Fatal("expected error for empty role")
	}
}

func TestRoleValid(t *testing.T) {
	for _, role := range []Role{RoleAdmin, RoleAttendant, RolePhysician, RolePatient} {
		if !role.Valid() {
			t.Fatalf("%s should be valid", role)
		}
	}
	if Role("admin").Valid() {
		t.Fatal("role matching is case sensitive after parse")
	}
}
