package auth

import (
	"fmt"
	"strings"
)

// Role is the closed set of account roles. Every user holds exactly one.
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleAttendant Role = "ATTENDANT"
	RolePhysician Role = "PHYSICIAN"
	RolePatient   Role = "PATIENT"
)

// Permission is a fine-grained capability key, "<area>:<action>".
type Permission string

const (
	PermAdminRead   Permission = "admin:read"
	PermAdminCreate Permission = "admin:create"
	PermAdminUpdate Permission = "admin:update"
	PermAdminDelete Permission = "admin:delete"

	PermAttendantRead   Permission = "attendant:read"
	PermAttendantCreate Permission = "attendant:create"
	PermAttendantUpdate Permission = "attendant:update"
	PermAttendantDelete Permission = "attendant:delete"

	PermPhysicianRead   Permission = "physician:read"
	PermPhysicianCreate Permission = "physician:create"
	PermPhysicianUpdate Permission = "physician:update"
	PermPhysicianDelete Permission = "physician:delete"

	PermPatientRead   Permission = "patient:read"
	PermPatientCreate Permission = "patient:create"
	PermPatientUpdate Permission = "patient:update"
	PermPatientDelete Permission = "patient:delete"
)

var (
	adminPermissions = []Permission{
		PermAdminRead, PermAdminCreate, PermAdminUpdate, PermAdminDelete,
	}
	attendantPermissions = []Permission{
		PermAttendantRead, PermAttendantCreate, PermAttendantUpdate, PermAttendantDelete,
	}
	physicianPermissions = []Permission{
		PermPhysicianRead, PermPhysicianCreate, PermPhysicianUpdate, PermPhysicianDelete,
	}
	patientPermissions = []Permission{
		PermPatientRead, PermPatientCreate, PermPatientUpdate, PermPatientDelete,
	}
)

// rolePermissions is resolved once at process start and read-only afterwards.
// Admin carries every permission set; the other roles carry their own.
var rolePermissions = map[Role]map[Permission]struct{}{
	RoleAdmin: permissionSet(
		adminPermissions, attendantPermissions, physicianPermissions, patientPermissions,
	),
	RoleAttendant: permissionSet(attendantPermissions),
	RolePhysician: permissionSet(physicianPermissions),
	RolePatient:   permissionSet(patientPermissions),
}

func permissionSet(groups ...[]Permission) map[Permission]struct{} {
	set := make(map[Permission]struct{})
	for _, group := range groups {
		for _, p := range group {
			set[p] = struct{}{}
		}
	}
	return set
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := rolePermissions[r]
	return ok
}

// Permissions returns a copy of the role's permission set.
func (r Role) Permissions() map[Permission]struct{} {
	src := rolePermissions[r]
	out := make(map[Permission]struct{}, len(src))
	for p := range src {
		out[p] = struct{}{}
	}
	return out
}

// HasPermission reports whether the role grants p.
func (r Role) HasPermission(p Permission) bool {
	_, ok := rolePermissions[r][p]
	return ok
}

// ParseRole normalizes and validates a role name.
func ParseRole(s string) (Role, error) {
	role := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !role.Valid() {
		return "", fmt.Errorf("%w: unknown role %q", ErrInvalidInput, s)
	}
	return role, nil
}
