package domain

import dErrors "frontdesk/pkg/domain-errors"

// Role determines which operations a user may perform.
// Invariant: the value must be one of the four supported roles.
//
// Construct via ParseRole at trust boundaries; direct casting bypasses validation.
type Role string

const (
	RoleAdmin     Role = "Admin"
	RoleReception Role = "Reception"
	RoleSecurity  Role = "Security"
	RoleEmployee  Role = "Employee"
)

var validRoles = map[Role]bool{
	RoleAdmin:     true,
	RoleReception: true,
	RoleSecurity:  true,
	RoleEmployee:  true,
}

// ParseRole constructs a Role from external input.
func ParseRole(s string) (Role, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeValidation, "role cannot be empty")
	}
	r := Role(s)
	if !r.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "role must be one of Admin, Reception, Security, Employee")
	}
	return r, nil
}

// IsValid checks if the role is one of the supported enum values.
func (r Role) IsValid() bool {
	return validRoles[r]
}

func (r Role) String() string {
	return string(r)
}

// In reports whether r is one of roles.
func (r Role) In(roles ...Role) bool {
	for _, candidate := range roles {
		if r == candidate {
			return true
		}
	}
	return false
}

// CanManageKeys reports whether the role may create, update or delete keys and
// assign a checkout to another user.
func (r Role) CanManageKeys() bool {
	return r.In(RoleAdmin, RoleSecurity)
}
