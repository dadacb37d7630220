package models

import (
	"fmt"
	"strings"
)

// Role is the closed set of roles a profile can hold. All authorization
// decisions compare against these constants, never raw strings.
type Role string

const (
	RoleStudent        Role = "STUDENT"
	RoleAdvisor        Role = "ADVISOR"
	RoleStaffRegistrar Role = "STAFF_REGISTRAR"
	RoleStaffFinance   Role = "STAFF_FINANCE"
	RoleAdmin          Role = "ADMIN"
)

// Roles lists every assignable role.
func Roles() []Role {
	return []Role{RoleStudent, RoleAdvisor, RoleStaffRegistrar, RoleStaffFinance, RoleAdmin}
}

// ParseRole normalizes and validates a role string.
func ParseRole(value string) (Role, error) {
	role := Role(strings.ToUpper(strings.TrimSpace(value)))
	if !role.Valid() {
		return "", fmt.Errorf("invalid role %q", value)
	}
	return role, nil
}

// Valid reports whether the role is one of the known constants.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleAdvisor, RoleStaffRegistrar, RoleStaffFinance, RoleAdmin:
		return true
	}
	return false
}

// IsStaff reports whether the role may act on requests owned by others.
// Any valid role other than Student counts as staff.
func (r Role) IsStaff() bool {
	return r.Valid() && r != RoleStudent
}

// IsAdmin reports whether the role carries administrative capability.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

func (r Role) String() string {
	return string(r)
}
