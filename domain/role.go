package domain

import "fmt"

// Role identifies who is acting on a resident's behalf.
type Role string

const (
	RoleUser     Role = "User"
	RoleResident Role = "Resident"
	RoleEmployee Role = "Residential Employee"
)

// ParseRole converts a wire value into a Role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleResident, RoleEmployee:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// CanSchedule reports whether the role may create events of the given
// category. Residents may only add community activities; appointments are
// reserved for family users and employees.
func (r Role) CanSchedule(c Category) bool {
	if c != CategoryAppointment {
		return true
	}
	switch r {
	case RoleUser, RoleEmployee:
		return true
	default:
		return false
	}
}

// CanEditMedications reports whether the role may change a resident's
// medication list. Residents manage their own interests but not medications.
func (r Role) CanEditMedications() bool {
	return r == RoleEmployee || r == RoleUser
}
