// Package entity contains the core business objects of the project.
package entity

// Role represents the type of role a user can have in the system.
type Role string

const (
	// RoleUser indicates a regular user role.
	RoleUser Role = "user"
	// RoleAdmin grants access to user administration and every owner-scoped record.
	RoleAdmin Role = "admin"
)

// String returns the string representation of the Role.
func (r Role) String() string {
	return string(r)
}

// IsValid checks if the Role is a valid value.
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}

// RoleOrDefault returns the role, falling back to RoleUser when invalid.
func RoleOrDefault(s string) Role {
	role := Role(s)
	if role.IsValid() {
		return role
	}

	return RoleUser
}
