package domain

// Role represents user role in the system
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleDepartment Role = "department"
)

// Valid reports whether the role belongs to the closed set
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleDepartment
}

// IsAdmin reports whether the role carries admin privileges
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// Actor is the resolved caller identity passed into the lifecycle engine.
// It is built once by the auth middleware from validated token claims; the
// engine trusts it for every authorization check.
type Actor struct {
	UserID uint
	Role   Role
}
