package domain

// Role is an enumerated role tag. Kept as a tag rather than a boolean so
// further roles can be added without restructuring.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole maps a stored role string back to a Role, defaulting unknown
// values to the least privileged role.
func ParseRole(s string) Role {
	if s == string(RoleAdmin) {
		return RoleAdmin
	}
	return RoleUser
}

// Principal is the authenticated identity materialized from a valid
// session cookie. It is reconstructed per request and never persisted
// server-side.
type Principal struct {
	Username    string
	DisplayName string
	Role        Role
}

// IsAdmin reports whether the principal may perform admin-gated actions.
func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }
