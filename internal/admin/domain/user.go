package domain

import "time"

// User is a record the application authenticates against.
type User struct {
	ID           string // ULID
	Username     string // unique, 1-64 chars, matched case-sensitively
	DisplayName  string // optional, <=128 chars
	PasswordHash string // argon2id encoded, never logged or displayed
	IsAdmin      bool
	CreatedAt    time.Time // UTC, set once at creation
}

// Role returns the role a session issued for this user carries.
func (u User) Role() Role {
	if u.IsAdmin {
		return RoleAdmin
	}
	return RoleUser
}
