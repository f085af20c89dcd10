package model

import "time"

// Roles carried in the access token's "role" claim.
const (
	RoleOrganizer = "ORGANIZER"
	RoleVendor    = "VENDOR"
)

// User is an account as stored in the `users` table. Organizers and vendors
// share the table and are told apart by Role.
//
// Fields:
//
//	ID           : primary key identifier of the user.
//	Email        : unique, lower-cased email address.
//	PasswordHash : bcrypt hashed password.
//	Role         : ORGANIZER or VENDOR.
//	IsActive     : whether the account may sign in.
//	CreatedAt    : timestamp of creation.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at_ms
}

// ValidRole reports whether r is one of the known roles.
func ValidRole(r string) bool {
	return r == RoleOrganizer || r == RoleVendor
}
