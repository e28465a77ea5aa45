package model

// Role is the closed set of account roles. Tokens and registration input
// are validated against this set at every boundary; anything else is
// rejected rather than carried around as a free-form string.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// ParseRole returns the Role named by s and whether s names a known role.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return Role(s), true
	}
	return "", false
}

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	_, ok := ParseRole(string(r))
	return ok
}

// User mirrors the `user` table. The password is only ever stored as a
// bcrypt hash; plaintext never leaves the registration and login handlers.
type User struct {
	ID             uint64 // user.id
	Name           string // user.name
	Bio            string // user.bio (optional)
	Email          string // user.email (unique)
	Role           Role   // user.role
	HashedPassword string // user.hashed_password
}
