package session

import "strings"

// Roles
const (
	RoleStudent Role = "student"
	RoleGuest   Role = "guest"
	RoleAdmin   Role = "admin"
)

type Role string

// ParseRole maps the role sent by the backend on class login.
// An absent role predates guest accounts and means student; anything unknown is treated as guest.
func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case "", RoleStudent:
		return RoleStudent
	case RoleGuest:
		return RoleGuest
	case RoleAdmin:
		return RoleAdmin
	}
	return RoleGuest
}

func (r Role) IsAdmin() bool { return r == RoleAdmin }

// ReadOnly reports whether mutation actions are disabled for the role.
func (r Role) ReadOnly() bool { return r == RoleGuest }

// Identity is the principal a session belongs to: a class or an admin.
type Identity struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Locale     string `json:"locale,omitempty"`
	SchoolName string `json:"school_name,omitempty"`
}

type Session struct {
	Token    string
	Role     Role
	Identity Identity
}

func (s Session) IsZero() bool {
	return s.Token == "" && s.Identity.ID == 0
}
