package domain

import "errors"

// Role is the authorization level carried by a session.
type Role string

const (
	RoleEducator Role = "Educator"
	RoleLearner  Role = "Learner"
)

var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("user already exists")
var ErrUnauthenticated = errors.New("authentication required")
var ErrForbidden = errors.New("access forbidden")
var ErrNoSession = errors.New("no such session")

// ParseRole maps a submitted role name onto a known Role.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleEducator, RoleLearner:
		return Role(s), true
	}
	return "", false
}

// User is a credential record from the Users table.
type User struct {
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	Role         Role   `json:"role"`
}

// Session is the identity attached to a request. Role is meaningful only
// when User is set.
type Session struct {
	User string `json:"user"`
	Role Role   `json:"role"`
}

// Authenticated reports whether the session carries an identity.
func (s Session) Authenticated() bool {
	return s.User != ""
}

// HasRole reports whether the session is authenticated with the given role.
func (s Session) HasRole(r Role) bool {
	return s.Authenticated() && s.Role == r
}

// LoginMode selects how a login request is verified.
type LoginMode string

const (
	// LoginCredentials checks username and password against the Users table.
	LoginCredentials LoginMode = "credentials"
	// LoginAssertion trusts the submitted username and role. Deprecated.
	LoginAssertion LoginMode = "assertion"
)

// Valid reports whether m is a known login mode.
func (m LoginMode) Valid() bool {
	return m == LoginCredentials || m == LoginAssertion
}
