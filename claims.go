package acadbond

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims is the typed view of a validated session token.
type AuthClaims interface {
	Subject() string
	UserID() string
	Email() string
	Role() string
	HasRole(role string) bool
	Expires() time.Time
	IssuedAt() time.Time
}

// SessionClaims is the concrete claim set embedded in the session cookie:
// {id, email, userType} on top of the registered claims.
type SessionClaims struct {
	jwt.RegisteredClaims
	UID       string   `json:"id,omitempty"`
	UserEmail string   `json:"email,omitempty"`
	UserType  UserRole `json:"userType,omitempty"`
}

var (
	_ AuthClaims    = (*SessionClaims)(nil)
	_ RoleValidator = (*SessionClaims)(nil)
)

// Subject returns the subject claim.
func (c *SessionClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// UserID returns the user id, falling back to the subject.
func (c *SessionClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.Subject()
}

// Email returns the email claim.
func (c *SessionClaims) Email() string {
	return c.UserEmail
}

// Role returns the userType claim.
func (c *SessionClaims) Role() string {
	return string(c.UserType)
}

// HasRole checks for an exact role match.
func (c *SessionClaims) HasRole(role string) bool {
	return string(c.UserType) == role
}

// CanViewDashboard reports whether the session may read the paper dashboard.
func (c *SessionClaims) CanViewDashboard() bool {
	return RoleCanViewDashboard(string(c.UserType))
}

// CanViewProfile reports whether the session may read its own profile.
func (c *SessionClaims) CanViewProfile() bool {
	return RoleCanViewProfile(string(c.UserType))
}

// Expires returns the expiration time, zero when unset.
func (c *SessionClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issuance time, zero when unset.
func (c *SessionClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
