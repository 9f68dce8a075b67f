package acadbond

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

var _ Session = &SessionObject{}

// SessionObject is the decoded view of a session cookie: the TokenData the
// presentation layer works with.
type SessionObject struct {
	UserID         string     `json:"user_id,omitempty"`
	UserEmail      string     `json:"email,omitempty"`
	UserType       UserRole   `json:"user_type,omitempty"`
	Issuer         string     `json:"issuer,omitempty"`
	IssuedAt       *time.Time `json:"issued_at,omitempty"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`
}

func (s *SessionObject) GetUserID() string {
	return s.UserID
}

func (s *SessionObject) GetUserUUID() (uuid.UUID, error) {
	return uuid.Parse(s.UserID)
}

func (s *SessionObject) GetEmail() string {
	return s.UserEmail
}

func (s *SessionObject) GetUserType() UserRole {
	return s.UserType
}

func (s *SessionObject) GetIssuer() string {
	return s.Issuer
}

func (s *SessionObject) GetIssuedAt() *time.Time {
	return s.IssuedAt
}

// IsStudent reports whether the session belongs to a student.
func (s *SessionObject) IsStudent() bool {
	return s.UserType == RoleStudent
}

// IsProfessor reports whether the session belongs to a professor.
func (s *SessionObject) IsProfessor() bool {
	return s.UserType == RoleProfessor
}

func (s SessionObject) String() string {
	issuedAt := "<nil>"
	if s.IssuedAt != nil {
		issuedAt = s.IssuedAt.Format(time.RFC1123)
	}
	return fmt.Sprintf(
		"user=%s email=%s type=%s iss=%s iat=%s",
		s.UserID,
		s.UserEmail,
		s.UserType,
		s.Issuer,
		issuedAt,
	)
}

// sessionFromAuthClaims projects validated claims into a SessionObject.
func sessionFromAuthClaims(claims AuthClaims) (*SessionObject, error) {
	if claims == nil {
		return nil, ErrUnableToMapClaims
	}

	session := &SessionObject{
		UserID:    claims.UserID(),
		UserEmail: claims.Email(),
		UserType:  UserRole(claims.Role()),
	}

	if sc, ok := claims.(*SessionClaims); ok {
		session.Issuer = sc.RegisteredClaims.Issuer
	}

	if iat := claims.IssuedAt(); !iat.IsZero() {
		session.IssuedAt = &iat
	}
	if exp := claims.Expires(); !exp.IsZero() {
		session.ExpirationDate = &exp
	}

	return session, nil
}
