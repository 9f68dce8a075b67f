package acadbond

// UserRole is the user's role within the network.
type UserRole = string

const (
	// RoleStudent can browse the paper dashboard and manage their profile.
	RoleStudent UserRole = "student"
	// RoleProfessor can manage their profile; the dashboard is student-only.
	RoleProfessor UserRole = "professor"
)

// RoleValidator is the capability view a validated session exposes.
// SessionClaims implements it; DashboardRoleChecker feeds the dashboard
// capability into the session middleware's role check.
type RoleValidator interface {
	// HasRole checks for an exact role match.
	HasRole(role string) bool

	// CanViewDashboard reports whether the role may read the paper dashboard.
	CanViewDashboard() bool

	// CanViewProfile reports whether the role may read its own profile.
	CanViewProfile() bool
}

// ParseRole returns the matching role and whether it is one we know.
func ParseRole(s string) (UserRole, bool) {
	switch s {
	case RoleStudent:
		return RoleStudent, true
	case RoleProfessor:
		return RoleProfessor, true
	default:
		return "", false
	}
}

// IsValid checks if the role is one of the predefined valid roles.
func IsValidRole(r UserRole) bool {
	_, ok := ParseRole(r)
	return ok
}

// RoleCanViewDashboard reports dashboard access; the dashboard is a
// student-only surface.
func RoleCanViewDashboard(r UserRole) bool {
	return r == RoleStudent
}

// RoleCanViewProfile reports profile access; any known role qualifies.
func RoleCanViewProfile(r UserRole) bool {
	return IsValidRole(r)
}
