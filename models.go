package acadbond

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the credential store record. Verification and password reset each
// keep at most one pending token (value + expiry) directly on the row so
// consumption can be a single conditional update.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserType      UserRole  `bun:"user_type,notnull" json:"user_type,omitempty"`
	FirstName     string    `bun:"first_name" json:"first_name,omitempty"`
	LastName      string    `bun:"last_name" json:"last_name,omitempty"`
	Email         string    `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash  string    `bun:"password_hash" json:"-"`

	IsVerified        bool       `bun:"is_verified" json:"is_verified,omitempty"`
	VerifyToken       *string    `bun:"verify_token,nullzero" json:"-"`
	VerifyTokenExpiry *time.Time `bun:"verify_token_expiry,nullzero" json:"-"`
	ResetToken        *string    `bun:"reset_token,nullzero" json:"-"`
	ResetTokenExpiry  *time.Time `bun:"reset_token_expiry,nullzero" json:"-"`

	// Student profile columns.
	CollegeName    string  `bun:"college_name" json:"college_name,omitempty"`
	GraduationYear int     `bun:"graduation_year" json:"graduation_year,omitempty"`
	CGPA           float64 `bun:"cgpa" json:"cgpa,omitempty"`

	// Professor profile columns.
	Position   string   `bun:"position" json:"position,omitempty"`
	ScholarURL string   `bun:"scholar_url" json:"scholar_url,omitempty"`
	Links      []string `bun:"links,type:jsonb" json:"links,omitempty"`

	Interests []string `bun:"interests,type:jsonb" json:"interests,omitempty"`

	LoginAttempts  int        `bun:"login_attempts" json:"login_attempts,omitempty"`
	LoginAttemptAt *time.Time `bun:"login_attempt_at,nullzero" json:"login_attempt_at,omitempty"`
	LoggedInAt     *time.Time `bun:"loggedin_at,nullzero" json:"loggedin_at,omitempty"`

	CreatedAt *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// HasPendingVerifyToken reports whether a verification token is set,
// regardless of expiry. Expiry is only checked at consumption.
func (u *User) HasPendingVerifyToken() bool {
	return u.VerifyToken != nil && *u.VerifyToken != ""
}

// HasPendingResetToken reports whether a reset token is set.
func (u *User) HasPendingResetToken() bool {
	return u.ResetToken != nil && *u.ResetToken != ""
}

// Profile is the role-tagged projection of a user. Callers switch on the
// concrete type instead of duck-typing optional columns.
type Profile interface {
	ProfileRole() UserRole
}

// StudentProfile is the student variant of a user profile.
type StudentProfile struct {
	CollegeName    string   `json:"college_name,omitempty"`
	GraduationYear int      `json:"graduation_year,omitempty"`
	CGPA           float64  `json:"cgpa,omitempty"`
	Interests      []string `json:"interests,omitempty"`
}

// ProfileRole tags the variant.
func (StudentProfile) ProfileRole() UserRole { return RoleStudent }

// ProfessorProfile is the professor variant of a user profile.
type ProfessorProfile struct {
	Position   string   `json:"position,omitempty"`
	ScholarURL string   `json:"scholar_url,omitempty"`
	Links      []string `json:"links,omitempty"`
	Interests  []string `json:"interests,omitempty"`
}

// ProfileRole tags the variant.
func (ProfessorProfile) ProfileRole() UserRole { return RoleProfessor }

// ProfileOf projects the role-dependent profile columns into the tagged
// variant for the user's role. Unknown roles yield nil.
func ProfileOf(u *User) Profile {
	if u == nil {
		return nil
	}
	switch u.UserType {
	case RoleStudent:
		return StudentProfile{
			CollegeName:    u.CollegeName,
			GraduationYear: u.GraduationYear,
			CGPA:           u.CGPA,
			Interests:      u.Interests,
		}
	case RoleProfessor:
		return ProfessorProfile{
			Position:   u.Position,
			ScholarURL: u.ScholarURL,
			Links:      u.Links,
			Interests:  u.Interests,
		}
	default:
		return nil
	}
}

// ResearchPaper is read-only from the student dashboard; records are created
// by an external admin/seed process.
type ResearchPaper struct {
	bun.BaseModel `bun:"table:research_papers,alias:rp"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Title         string     `bun:"title,notnull" json:"title"`
	Abstract      string     `bun:"abstract" json:"abstract,omitempty"`
	AuthorIDs     []string   `bun:"author_ids,type:jsonb" json:"author_ids,omitempty"`
	Topics        []string   `bun:"topics,type:jsonb" json:"topics,omitempty"`
	PublishedDate time.Time  `bun:"published_date,notnull" json:"published_date"`
	Journal       string     `bun:"journal" json:"journal,omitempty"`
	DOI           *string    `bun:"doi,nullzero,unique" json:"doi,omitempty"`
	PDFURL        string     `bun:"pdf_url" json:"pdf_url,omitempty"`
	CitationCount int        `bun:"citation_count,default:0" json:"citation_count"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// PaperSummary is the dashboard projection of a paper.
type PaperSummary struct {
	ID     uuid.UUID `json:"id"`
	Title  string    `json:"title"`
	Topics []string  `json:"topics,omitempty"`
}
