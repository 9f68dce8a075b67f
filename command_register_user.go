package acadbond

import (
	"context"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/uptrace/bun"
)

// VerifyTokenTTL bounds how long an email verification link stays usable.
const VerifyTokenTTL = 24 * time.Hour

// RegisterUserMessage carries a signup request. Role-specific profile fields
// are optional at signup and can be filled in later.
type RegisterUserMessage struct {
	FirstName      string   `json:"first_name"`
	LastName       string   `json:"last_name"`
	Email          string   `json:"email"`
	Password       string   `json:"password"`
	UserType       string   `json:"user_type"`
	CollegeName    string   `json:"college_name,omitempty"`
	GraduationYear int      `json:"graduation_year,omitempty"`
	CGPA           float64  `json:"cgpa,omitempty"`
	Position       string   `json:"position,omitempty"`
	ScholarURL     string   `json:"scholar_url,omitempty"`
	Interests      []string `json:"interests,omitempty"`
	UseHashid      bool     `json:"-"`
	OnResponse     func(*RegisterUserResponse)
}

func (e RegisterUserMessage) Type() string { return "user.register" }

// RegisterUserResponse reports the created (unverified) user.
type RegisterUserResponse struct {
	User    *User
	Success bool
}

// RegisterUserHandler creates an unverified user with a pending verification
// token and notifies them.
type RegisterUserHandler struct {
	repo     RepositoryManager
	notifier Notifier
	logger   Logger
}

// NewRegisterUserHandler creates a handler with sane defaults.
func NewRegisterUserHandler(repo RepositoryManager) *RegisterUserHandler {
	return &RegisterUserHandler{
		repo:     repo,
		notifier: NewLogNotifier(nil),
		logger:   defLogger{},
	}
}

// WithNotifier sets the notification collaborator.
func (h *RegisterUserHandler) WithNotifier(n Notifier) *RegisterUserHandler {
	if n != nil {
		h.notifier = n
	}
	return h
}

// WithLogger overrides the logger used by the handler.
func (h *RegisterUserHandler) WithLogger(logger Logger) *RegisterUserHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *RegisterUserHandler) Execute(ctx context.Context, event RegisterUserMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterUserHandler) execute(ctx context.Context, event RegisterUserMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	role, ok := ParseRole(event.UserType)
	if !ok {
		return goerrors.New("unknown user type", goerrors.CategoryBadInput).
			WithMetadata(map[string]any{"user_type": event.UserType})
	}

	if err := ValidatePasswordPolicy(event.Password); err != nil {
		return err
	}

	user := &User{}
	verifyToken, err := NewOneTimeToken()
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate verification token")
	}

	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		hash, err := HashPassword(event.Password)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return richErr
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		expiry := time.Now().Add(VerifyTokenTTL)

		user.Email = strings.ToLower(strings.TrimSpace(event.Email))
		user.PasswordHash = hash
		user.UserType = role
		user.FirstName = event.FirstName
		user.LastName = event.LastName
		user.CollegeName = event.CollegeName
		user.GraduationYear = event.GraduationYear
		user.CGPA = event.CGPA
		user.Position = event.Position
		user.ScholarURL = event.ScholarURL
		user.Interests = event.Interests
		user.IsVerified = false
		user.VerifyToken = &verifyToken
		user.VerifyTokenExpiry = &expiry

		if event.UseHashid {
			if id, err := hashid.NewUUID(user.Email); err == nil {
				user.ID = id
			}
		}

		created, err := h.repo.Users().RegisterTx(ctx, tx, user)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create user record")
		}
		user = created

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to register user")
	}

	if err := h.notifier.SendEmailVerification(ctx, user.Email, verifyToken); err != nil {
		h.logger.Error("verification notification error", "error", err)
	}

	if event.OnResponse != nil {
		event.OnResponse(&RegisterUserResponse{User: user, Success: true})
	}

	return nil
}
