package acadbond

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// ResetTokenTTL bounds how long a password reset link stays usable.
const ResetTokenTTL = time.Hour

// InitializePasswordResetMessage starts a reset for the given email.
type InitializePasswordResetMessage struct {
	Email      string `json:"email"`
	OnResponse func(*InitializePasswordResetResponse)
}

func (e InitializePasswordResetMessage) Type() string { return "user.password_reset" }

// InitializePasswordResetResponse reports whether a token was minted.
// Delivered stays false for unknown emails, but the HTTP layer must never
// surface the difference.
type InitializePasswordResetResponse struct {
	Delivered bool
	Success   bool
}

// InitializePasswordResetHandler mints a fresh reset token for a known
// email. Unknown emails succeed without side effects so the endpoint does
// not leak account existence.
type InitializePasswordResetHandler struct {
	repo     RepositoryManager
	notifier Notifier
	logger   Logger
}

// NewInitializePasswordResetHandler creates a handler with sane defaults.
func NewInitializePasswordResetHandler(repo RepositoryManager) *InitializePasswordResetHandler {
	return &InitializePasswordResetHandler{
		repo:     repo,
		notifier: NewLogNotifier(nil),
		logger:   defLogger{},
	}
}

// WithNotifier sets the notification collaborator.
func (h *InitializePasswordResetHandler) WithNotifier(n Notifier) *InitializePasswordResetHandler {
	if n != nil {
		h.notifier = n
	}
	return h
}

// WithLogger overrides the logger used by the handler.
func (h *InitializePasswordResetHandler) WithLogger(logger Logger) *InitializePasswordResetHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *InitializePasswordResetHandler) Execute(ctx context.Context, event InitializePasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset initialization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *InitializePasswordResetHandler) execute(ctx context.Context, event InitializePasswordResetMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	token, err := NewOneTimeToken()
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate reset token")
	}

	delivered := false
	var email string

	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		expiry := time.Now().Add(ResetTokenTTL)

		// A fresh request replaces any pending token for this user.
		user, err := h.repo.Users().SetResetTokenTx(ctx, tx, event.Email, token, expiry)
		if err != nil {
			if repository.IsRecordNotFound(err) || goerrors.IsNotFound(err) {
				// unknown email: succeed with no token, no notification
				return nil
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to set password reset token")
		}

		delivered = true
		email = user.Email
		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to initialize password reset")
	}

	if delivered {
		if err := h.notifier.SendPasswordReset(ctx, email, token); err != nil {
			h.logger.Error("password reset notification error", "error", err)
		}
	}

	if event.OnResponse != nil {
		event.OnResponse(&InitializePasswordResetResponse{Delivered: delivered, Success: true})
	}

	return nil
}
