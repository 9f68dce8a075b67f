package acadbond

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// VerifyEmailMessage carries a verification token from the client link.
type VerifyEmailMessage struct {
	Token      string `json:"token"`
	OnResponse func(*VerifyEmailResponse)
}

func (e VerifyEmailMessage) Type() string { return "user.verify_email" }

// VerifyEmailResponse reports the verified user.
type VerifyEmailResponse struct {
	User    *User
	Success bool
}

// VerifyEmailHandler consumes a one-time verification token. The token is
// single-use: the compare-and-clear update makes a second call with the
// same token fail with ErrInvalidOrExpiredToken.
type VerifyEmailHandler struct {
	repo   RepositoryManager
	logger Logger
}

// NewVerifyEmailHandler creates a handler with sane defaults.
func NewVerifyEmailHandler(repo RepositoryManager) *VerifyEmailHandler {
	return &VerifyEmailHandler{
		repo:   repo,
		logger: defLogger{},
	}
}

// WithLogger overrides the logger used by the handler.
func (h *VerifyEmailHandler) WithLogger(logger Logger) *VerifyEmailHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *VerifyEmailHandler) Execute(ctx context.Context, event VerifyEmailMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during email verification")
	default:
		return h.execute(ctx, event)
	}
}

func (h *VerifyEmailHandler) execute(ctx context.Context, event VerifyEmailMessage) error {
	user := &User{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		verified, err := h.repo.Users().ConsumeVerifyTokenTx(ctx, tx, event.Token, time.Now())
		if err != nil {
			if goerrors.Is(err, ErrInvalidOrExpiredToken) {
				return err
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to consume verification token")
		}

		user = verified
		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to verify email")
	}

	if event.OnResponse != nil {
		event.OnResponse(&VerifyEmailResponse{User: user, Success: true})
	}

	return nil
}
