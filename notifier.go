package acadbond

import "context"

// Notifier is the external notification collaborator. The core hands a
// freshly minted one-time token to it and never looks back; delivery is not
// part of the token lifecycle.
type Notifier interface {
	SendEmailVerification(ctx context.Context, email, token string) error
	SendPasswordReset(ctx context.Context, email, token string) error
}

type logNotifier struct {
	logger Logger
}

// NewLogNotifier returns a Notifier that writes the would-be email to the
// log. It is the default until a real sender is wired in.
func NewLogNotifier(logger Logger) Notifier {
	if logger == nil {
		logger = defLogger{}
	}
	return &logNotifier{logger: logger}
}

func (n *logNotifier) SendEmailVerification(ctx context.Context, email, token string) error {
	n.logger.Info("email verification notification", "to", email, "link", "/verifyemail?token="+token)
	return nil
}

func (n *logNotifier) SendPasswordReset(ctx context.Context, email, token string) error {
	n.logger.Info("password reset notification", "to", email, "link", "/reset-password/"+token)
	return nil
}
