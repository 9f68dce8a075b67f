package acadbond

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
)

var (
	passwordDigit   = regexp.MustCompile(`[0-9]`)
	passwordSpecial = regexp.MustCompile(`[^a-zA-Z0-9]`)
)

// ValidatePasswordPolicy enforces the account password policy: at least 8
// characters, at least one digit, at least one special character. Failures
// come back as ErrWeakPassword with the violated rule in the metadata.
func ValidatePasswordPolicy(password string) error {
	err := validation.Validate(password,
		validation.Required.Error("password is required"),
		validation.Length(8, 128).Error("must be at least 8 characters"),
		validation.Match(passwordDigit).Error("must contain a digit"),
		validation.Match(passwordSpecial).Error("must contain a special character"),
	)
	if err == nil {
		return nil
	}

	return goerrors.Wrap(ErrWeakPassword, ErrWeakPassword.Category, ErrWeakPassword.Message).
		WithTextCode(ErrWeakPassword.TextCode).
		WithCode(ErrWeakPassword.Code).
		WithMetadata(map[string]any{"reason": err.Error()})
}
