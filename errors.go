package acadbond

import (
	goerrors "github.com/goliatone/go-errors"
)

const (
	// TextCodeInvalidCredentials flags the flattened login failure.
	TextCodeInvalidCredentials = "INVALID_CREDENTIALS"
	// TextCodeInvalidOrExpiredToken flags a one-time token that is unknown,
	// already consumed, or past its expiry.
	TextCodeInvalidOrExpiredToken = "INVALID_OR_EXPIRED_TOKEN"
	// TextCodeWeakPassword flags a password failing the reset policy.
	TextCodeWeakPassword = "WEAK_PASSWORD"
	// TextCodeTokenExpired flags a session token past its TTL.
	TextCodeTokenExpired = "TOKEN_EXPIRED"
	// TextCodeTokenMalformed flags a session token we could not verify.
	TextCodeTokenMalformed = "TOKEN_MALFORMED"
	// TextCodeUnauthenticated flags requests with no usable session.
	TextCodeUnauthenticated = "UNAUTHENTICATED"
	// TextCodeForbidden flags an authenticated request with the wrong role.
	TextCodeForbidden = "FORBIDDEN"
	// TextCodeEmptyPassword flags an empty cleartext password.
	TextCodeEmptyPassword = "EMPTY_PASSWORD"
	// TextCodeClaimsMappingError flags claims we could not project.
	TextCodeClaimsMappingError = "CLAIMS_MAPPING_ERROR"
	// TextCodeStoreUnavailable flags transient credential store failures.
	TextCodeStoreUnavailable = "STORE_UNAVAILABLE"
)

// ErrInvalidCredentials is returned for both unknown emails and wrong
// passwords so the login surface cannot be used to probe for accounts.
var ErrInvalidCredentials = goerrors.New("invalid email or password", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(goerrors.CodeUnauthorized)

// ErrInvalidOrExpiredToken is returned when a verify-email or password-reset
// token does not match a pending record. Consumed and expired tokens are
// indistinguishable on purpose.
var ErrInvalidOrExpiredToken = goerrors.New("invalid or expired token", goerrors.CategoryValidation).
	WithTextCode(TextCodeInvalidOrExpiredToken).
	WithCode(goerrors.CodeBadRequest)

// ErrWeakPassword is returned when a new password fails the policy.
var ErrWeakPassword = goerrors.New("password does not meet the policy", goerrors.CategoryValidation).
	WithTextCode(TextCodeWeakPassword).
	WithCode(goerrors.CodeBadRequest)

// ErrTokenExpired is returned when a session token is past its TTL.
var ErrTokenExpired = goerrors.New("token is expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenMalformed covers tokens we could not parse or whose signature,
// algorithm, issuer, or audience did not check out.
var ErrTokenMalformed = goerrors.New("token is malformed", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(goerrors.CodeUnauthorized)

// ErrUnauthenticated is raised by the session middleware when the cookie is
// missing, unreadable, or failed validation.
var ErrUnauthenticated = goerrors.New("authentication required", goerrors.CategoryAuth).
	WithTextCode(TextCodeUnauthenticated).
	WithCode(goerrors.CodeUnauthorized)

// ErrForbidden is raised when a valid session carries the wrong role for
// the requested surface (e.g. a professor hitting the student dashboard).
var ErrForbidden = goerrors.New("insufficient role", goerrors.CategoryAuthz).
	WithTextCode(TextCodeForbidden).
	WithCode(goerrors.CodeForbidden)

// ErrNoEmptyString rejects empty cleartext passwords before hashing.
var ErrNoEmptyString = goerrors.New("password must not be empty", goerrors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword).
	WithCode(goerrors.CodeBadRequest)

// ErrUnableToMapClaims is returned when token claims cannot be projected
// into a session.
var ErrUnableToMapClaims = goerrors.New("unable to map claims", goerrors.CategoryAuth).
	WithTextCode(TextCodeClaimsMappingError).
	WithCode(goerrors.CodeUnauthorized)

// ErrIdentityNotFound is the internal not-found for identity lookups. The
// login path flattens it into ErrInvalidCredentials before it crosses the
// HTTP boundary.
var ErrIdentityNotFound = goerrors.New("identity not found", goerrors.CategoryNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrTooManyLoginAttempts is returned once the attempt counter passes
// MaxLoginAttempts inside the cooldown window.
var ErrTooManyLoginAttempts = goerrors.New("too many login attempts", goerrors.CategoryAuth).
	WithTextCode("TOO_MANY_LOGIN_ATTEMPTS").
	WithCode(goerrors.CodeUnauthorized)

// WrapStoreError marks a driver/storage failure as retryable-by-caller.
func WrapStoreError(err error, msg string) error {
	return goerrors.Wrap(err, goerrors.CategoryInternal, msg).
		WithTextCode(TextCodeStoreUnavailable)
}

// IsTokenExpiredError reports whether err represents an expired session token.
func IsTokenExpiredError(err error) bool {
	return hasTextCode(err, ErrTokenExpired, TextCodeTokenExpired)
}

// IsMalformedError reports whether err represents an unverifiable token.
func IsMalformedError(err error) bool {
	return hasTextCode(err, ErrTokenMalformed, TextCodeTokenMalformed)
}

func hasTextCode(err error, sentinel *goerrors.Error, textCode string) bool {
	if err == nil {
		return false
	}
	if goerrors.Is(err, sentinel) {
		return true
	}
	var richErr *goerrors.Error
	return goerrors.As(err, &richErr) && richErr.TextCode == textCode
}
