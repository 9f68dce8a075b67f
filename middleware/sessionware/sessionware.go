// Package sessionware validates the session cookie on incoming requests and
// makes the typed claims available to handlers. It is read-only: it never
// refreshes or reissues tokens.
package sessionware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

const (
	// DefaultCookieName matches the cookie the login endpoint sets.
	DefaultCookieName = "token"
	// DefaultContextKey is where validated claims land in request Locals.
	DefaultContextKey = "session"
)

var (
	// ErrMissingSessionCookie is handed to the error handler when the
	// request carries no usable cookie.
	ErrMissingSessionCookie = errors.New("missing or empty session cookie")
	// ErrInsufficientRole is handed to the error handler when a valid
	// session carries the wrong role for the route.
	ErrInsufficientRole = errors.New("insufficient role")
)

// AuthClaims mirrors the claims surface of the root package without
// importing it, keeping this middleware dependency-light.
type AuthClaims interface {
	Subject() string
	UserID() string
	Email() string
	Role() string
	HasRole(role string) bool
}

// TokenValidator validates a raw cookie value into claims.
type TokenValidator interface {
	Validate(tokenString string) (AuthClaims, error)
}

// Config holds middleware options. TokenValidator is required.
type Config struct {
	// Filter skips the middleware when it returns true.
	Filter func(*fiber.Ctx) bool

	// ErrorHandler maps validation failures to a response. The default
	// answers 401 for missing/invalid sessions and 403 for role failures.
	ErrorHandler func(*fiber.Ctx, error) error

	// CookieName is the session cookie to read. Defaults to "token".
	CookieName string

	// ContextKey is the Locals key for validated claims.
	ContextKey string

	// TokenValidator validates the raw cookie value.
	TokenValidator TokenValidator

	// RequiredRole, when set, must match the claims role exactly.
	RequiredRole string

	// RoleChecker overrides the exact-match role check.
	RoleChecker func(AuthClaims, string) bool
}

// New returns a fiber handler enforcing an authenticated session.
func New(config ...Config) fiber.Handler {
	cfg := configDefault(config...)

	return func(c *fiber.Ctx) error {
		if cfg.Filter != nil && cfg.Filter(c) {
			return c.Next()
		}

		raw := c.Cookies(cfg.CookieName)
		if raw == "" {
			return cfg.ErrorHandler(c, ErrMissingSessionCookie)
		}

		claims, err := cfg.TokenValidator.Validate(raw)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		if cfg.RequiredRole != "" {
			checker := cfg.RoleChecker
			if checker == nil {
				checker = func(claims AuthClaims, role string) bool {
					return claims.HasRole(role)
				}
			}
			if !checker(claims, cfg.RequiredRole) {
				return cfg.ErrorHandler(c, ErrInsufficientRole)
			}
		}

		c.Locals(cfg.ContextKey, claims)

		return c.Next()
	}
}

// ClaimsFromContext returns the claims a successful run of the middleware
// stored for this request.
func ClaimsFromContext(c *fiber.Ctx, contextKey ...string) (AuthClaims, bool) {
	key := DefaultContextKey
	if len(contextKey) > 0 && contextKey[0] != "" {
		key = contextKey[0]
	}

	claims, ok := c.Locals(key).(AuthClaims)
	if !ok || claims == nil {
		return nil, false
	}
	return claims, true
}

func configDefault(config ...Config) Config {
	cfg := Config{}
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.CookieName == "" {
		cfg.CookieName = DefaultCookieName
	}
	if cfg.ContextKey == "" {
		cfg.ContextKey = DefaultContextKey
	}
	if cfg.TokenValidator == nil {
		panic("sessionware: TokenValidator is required")
	}
	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = defaultErrorHandler
	}

	return cfg
}

func defaultErrorHandler(c *fiber.Ctx, err error) error {
	if errors.Is(err, ErrInsufficientRole) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"error":   "insufficient role",
		})
	}

	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"success": false,
		"error":   "authentication required",
	})
}
