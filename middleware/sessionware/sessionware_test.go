package sessionware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acadbond/acadbond/middleware/sessionware"
)

type stubClaims struct {
	subject string
	email   string
	role    string
}

func (c stubClaims) Subject() string { return c.subject }
func (c stubClaims) UserID() string  { return c.subject }
func (c stubClaims) Email() string   { return c.email }
func (c stubClaims) Role() string    { return c.role }
func (c stubClaims) HasRole(role string) bool {
	return c.role == role
}

type stubValidator struct {
	claims sessionware.AuthClaims
	err    error
	seen   string
}

func (v *stubValidator) Validate(raw string) (sessionware.AuthClaims, error) {
	v.seen = raw
	if v.err != nil {
		return nil, v.err
	}
	return v.claims, nil
}

func newApp(handler fiber.Handler, cfg sessionware.Config) *fiber.App {
	app := fiber.New()
	app.Get("/protected", sessionware.New(cfg), handler)
	return app
}

func requestWithCookie(cookie string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: "token", Value: cookie})
	}
	return req
}

func TestMissingCookie(t *testing.T) {
	validator := &stubValidator{claims: stubClaims{subject: "user-123", role: "student"}}
	app := newApp(func(c *fiber.Ctx) error {
		return c.SendString("ok")
	}, sessionware.Config{TokenValidator: validator})

	resp, err := app.Test(requestWithCookie(""))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Empty(t, validator.seen)
}

func TestInvalidToken(t *testing.T) {
	validator := &stubValidator{err: errors.New("token is malformed")}
	app := newApp(func(c *fiber.Ctx) error {
		return c.SendString("ok")
	}, sessionware.Config{TokenValidator: validator})

	resp, err := app.Test(requestWithCookie("garbage"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "garbage", validator.seen)
}

func TestValidTokenStoresClaims(t *testing.T) {
	validator := &stubValidator{claims: stubClaims{subject: "user-123", email: "ada@example.com", role: "student"}}

	app := newApp(func(c *fiber.Ctx) error {
		claims, ok := sessionware.ClaimsFromContext(c)
		require.True(t, ok)
		return c.SendString(claims.UserID())
	}, sessionware.Config{TokenValidator: validator})

	resp, err := app.Test(requestWithCookie("valid-token"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequiredRoleMatch(t *testing.T) {
	validator := &stubValidator{claims: stubClaims{subject: "user-123", role: "student"}}

	app := newApp(func(c *fiber.Ctx) error {
		return c.SendString("ok")
	}, sessionware.Config{TokenValidator: validator, RequiredRole: "student"})

	resp, err := app.Test(requestWithCookie("valid-token"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequiredRoleMismatch(t *testing.T) {
	validator := &stubValidator{claims: stubClaims{subject: "user-123", role: "professor"}}

	app := newApp(func(c *fiber.Ctx) error {
		return c.SendString("ok")
	}, sessionware.Config{TokenValidator: validator, RequiredRole: "student"})

	resp, err := app.Test(requestWithCookie("valid-token"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestFilterSkipsMiddleware(t *testing.T) {
	validator := &stubValidator{err: errors.New("should not run")}

	app := newApp(func(c *fiber.Ctx) error {
		return c.SendString("ok")
	}, sessionware.Config{
		TokenValidator: validator,
		Filter:         func(c *fiber.Ctx) bool { return true },
	})

	resp, err := app.Test(requestWithCookie(""))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestCustomErrorHandler(t *testing.T) {
	validator := &stubValidator{err: errors.New("nope")}

	app := newApp(func(c *fiber.Ctx) error {
		return c.SendString("ok")
	}, sessionware.Config{
		TokenValidator: validator,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusTeapot).SendString(err.Error())
		},
	})

	resp, err := app.Test(requestWithCookie("bad"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTeapot, resp.StatusCode)
}

func TestCustomRoleChecker(t *testing.T) {
	validator := &stubValidator{claims: stubClaims{subject: "user-123", role: "professor"}}

	app := newApp(func(c *fiber.Ctx) error {
		return c.SendString("ok")
	}, sessionware.Config{
		TokenValidator: validator,
		RequiredRole:   "student",
		RoleChecker: func(claims sessionware.AuthClaims, role string) bool {
			// allow professors through anyway
			return true
		},
	})

	resp, err := app.Test(requestWithCookie("valid-token"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestNewPanicsWithoutValidator(t *testing.T) {
	assert.Panics(t, func() {
		sessionware.New(sessionware.Config{})
	})
}

func TestClaimsFromContextMissing(t *testing.T) {
	app := fiber.New()
	app.Get("/open", func(c *fiber.Ctx) error {
		_, ok := sessionware.ClaimsFromContext(c)
		assert.False(t, ok)
		return c.SendString("ok")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/open", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
