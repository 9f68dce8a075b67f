package acadbond_test

import (
	"context"

	acadbond "github.com/acadbond/acadbond"
	"github.com/stretchr/testify/mock"
)

// MockIdentity implements acadbond.Identity
type MockIdentity struct {
	mock.Mock
}

func (m *MockIdentity) ID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockIdentity) Email() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockIdentity) Role() string {
	args := m.Called()
	return args.String(0)
}

// MockLogger implements acadbond.Logger
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Info(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Error(format string, args ...any) {
	m.Called(format, args)
}

// MockIdentityProvider implements acadbond.IdentityProvider
type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) VerifyIdentity(ctx context.Context, identifier, password string) (acadbond.Identity, error) {
	args := m.Called(ctx, identifier, password)
	identity, _ := args.Get(0).(acadbond.Identity)
	return identity, args.Error(1)
}

func (m *MockIdentityProvider) FindIdentityByIdentifier(ctx context.Context, identifier string) (acadbond.Identity, error) {
	args := m.Called(ctx, identifier)
	identity, _ := args.Get(0).(acadbond.Identity)
	return identity, args.Error(1)
}

// MockLoginPayload implements acadbond.LoginPayload
type MockLoginPayload struct {
	Identifier string
	Password   string
}

func (m MockLoginPayload) GetIdentifier() string {
	return m.Identifier
}

func (m MockLoginPayload) GetPassword() string {
	return m.Password
}

// MockNotifier implements acadbond.Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendEmailVerification(ctx context.Context, email, token string) error {
	args := m.Called(ctx, email, token)
	return args.Error(0)
}

func (m *MockNotifier) SendPasswordReset(ctx context.Context, email, token string) error {
	args := m.Called(ctx, email, token)
	return args.Error(0)
}

// testConfig implements acadbond.Config
type testConfig struct {
	signingKey string
	ttlHours   int
	issuer     string
	audience   []string
	cookieName string
}

func newTestConfig() testConfig {
	return testConfig{
		signingKey: "test-signing-key",
		ttlHours:   24,
		issuer:     "acadbond-test",
		audience:   []string{"acadbond-test"},
		cookieName: "token",
	}
}

func (c testConfig) GetSigningKey() string    { return c.signingKey }
func (c testConfig) GetSigningMethod() string { return "HS256" }
func (c testConfig) GetCookieName() string {
	if c.cookieName == "" {
		return "token"
	}
	return c.cookieName
}
func (c testConfig) GetContextKey() string   { return "session" }
func (c testConfig) GetTokenExpiration() int { return c.ttlHours }
func (c testConfig) GetIssuer() string       { return c.issuer }
func (c testConfig) GetAudience() []string   { return c.audience }
