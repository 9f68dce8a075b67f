package acadbond_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	acadbond "github.com/acadbond/acadbond"
)

func TestTokenServiceGenerate(t *testing.T) {
	signingKey := []byte("test-signing-key")
	service := acadbond.NewTokenService(signingKey, 24, "acadbond-test", jwt.ClaimStrings{"acadbond-test"}, nil)

	identity := new(MockIdentity)
	identity.On("ID").Return("user-123")
	identity.On("Email").Return("ada@example.com")
	identity.On("Role").Return("student")

	token, err := service.Generate(identity)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := service.Validate(token)
	require.NoError(t, err)

	assert.Equal(t, "user-123", claims.Subject())
	assert.Equal(t, "user-123", claims.UserID())
	assert.Equal(t, "ada@example.com", claims.Email())
	assert.Equal(t, "student", claims.Role())
	assert.True(t, claims.HasRole("student"))
	assert.False(t, claims.HasRole("professor"))

	identity.AssertExpectations(t)
}

func TestTokenServiceGenerateNilIdentity(t *testing.T) {
	service := acadbond.NewTokenService([]byte("test-signing-key"), 24, "acadbond-test", nil, nil)

	token, err := service.Generate(nil)
	assert.Error(t, err)
	assert.Empty(t, token)
}

func TestTokenServiceValidateExpired(t *testing.T) {
	signingKey := []byte("test-signing-key")
	service := acadbond.NewTokenService(signingKey, 24, "acadbond-test", nil, nil)

	now := time.Now().Add(-48 * time.Hour)
	claims := &acadbond.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "acadbond-test",
			Subject:   "user-123",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
		UID:       "user-123",
		UserEmail: "ada@example.com",
		UserType:  "student",
	}

	token, err := service.SignClaims(claims)
	require.NoError(t, err)

	_, err = service.Validate(token)
	require.Error(t, err)
	assert.True(t, acadbond.IsTokenExpiredError(err))
}

func TestTokenServiceValidateWrongKey(t *testing.T) {
	issuing := acadbond.NewTokenService([]byte("key-one"), 24, "acadbond-test", nil, nil)
	validating := acadbond.NewTokenService([]byte("key-two"), 24, "acadbond-test", nil, nil)

	identity := new(MockIdentity)
	identity.On("ID").Return("user-123")
	identity.On("Email").Return("ada@example.com")
	identity.On("Role").Return("student")

	token, err := issuing.Generate(identity)
	require.NoError(t, err)

	_, err = validating.Validate(token)
	require.Error(t, err)
	assert.True(t, acadbond.IsMalformedError(err))
}

func TestTokenServiceValidateWrongIssuer(t *testing.T) {
	signingKey := []byte("test-signing-key")
	issuing := acadbond.NewTokenService(signingKey, 24, "someone-else", nil, nil)
	validating := acadbond.NewTokenService(signingKey, 24, "acadbond-test", nil, nil)

	identity := new(MockIdentity)
	identity.On("ID").Return("user-123")
	identity.On("Email").Return("ada@example.com")
	identity.On("Role").Return("student")

	token, err := issuing.Generate(identity)
	require.NoError(t, err)

	_, err = validating.Validate(token)
	assert.Error(t, err)
}

func TestTokenServiceValidateRejectsUnsignedToken(t *testing.T) {
	service := acadbond.NewTokenService([]byte("test-signing-key"), 24, "acadbond-test", nil, nil)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "user-123",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = service.Validate(token)
	require.Error(t, err)
	assert.True(t, acadbond.IsMalformedError(err))
}

func TestTokenServiceValidateGarbage(t *testing.T) {
	service := acadbond.NewTokenService([]byte("test-signing-key"), 24, "acadbond-test", nil, nil)

	_, err := service.Validate("not-a-token")
	require.Error(t, err)
	assert.True(t, acadbond.IsMalformedError(err))
}
