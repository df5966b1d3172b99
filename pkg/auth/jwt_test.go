package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	session := UserSession{
		ID:         "user-1",
		Name:       "Alex Freight",
		Email:      "alex@example.com",
		ProfileID:  "standard",
		CustomerID: "cust-1",
	}

	token, err := GenerateToken(session)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, session, claims.User)
	assert.NotEmpty(t, claims.RegisteredClaims.ID, "token must carry a JTI for session tracking")
	assert.True(t, claims.ExpiresAt.After(claims.IssuedAt.Time))
}

func TestValidateRejectsTamperedToken(t *testing.T) {
	token, err := GenerateToken(UserSession{ID: "user-1"})
	require.NoError(t, err)

	_, err = ValidateToken(token + "x")
	assert.Error(t, err)
}

func TestDecodeTokenWithoutValidation(t *testing.T) {
	token, err := GenerateToken(UserSession{ID: "user-1", ProfileID: "admin"})
	require.NoError(t, err)

	claims, err := DecodeToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.User.ID)
	assert.True(t, claims.User.IsAdmin())
}

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.True(t, VerifyPassword("correct horse battery staple", hash))
	assert.False(t, VerifyPassword("wrong password", hash))
}
