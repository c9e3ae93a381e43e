package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-jwt-signing-32-chars"

func TestAccessTokenRoundTrip(t *testing.T) {
	token, err := GenerateAccessToken("user-1", "Ravi Transport", "sales", testSecret, 15)
	require.NoError(t, err)

	claims, err := ValidateAccessToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "sales", claims.Role)
	assert.Equal(t, Issuer, claims.Issuer)
}

func TestValidateAccessToken_Failures(t *testing.T) {
	valid, err := GenerateAccessToken("user-1", "A", "admin", testSecret, 15)
	require.NoError(t, err)
	expired, err := GenerateAccessToken("user-1", "A", "admin", testSecret, -5)
	require.NoError(t, err)
	noSubject, err := GenerateAccessToken("", "A", "admin", testSecret, 15)
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		secret  string
		wantErr error
	}{
		{"wrong secret", valid, "another-secret", ErrTokenInvalid},
		{"expired", expired, testSecret, ErrTokenExpired},
		{"garbage", "not.a.jwt", testSecret, ErrTokenInvalid},
		{"empty", "", testSecret, ErrTokenInvalid},
		{"missing user", noSubject, testSecret, ErrTokenInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := ValidateAccessToken(tt.token, tt.secret)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, claims)
		})
	}
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	token, err := GenerateRefreshToken("user-1", "token-1", testSecret, 7)
	require.NoError(t, err)

	claims, err := ValidateRefreshToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "token-1", claims.TokenID)

	_, err = ValidateAccessToken(token, "wrong")
	assert.Error(t, err)
}

func TestTokenTypesAreNotInterchangeable(t *testing.T) {
	// same secret for both kinds, the type claim alone must keep them apart
	refresh, err := GenerateRefreshToken("user-1", "token-1", testSecret, 30)
	require.NoError(t, err)
	access, err := GenerateAccessToken("user-1", "A", "admin", testSecret, 15)
	require.NoError(t, err)

	claims, err := ValidateAccessToken(refresh, testSecret)
	assert.ErrorIs(t, err, ErrTokenInvalid)
	assert.Nil(t, claims)

	refreshClaims, err := ValidateRefreshToken(access, testSecret)
	assert.ErrorIs(t, err, ErrTokenInvalid)
	assert.Nil(t, refreshClaims)
}
