package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345"

func TestHashAndCheckPassword(t *testing.T) {
	t.Run("hash then verify", func(t *testing.T) {
		hashed, err := HashPassword("sensei2024")
		require.NoError(t, err)
		assert.NotEqual(t, "sensei2024", hashed)

		assert.True(t, CheckPassword(hashed, "sensei2024"))
		assert.False(t, CheckPassword(hashed, "wrong"))
		assert.False(t, CheckPassword(hashed, ""))
	})

	t.Run("same password hashes differently", func(t *testing.T) {
		h1, _ := HashPassword("repeat")
		h2, _ := HashPassword("repeat")
		assert.NotEqual(t, h1, h2)
	})
}

func TestGenerateTokens(t *testing.T) {
	t.Run("issues both tokens", func(t *testing.T) {
		access, refresh, err := GenerateTokens(7, "member@dojo.nz", "user", testSecret, testSecret)
		require.NoError(t, err)
		assert.NotEmpty(t, access)
		assert.NotEmpty(t, refresh)
		assert.NotEqual(t, access, refresh)
	})

	t.Run("empty secret rejected", func(t *testing.T) {
		_, _, err := GenerateTokens(7, "member@dojo.nz", "user", "", testSecret)
		assert.ErrorIs(t, err, ErrEmptyJWTSecret)

		_, _, err = GenerateTokens(7, "member@dojo.nz", "user", testSecret, "")
		assert.ErrorIs(t, err, ErrEmptyJWTSecret)
	})

	t.Run("access token carries claims", func(t *testing.T) {
		access, _, err := GenerateTokens(42, "admin@dojo.nz", "admin", testSecret, testSecret)
		require.NoError(t, err)

		claims, err := ValidateToken(access, testSecret)
		require.NoError(t, err)
		assert.Equal(t, 42, claims.UserID)
		assert.Equal(t, "admin@dojo.nz", claims.Email)
		assert.Equal(t, "admin", claims.Role)
		assert.Equal(t, "access", claims.TokenType)
		assert.Equal(t, jwtIssuer, claims.Issuer)
		assert.Contains(t, claims.Audience, jwtAudience)
	})
}

func TestValidateToken(t *testing.T) {
	t.Run("wrong secret", func(t *testing.T) {
		token, _ := GenerateAccessToken(1, "member@dojo.nz", "user", testSecret)
		claims, err := ValidateToken(token, "other-secret")
		assert.Error(t, err)
		assert.Nil(t, claims)
	})

	t.Run("malformed token", func(t *testing.T) {
		claims, err := ValidateToken("not.a.token", testSecret)
		assert.Error(t, err)
		assert.Nil(t, claims)
	})

	t.Run("expired token", func(t *testing.T) {
		past := time.Now().Add(-time.Hour)
		claims := &JWTClaims{
			UserID:    1,
			Email:     "member@dojo.nz",
			Role:      "user",
			TokenType: "access",
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    jwtIssuer,
				Audience:  []string{jwtAudience},
				ExpiresAt: jwt.NewNumericDate(past),
				IssuedAt:  jwt.NewNumericDate(past.Add(-AccessTokenTTL)),
			},
		}
		tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)

		validated, err := ValidateToken(tokenString, testSecret)
		assert.ErrorIs(t, err, ErrTokenExpired)
		assert.Nil(t, validated)
	})
}

func TestRefreshAccessToken(t *testing.T) {
	accessSecret := "access-secret"
	refreshSecret := "refresh-secret"

	t.Run("refresh yields valid access token", func(t *testing.T) {
		refreshToken, err := GenerateRefreshToken(9, "member@dojo.nz", "user", refreshSecret)
		require.NoError(t, err)

		newAccess, claims, err := RefreshAccessToken(refreshToken, refreshSecret, accessSecret)
		require.NoError(t, err)
		assert.Equal(t, 9, claims.UserID)

		accessClaims, err := ValidateToken(newAccess, accessSecret)
		require.NoError(t, err)
		assert.Equal(t, "access", accessClaims.TokenType)
	})

	t.Run("access token rejected as refresh", func(t *testing.T) {
		access, err := GenerateAccessToken(9, "member@dojo.nz", "user", accessSecret)
		require.NoError(t, err)

		_, _, err = RefreshAccessToken(access, accessSecret, accessSecret)
		assert.ErrorIs(t, err, ErrInvalidTokenType)
	})
}

func TestTokenTTLs(t *testing.T) {
	access, err := GenerateAccessToken(1, "member@dojo.nz", "user", testSecret)
	require.NoError(t, err)
	accessClaims, err := ValidateToken(access, testSecret)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(AccessTokenTTL), accessClaims.ExpiresAt.Time, 2*time.Second)

	refresh, err := GenerateRefreshToken(1, "member@dojo.nz", "user", testSecret)
	require.NoError(t, err)
	refreshClaims, err := ValidateToken(refresh, testSecret)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(RefreshTokenTTL), refreshClaims.ExpiresAt.Time, 2*time.Second)
}
