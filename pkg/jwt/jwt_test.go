package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "messenger/pkg/errors"
)

const testSecret = "test-secret"

func TestAccessTokenRoundTrip(t *testing.T) {
	req := require.New(t)

	token, err := GenerateAccessToken(42, "user@example.com", "user", testSecret, time.Hour)
	req.NoError(err)

	claims, err := ValidateToken(token, testSecret)
	req.NoError(err)
	req.Equal(int64(42), claims.UserID)
	req.Equal("user@example.com", claims.Email)
	req.Equal("user", claims.Username)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	req := require.New(t)

	token, err := GenerateAccessToken(42, "user@example.com", "user", testSecret, time.Hour)
	req.NoError(err)

	_, err = ValidateToken(token, "other-secret")
	req.ErrorIs(err, apperrors.ErrInvalidToken)
}

func TestValidateTokenExpired(t *testing.T) {
	req := require.New(t)

	token, err := GenerateAccessToken(42, "user@example.com", "user", testSecret, -time.Minute)
	req.NoError(err)

	_, err = ValidateToken(token, testSecret)
	req.ErrorIs(err, apperrors.ErrTokenExpired)
}

func TestValidateTokenGarbage(t *testing.T) {
	_, err := ValidateToken("not-a-token", testSecret)
	require.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	req := require.New(t)

	token, err := GenerateRefreshToken(42, testSecret, time.Hour)
	req.NoError(err)

	claims, err := ValidateRefreshToken(token, testSecret)
	req.NoError(err)
	req.Equal("42", claims.Subject)
}

func TestRefreshTokenExpired(t *testing.T) {
	req := require.New(t)

	token, err := GenerateRefreshToken(42, testSecret, -time.Minute)
	req.NoError(err)

	_, err = ValidateRefreshToken(token, testSecret)
	req.ErrorIs(err, apperrors.ErrInvalidToken)
}
