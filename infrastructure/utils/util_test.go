package utils

import (
	"testing"
	"time"

	"alfreds-toolbox/domain/model"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func TestNonce_RoundTrip(t *testing.T) {
	nonce, err := CreateNonce("clear_spotify_cache", secret)
	require.NoError(t, err)

	assert.NoError(t, VerifyNonce(nonce, "clear_spotify_cache", secret))
	assert.ErrorIs(t, VerifyNonce(nonce, "clear_analytics_cache", secret), ErrInvalidNonce)
	assert.ErrorIs(t, VerifyNonce(nonce, "clear_spotify_cache", "other-secret"), ErrInvalidNonce)
	assert.ErrorIs(t, VerifyNonce("", "clear_spotify_cache", secret), ErrInvalidNonce)
}

func TestNonce_Expired(t *testing.T) {
	expired, err := GenerateToken(map[string]interface{}{
		"action": "get_analytics_data",
		"exp":    time.Now().Add(-time.Minute).Unix(),
	}, secret)
	require.NoError(t, err)

	assert.ErrorIs(t, VerifyNonce(expired, "get_analytics_data", secret), ErrInvalidNonce)
}

func TestCreateNonce_RequiresSecret(t *testing.T) {
	_, err := CreateNonce("x", "")
	assert.ErrorIs(t, err, model.ErrConfigurationMissing)
}

func TestAdminToken(t *testing.T) {
	token, err := GenerateAdminToken("alfred", []string{model.CapabilityManageOptions}, time.Hour, secret)
	require.NoError(t, err)

	claims, err := ParseAdminToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, "alfred", claims.UserName)
	assert.True(t, claims.Can(model.CapabilityManageOptions))
	assert.False(t, claims.Can("edit_posts"))

	_, err = ParseAdminToken(token, "wrong")
	var ve *jwt.ValidationError
	assert.ErrorAs(t, err, &ve)
}
