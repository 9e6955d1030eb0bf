package utils_test

import (
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/splitledger/internal/utils"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-that-is-long-enough"

func TestGenerateAndParseJWT(t *testing.T) {
	token, err := utils.GenerateJWT(42, testSecret, time.Hour, "splitledger")
	require.NoError(t, err)

	userID, err := utils.ParseAndValidateJWT(token, testSecret, "splitledger")
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)

	// issuer check is skipped when none is configured
	userID, err = utils.ParseAndValidateJWT(token, testSecret, "")
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
}

func TestParseAndValidateJWT_Rejects(t *testing.T) {
	valid, err := utils.GenerateJWT(7, testSecret, time.Hour, "splitledger")
	require.NoError(t, err)
	expired, err := utils.GenerateJWT(7, testSecret, -time.Minute, "splitledger")
	require.NoError(t, err)
	nonNumeric, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		secret  string
		issuer  string
		wantErr error
	}{
		{name: "wrong secret", token: valid, secret: "another-secret", wantErr: jwt.ErrTokenSignatureInvalid},
		{name: "wrong issuer", token: valid, secret: testSecret, issuer: "other", wantErr: jwt.ErrTokenInvalidIssuer},
		{name: "expired", token: expired, secret: testSecret, wantErr: jwt.ErrTokenExpired},
		{name: "non-numeric subject", token: nonNumeric, secret: testSecret, wantErr: utils.ErrInvalidSubject},
		{name: "garbage", token: "not-a-jwt", secret: testSecret, wantErr: jwt.ErrTokenMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := utils.ParseAndValidateJWT(tt.token, tt.secret, tt.issuer)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestSecretHash(t *testing.T) {
	hash, err := utils.HashSecret("operator-token")
	require.NoError(t, err)

	assert.True(t, utils.CheckSecretHash("operator-token", hash))
	assert.False(t, utils.CheckSecretHash("wrong", hash))
	assert.False(t, utils.CheckSecretHash("operator-token", ""))
}
