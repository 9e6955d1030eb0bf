package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/SscSPs/splitledger/internal/platform/config"
	"github.com/SscSPs/splitledger/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(production bool) func() (*config.Config, error) {
	return func() (*config.Config, error) {
		return &config.Config{
			JWTSecret:    "test-secret-key-that-is-long-enough",
			JWTIssuer:    "splitledger-test",
			IsProduction: production,
		}, nil
	}
}

func TestHashToken(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		stdin string
	}{
		{name: "argument", args: []string{"hash-token", "s3cret"}},
		{name: "stdin", args: []string{"hash-token"}, stdin: "s3cret\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			require.NoError(t, run(tt.args, strings.NewReader(tt.stdin), &out, testConfig(false)))

			hash := strings.TrimSpace(out.String())
			assert.True(t, utils.CheckSecretHash("s3cret", hash), "the printed hash admits the token")
			assert.False(t, utils.CheckSecretHash("other", hash))
		})
	}

	var out bytes.Buffer
	assert.Error(t, run([]string{"hash-token"}, strings.NewReader("\n"), &out, testConfig(false)))
	assert.Empty(t, out.String())
}

func TestDevToken(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"dev-token", "--user", "7", "--ttl", "5m"}, nil, &out, testConfig(false)))

	userID, err := utils.ParseAndValidateJWT(strings.TrimSpace(out.String()), "test-secret-key-that-is-long-enough", "splitledger-test")
	require.NoError(t, err)
	assert.Equal(t, int64(7), userID)
}

func TestDevToken_Rejections(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		production bool
	}{
		{name: "missing user", args: []string{"dev-token"}},
		{name: "negative ttl", args: []string{"dev-token", "--user", "7", "--ttl", "-1m"}},
		{name: "unknown flag", args: []string{"dev-token", "--user", "7", "--admin"}},
		{name: "production", args: []string{"dev-token", "--user", "7"}, production: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			assert.Error(t, run(tt.args, nil, &out, testConfig(tt.production)))
			assert.Empty(t, out.String())
		})
	}
}

func TestRun_Usage(t *testing.T) {
	assert.ErrorIs(t, run(nil, nil, &bytes.Buffer{}, testConfig(false)), errUsage)
	assert.ErrorIs(t, run([]string{"rotate"}, nil, &bytes.Buffer{}, testConfig(false)), errUsage)
}
