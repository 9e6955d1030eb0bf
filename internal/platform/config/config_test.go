package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, StorageMemory, cfg.StorageDriver)
	assert.Equal(t, "8080", cfg.Port)
	assert.True(t, decimal.New(1, -2).Equal(cfg.AmountTolerance))
	assert.Equal(t, 2*time.Second, cfg.AggregateLockTimeout)
	assert.Equal(t, 3, cfg.ConflictMaxRetries)
	assert.Equal(t, "100-M", cfg.RateLimit)
	assert.Equal(t, 256, cfg.EventBufferSize)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSAllowedOrigins)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/ledger.db")
	t.Setenv("AMOUNT_TOLERANCE", "0.05")
	t.Setenv("AGGREGATE_LOCK_TIMEOUT", "500ms")
	t.Setenv("CONFLICT_MAX_RETRIES", "5")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, StorageSQLite, cfg.StorageDriver)
	assert.Equal(t, "/tmp/ledger.db", cfg.SQLitePath)
	assert.True(t, decimal.RequireFromString("0.05").Equal(cfg.AmountTolerance))
	assert.Equal(t, 500*time.Millisecond, cfg.AggregateLockTimeout)
	assert.Equal(t, 5, cfg.ConflictMaxRetries)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
}

func TestFromViper_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  any
	}{
		{name: "unknown storage driver", key: "STORAGE_DRIVER", val: "mongo"},
		{name: "non-numeric tolerance", key: "AMOUNT_TOLERANCE", val: "abc"},
		{name: "negative tolerance", key: "AMOUNT_TOLERANCE", val: "-0.01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			v.Set("STORAGE_DRIVER", "memory")
			v.Set("AMOUNT_TOLERANCE", "0.01")
			v.Set(tt.key, tt.val)

			_, err := fromViper(v)
			assert.Error(t, err)
		})
	}
}

func TestFromViper_FallsBackOnBadLockTimeout(t *testing.T) {
	v := viper.New()
	v.Set("STORAGE_DRIVER", "memory")
	v.Set("AMOUNT_TOLERANCE", "0.01")
	v.Set("AGGREGATE_LOCK_TIMEOUT", "soon")

	cfg, err := fromViper(v)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, cfg.AggregateLockTimeout)
	assert.Equal(t, 256, cfg.EventBufferSize)
}
