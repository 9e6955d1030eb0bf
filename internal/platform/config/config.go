package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	StoragePostgres = "postgres"
	StorageSQLite   = "sqlite"
	StorageMemory   = "memory"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool

	StorageDriver string
	SQLitePath    string

	JWTSecret      string
	JWTIssuer      string
	AdminTokenHash string // bcrypt hash of the operator token

	AmountTolerance      decimal.Decimal
	AggregateLockTimeout time.Duration
	ConflictMaxRetries   int

	RateLimit          string // ulule/limiter format, e.g. "100-M"
	PosthogAPIKey      string
	EventBufferSize    int
	CORSAllowedOrigins []string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("ENABLE_DB_CHECK", false)
	v.SetDefault("STORAGE_DRIVER", StoragePostgres)
	v.SetDefault("SQLITE_PATH", "splitledger.db")
	v.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	v.SetDefault("JWT_ISSUER", "splitledger")
	v.SetDefault("ADMIN_TOKEN_HASH", "")
	v.SetDefault("AMOUNT_TOLERANCE", "0.01")
	v.SetDefault("AGGREGATE_LOCK_TIMEOUT", "2s")
	v.SetDefault("CONFLICT_MAX_RETRIES", 3)
	v.SetDefault("RATE_LIMIT", "100-M")
	v.SetDefault("POSTHOG_API_KEY", "")
	v.SetDefault("EVENT_BUFFER_SIZE", 256)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")

	v.AutomaticEnv()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		DatabaseURL:    v.GetString("PGSQL_URL"),
		Port:           v.GetString("PORT"),
		IsProduction:   v.GetBool("IS_PRODUCTION"),
		EnableDBCheck:  v.GetBool("ENABLE_DB_CHECK"),
		StorageDriver:  strings.ToLower(strings.TrimSpace(v.GetString("STORAGE_DRIVER"))),
		SQLitePath:     v.GetString("SQLITE_PATH"),
		JWTSecret:      v.GetString("JWT_SECRET"),
		JWTIssuer:      v.GetString("JWT_ISSUER"),
		AdminTokenHash: v.GetString("ADMIN_TOKEN_HASH"),
		RateLimit:      v.GetString("RATE_LIMIT"),
		PosthogAPIKey:  v.GetString("POSTHOG_API_KEY"),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	switch cfg.StorageDriver {
	case StoragePostgres:
		if cfg.DatabaseURL == "" {
			log.Println("Warning: PGSQL_URL environment variable not set.")
		}
	case StorageSQLite, StorageMemory:
	default:
		return nil, fmt.Errorf("invalid STORAGE_DRIVER %q: expected postgres, sqlite or memory", cfg.StorageDriver)
	}

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "a-very-secret-key-should-be-longer-and-random" // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}
	if cfg.AdminTokenHash == "" {
		log.Println("Warning: ADMIN_TOKEN_HASH not set. Admin endpoints will reject every request.")
	}

	tolerance, err := decimal.NewFromString(v.GetString("AMOUNT_TOLERANCE"))
	if err != nil || tolerance.IsNegative() {
		return nil, fmt.Errorf("invalid AMOUNT_TOLERANCE %q", v.GetString("AMOUNT_TOLERANCE"))
	}
	cfg.AmountTolerance = tolerance

	lockTimeoutStr := v.GetString("AGGREGATE_LOCK_TIMEOUT")
	cfg.AggregateLockTimeout, err = time.ParseDuration(lockTimeoutStr)
	if err != nil || cfg.AggregateLockTimeout <= 0 {
		cfg.AggregateLockTimeout = 2 * time.Second
		log.Printf("Warning: Invalid value for AGGREGATE_LOCK_TIMEOUT ('%s'). Defaulting to %s.\n", lockTimeoutStr, cfg.AggregateLockTimeout)
	}

	cfg.ConflictMaxRetries = v.GetInt("CONFLICT_MAX_RETRIES")
	if cfg.ConflictMaxRetries < 0 {
		cfg.ConflictMaxRetries = 0
	}

	cfg.EventBufferSize = v.GetInt("EVENT_BUFFER_SIZE")
	if cfg.EventBufferSize <= 0 {
		cfg.EventBufferSize = 256
	}

	for _, origin := range strings.Split(v.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	return cfg, nil
}
