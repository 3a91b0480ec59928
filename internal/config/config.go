package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Store backends selectable with STORE_BACKEND.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
	StoreS3       = "s3"
)

type Config struct {
	HTTPListenAddr    string
	MetricsListenAddr string
	LogLevel          string
	ServiceName       string
	CatalogPath       string

	StoreBackend   string
	StoreKeyPrefix string
	DatabaseURL    string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	S3Endpoint     string
	S3Region       string
	S3Bucket       string
	S3AccessKey    string
	S3SecretKey    string

	WalletDefaultBalance decimal.Decimal
	CommitAttempts       uint
	CommitTimeout        time.Duration

	// CORSOrigins is the allow list for browser callers. Empty disables CORS headers.
	CORSOrigins []string
}

func Load() (*Config, error) {
	cfg := &Config{
		HTTPListenAddr:    getEnv("HTTP_LISTEN_ADDR", ":8080"),
		MetricsListenAddr: getEnv("METRICS_LISTEN_ADDR", ""),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		ServiceName:       getEnv("SERVICE_NAME", "configurator-api"),
		CatalogPath:       getEnv("CATALOG_PATH", ""),
		StoreBackend:      getEnv("STORE_BACKEND", StoreMemory),
		StoreKeyPrefix:    getEnv("STORE_KEY_PREFIX", "configurator"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		RedisAddr:         getEnv("REDIS_ADDR", ""),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		S3Endpoint:        getEnv("S3_ENDPOINT", ""),
		S3Region:          getEnv("S3_REGION", "us-east-1"),
		S3Bucket:          getEnv("S3_BUCKET", ""),
		S3AccessKey:       getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:       getEnv("S3_SECRET_KEY", ""),
		CORSOrigins:       splitList(getEnv("CORS_ORIGINS", "")),
	}

	var err error
	if cfg.RedisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0")); err != nil {
		return nil, fmt.Errorf("parse REDIS_DB: %w", err)
	}
	if cfg.WalletDefaultBalance, err = decimal.NewFromString(getEnv("WALLET_DEFAULT_BALANCE", "0")); err != nil {
		return nil, fmt.Errorf("parse WALLET_DEFAULT_BALANCE: %w", err)
	}
	attempts, err := strconv.ParseUint(getEnv("COMMIT_ATTEMPTS", "3"), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("parse COMMIT_ATTEMPTS: %w", err)
	}
	cfg.CommitAttempts = uint(attempts)
	if cfg.CommitTimeout, err = time.ParseDuration(getEnv("COMMIT_TIMEOUT", "10s")); err != nil {
		return nil, fmt.Errorf("parse COMMIT_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// Validate checks that the settings needed by the selected store backend are present.
func (c *Config) Validate() error {
	var missing []string
	var invalid []string

	if c.HTTPListenAddr == "" {
		missing = append(missing, "HTTP_LISTEN_ADDR")
	}

	switch c.StoreBackend {
	case StoreMemory:
	case StorePostgres:
		if c.DatabaseURL == "" {
			missing = append(missing, "DATABASE_URL")
		}
	case StoreRedis:
		if c.RedisAddr == "" {
			missing = append(missing, "REDIS_ADDR")
		}
	case StoreS3:
		if c.S3Bucket == "" {
			missing = append(missing, "S3_BUCKET")
		}
		if (c.S3AccessKey == "") != (c.S3SecretKey == "") {
			invalid = append(invalid, "S3_ACCESS_KEY and S3_SECRET_KEY must both be set")
		}
	default:
		invalid = append(invalid, fmt.Sprintf("STORE_BACKEND %q is not one of memory, postgres, redis, s3", c.StoreBackend))
	}

	if c.WalletDefaultBalance.IsNegative() {
		invalid = append(invalid, "WALLET_DEFAULT_BALANCE must not be negative")
	}
	if c.CommitAttempts < 1 {
		invalid = append(invalid, "COMMIT_ATTEMPTS must be at least 1")
	}
	if c.CommitTimeout <= 0 {
		invalid = append(invalid, "COMMIT_TIMEOUT must be positive")
	}

	var parts []string
	if len(missing) > 0 {
		parts = append(parts, "missing required config: "+strings.Join(missing, ", "))
	}
	parts = append(parts, invalid...)
	if len(parts) > 0 {
		return fmt.Errorf("%s", strings.Join(parts, "; "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
