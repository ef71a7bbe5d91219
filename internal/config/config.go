// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// GRPCAddr is the address the gRPC server listens on (e.g. :8080).
	GRPCAddr string `mapstructure:"GRPC_ADDR"`
	// DatabaseURL is the Postgres DSN.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// DBMaxConns caps the pgx pool size; 0 uses the pool default.
	DBMaxConns int32 `mapstructure:"DB_MAX_CONNS"`
	// JWTSecret is the HMAC secret used to sign access and refresh tokens (at least 32 bytes).
	JWTSecret string `mapstructure:"JWT_SECRET"`
	// JWTIssuer is the iss claim (e.g. "tenant-admin-auth").
	JWTIssuer string `mapstructure:"JWT_ISSUER"`
	// JWTAudience is the aud claim (e.g. "tenant-admin-api").
	JWTAudience string `mapstructure:"JWT_AUDIENCE"`
	// JWTAccessTTL is the access token lifetime (e.g. "15m").
	JWTAccessTTL string `mapstructure:"JWT_ACCESS_TTL"`
	// JWTRefreshTTL is the refresh token lifetime (e.g. "168h").
	JWTRefreshTTL string `mapstructure:"JWT_REFRESH_TTL"`
	// EncryptionKey is the hex-encoded 32-byte AES key for tokens at rest.
	EncryptionKey string `mapstructure:"ENCRYPTION_KEY"`
	// BcryptCost is the bcrypt cost factor (4–31) for newly hashed passwords; default 10.
	BcryptCost int `mapstructure:"BCRYPT_COST"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`
	// LogLevel overrides the zerolog level (e.g. "debug"); empty picks one from Env.
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// OTLPEndpoint is the OTLP gRPC collector address; empty disables export.
	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	// OTLPInsecure disables TLS to the collector.
	OTLPInsecure bool `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`
	// ServiceName is the OTel service.name resource attribute.
	ServiceName string `mapstructure:"OTEL_SERVICE_NAME"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("GRPC_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_MAX_CONNS", 0)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ISSUER", "tenant-admin-auth")
	v.SetDefault("JWT_AUDIENCE", "tenant-admin-api")
	v.SetDefault("JWT_ACCESS_TTL", "15m")
	v.SetDefault("JWT_REFRESH_TTL", "168h") // 7d
	v.SetDefault("ENCRYPTION_KEY", "")
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("APP_ENV", "")
	v.SetDefault("LOG_LEVEL", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", false)
	v.SetDefault("OTEL_SERVICE_NAME", "tenant-admin-backend")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required fields and ranges. Secret shape is checked again when the
// token provider and encryptor are constructed.
func (c *Config) Validate() error {
	if c.GRPCAddr == "" {
		return errors.New("config: GRPC_ADDR must be set")
	}
	if c.JWTSecret == "" {
		return errors.New("config: JWT_SECRET must be set")
	}
	if c.EncryptionKey == "" {
		return errors.New("config: ENCRYPTION_KEY must be set")
	}
	if c.BcryptCost == 0 {
		c.BcryptCost = 10
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return errors.New("config: BCRYPT_COST must be between 4 and 31")
	}
	if _, err := parseTTL("JWT_ACCESS_TTL", c.JWTAccessTTL, defaultAccessTTL); err != nil {
		return err
	}
	if _, err := parseTTL("JWT_REFRESH_TTL", c.JWTRefreshTTL, defaultRefreshTTL); err != nil {
		return err
	}
	if c.RefreshTTL() <= c.AccessTTL() {
		return errors.New("config: JWT_REFRESH_TTL must be longer than JWT_ACCESS_TTL")
	}
	return nil
}

const (
	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 168 * time.Hour
)

// AccessTTL parses JWTAccessTTL as a time.Duration. Returns 15m if unset; Validate rejects malformed values.
func (c *Config) AccessTTL() time.Duration {
	d, err := parseTTL("JWT_ACCESS_TTL", c.JWTAccessTTL, defaultAccessTTL)
	if err != nil {
		return defaultAccessTTL
	}
	return d
}

// RefreshTTL parses JWTRefreshTTL as a time.Duration. Returns 168h if unset; Validate rejects malformed values.
func (c *Config) RefreshTTL() time.Duration {
	d, err := parseTTL("JWT_REFRESH_TTL", c.JWTRefreshTTL, defaultRefreshTTL)
	if err != nil {
		return defaultRefreshTTL
	}
	return d
}

func parseTTL(name, raw string, def time.Duration) (time.Duration, error) {
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", name, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("config: %s must be positive, got %s", name, raw)
	}
	return d, nil
}

// IsDevelopment reports whether APP_ENV selects development behaviour (console logs).
func (c *Config) IsDevelopment() bool {
	return c.Env == "development" || c.Env == "dev" || c.Env == "local"
}
