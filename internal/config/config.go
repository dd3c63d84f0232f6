// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"

	"github.com/quillpost/quillpost/internal/auth"
)

// Configuration errors.
var (
	ErrWeakSecret           = fmt.Errorf("JWT_SECRET must be at least %d bytes", auth.MinSecretLen)
	ErrUnsupportedAlgorithm = fmt.Errorf("JWT_ALG must be %s", auth.TokenAlgorithm)
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Database (PostgreSQL)
	DatabaseURL   string `env:"DATABASE_URL,required,notEmpty"`
	DBAutoMigrate bool   `env:"DB_AUTO_MIGRATE" envDefault:"true"`
	DBMaxConns    int32  `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMinConns    int32  `env:"DB_MIN_CONNS" envDefault:"2"`

	// Cache (Redis)
	RedisURL      string        `env:"REDIS_URL,required,notEmpty"`
	PostsCacheTTL time.Duration `env:"POSTS_CACHE_TTL" envDefault:"5m"`

	// Bearer tokens
	JWTSecret      string        `env:"JWT_SECRET,required,notEmpty,unset"`
	JWTAlgorithm   string        `env:"JWT_ALG" envDefault:"HS256"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"60m"`

	// Password hashing (argon2id work factor)
	HashTime      uint32 `env:"HASH_TIME" envDefault:"3"`
	HashMemoryKiB uint32 `env:"HASH_MEMORY_KIB" envDefault:"65536"`
	HashThreads   uint32 `env:"HASH_THREADS" envDefault:"4"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// CORS configuration
	// Comma-separated list of allowed origins (e.g., "https://example.com,https://app.example.com")
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:""`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// HashParams returns the configured argon2id work factor.
func (c *Config) HashParams() auth.HashParams {
	return auth.HashParams{
		Time:      c.HashTime,
		MemoryKiB: c.HashMemoryKiB,
		Threads:   uint8(c.HashThreads),
	}
}

// Validate checks values that env tags cannot express.
func (c *Config) Validate() error {
	var errs []error

	if len(c.JWTSecret) < auth.MinSecretLen {
		errs = append(errs, ErrWeakSecret)
	}
	if c.JWTAlgorithm != auth.TokenAlgorithm {
		errs = append(errs, ErrUnsupportedAlgorithm)
	}
	if c.AccessTokenTTL <= 0 {
		errs = append(errs, errors.New("ACCESS_TOKEN_TTL must be positive"))
	}
	if c.HashTime < 1 || c.HashThreads < 1 || c.HashThreads > math.MaxUint8 ||
		c.HashMemoryKiB < 8*c.HashThreads {
		errs = append(errs, errors.New("HASH_TIME, HASH_MEMORY_KIB and HASH_THREADS must form a valid argon2id work factor"))
	}
	if c.PostsCacheTTL <= 0 {
		errs = append(errs, errors.New("POSTS_CACHE_TTL must be positive"))
	}
	if c.MaxRequestBodySize <= 0 {
		errs = append(errs, errors.New("MAX_REQUEST_BODY_SIZE must be positive"))
	}
	if c.DBMaxConns < 1 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		errs = append(errs, errors.New("DB_MIN_CONNS and DB_MAX_CONNS must satisfy 0 <= min <= max, max >= 1"))
	}

	return errors.Join(errs...)
}

// Load parses environment variables and returns a validated Config.
// Returns an error if required variables are missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
