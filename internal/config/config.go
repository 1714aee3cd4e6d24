// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Store and state drivers.
const (
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverMemory   = "memory"
)

// targetDateLayouts are accepted for TARGET_DATE. Values without a zone are
// interpreted in the server's local time zone.
var targetDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Wish document store
	StoreDriver string `env:"STORE_DRIVER" envDefault:"postgres"`
	DatabaseURL string `env:"DATABASE_URL"`

	// Persisted state blobs, session revocation and rate limiting
	StateDriver string `env:"STATE_DRIVER" envDefault:"redis"`
	RedisURL    string `env:"REDIS_URL"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Public submission rate limiting (per IP)
	RateLimitSubmitEnabled bool `env:"RATE_LIMIT_SUBMIT_ENABLED" envDefault:"true"`
	RateLimitSubmitRPS     int  `env:"RATE_LIMIT_SUBMIT_RPS" envDefault:"1"`
	RateLimitSubmitBurst   int  `env:"RATE_LIMIT_SUBMIT_BURST" envDefault:"5"`

	// Comma-separated list of allowed origins (e.g., "https://example.com,https://app.example.com")
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:""`

	// Request body size limit in bytes (default 64KB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"65536"`

	// Celebration settings
	TargetDate       string `env:"TARGET_DATE" envDefault:"2025-06-26T00:00:00"`
	MusicEnabled     bool   `env:"MUSIC_ENABLED" envDefault:"false"`
	AnalyticsEnabled bool   `env:"ENABLE_ANALYTICS" envDefault:"true"`
	WishPageSize     int    `env:"WISH_PAGE_SIZE" envDefault:"100"`

	// Admin identity
	AdminEmail        string `env:"ADMIN_EMAIL,required,notEmpty"`
	AdminName         string `env:"ADMIN_NAME" envDefault:"Admin"`
	AdminPasswordHash string `env:"ADMIN_PASSWORD_HASH,required,notEmpty"`
	SessionSecret     string `env:"SESSION_SECRET,required,notEmpty"`

	// Admin session gate
	SessionTTL          time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	LoginMaxAttempts    int           `env:"LOGIN_MAX_ATTEMPTS" envDefault:"5"`
	LoginWindow         time.Duration `env:"LOGIN_WINDOW" envDefault:"1h"`
	SessionCheckRetries int           `env:"SESSION_CHECK_RETRIES" envDefault:"1"`
	// SessionTokenTTL caps the absolute lifetime of an issued token.
	SessionTokenTTL time.Duration `env:"SESSION_TOKEN_TTL" envDefault:"168h"`

	// New-wish notifications (disabled when URL is empty)
	NotifyWebhookURL    string `env:"NOTIFY_WEBHOOK_URL" envDefault:""`
	NotifyWebhookSecret string `env:"NOTIFY_WEBHOOK_SECRET" envDefault:""`
	NotifyMaxAttempts   int    `env:"NOTIFY_MAX_ATTEMPTS" envDefault:"5"`

	// Tracing (disabled when endpoint is empty)
	OTELEndpoint    string `env:"OTEL_ENDPOINT" envDefault:""`
	OTELServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"wishwall"`
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

// TargetTime parses TargetDate in the given location.
func (c *Config) TargetTime(loc *time.Location) (time.Time, error) {
	return ParseTargetDate(c.TargetDate, loc)
}

// ParseTargetDate parses a countdown target date. Zone-less values are read in loc.
func ParseTargetDate(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range targetDateLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid target date %q", value)
}

// Validate checks cross-field requirements the env tags cannot express.
func (c *Config) Validate() error {
	var errs []error

	switch c.StoreDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when STORE_DRIVER=postgres"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver))
	}

	switch c.StateDriver {
	case DriverRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL is required when STATE_DRIVER=redis"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STATE_DRIVER %q", c.StateDriver))
	}

	if _, err := c.TargetTime(time.Local); err != nil {
		errs = append(errs, err)
	}
	if c.LoginMaxAttempts <= 0 {
		errs = append(errs, errors.New("LOGIN_MAX_ATTEMPTS must be positive"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.SessionTokenTTL < c.SessionTTL {
		errs = append(errs, errors.New("SESSION_TOKEN_TTL must not be shorter than SESSION_TTL"))
	}
	if c.WishPageSize <= 0 {
		errs = append(errs, errors.New("WISH_PAGE_SIZE must be positive"))
	}
	if c.NotifyWebhookURL != "" && c.NotifyWebhookSecret == "" {
		errs = append(errs, errors.New("NOTIFY_WEBHOOK_SECRET is required when NOTIFY_WEBHOOK_URL is set"))
	}
	if len(c.SessionSecret) < 32 {
		errs = append(errs, errors.New("SESSION_SECRET must be at least 32 bytes"))
	}

	return errors.Join(errs...)
}

// Load parses environment variables and returns a Config.
// Returns an error if required variables are missing or inconsistent.
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
