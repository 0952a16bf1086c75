// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Environment represents the application environment.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "production"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig
	HTTP      HTTPConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Events    EventsConfig
	Telemetry TelemetryConfig
	Grading   GradingConfig
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string      `env:"APP_NAME" envDefault:"school-records"`
	Environment Environment `env:"APP_ENV" envDefault:"development"`
	Version     string      `env:"APP_VERSION" envDefault:"dev"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

// HTTPConfig holds API server settings.
type HTTPConfig struct {
	Host           string        `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port           int           `env:"HTTP_PORT" envDefault:"8080"`
	ReadTimeout    time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout   time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"15s"`
	RequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT" envDefault:"10s"`
}

// DatabaseConfig holds PostgreSQL connection settings. An empty URL
// selects the in-memory store.
type DatabaseConfig struct {
	URL           string `env:"DATABASE_URL"`
	MaxConns      int32  `env:"DATABASE_MAX_CONNS" envDefault:"10"`
	MinConns      int32  `env:"DATABASE_MIN_CONNS" envDefault:"2"`
	RetryAttempts int    `env:"DATABASE_RETRY_ATTEMPTS" envDefault:"3"`

	// Migrate applies pending migrations at startup.
	Migrate bool `env:"DATABASE_MIGRATE" envDefault:"true"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Enabled    bool          `env:"REDIS_ENABLED" envDefault:"false"`
	Addr       string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password   string        `env:"REDIS_PASSWORD"`
	DB         int           `env:"REDIS_DB" envDefault:"0"`
	StudentTTL time.Duration `env:"REDIS_STUDENT_TTL" envDefault:"10m"`

	// EventChannel mirrors committed events to Redis Pub/Sub when set.
	EventChannel string `env:"REDIS_EVENT_CHANNEL"`
}

// EventsConfig tunes the in-process event bus.
type EventsConfig struct {
	Async   bool `env:"EVENTS_ASYNC" envDefault:"true"`
	Workers int  `env:"EVENTS_WORKERS" envDefault:"4"`
}

// TelemetryConfig enables OTLP trace export.
type TelemetryConfig struct {
	Enabled     bool   `env:"OTEL_ENABLED" envDefault:"false"`
	Endpoint    string `env:"OTEL_ENDPOINT" envDefault:"localhost:4318"`
	ServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"school-records"`
	Insecure    bool   `env:"OTEL_INSECURE" envDefault:"true"`
}

// GradingConfig holds grading and listing knobs.
type GradingConfig struct {
	// PassingPercentage is reported at startup; the domain threshold is fixed.
	PassingPercentage float64 `env:"GRADING_PASSING_PERCENTAGE" envDefault:"65"`
	MaxPageSize       int     `env:"PAGINATION_MAX_PAGE_SIZE" envDefault:"100"`
}

// Load reads a .env file when present, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return parse(env.Options{})
}

// LoadFrom parses the given variables only. Used by tests.
func LoadFrom(environ map[string]string) (*Config, error) {
	return parse(env.Options{Environment: environ})
}

func parse(opts env.Options) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.App.Environment = Environment(strings.ToLower(string(cfg.App.Environment)))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks if the configuration is valid. Every problem is reported.
func (c *Config) Validate() error {
	var errs []string

	switch c.App.Environment {
	case EnvDevelopment, EnvStaging, EnvProduction:
	default:
		errs = append(errs, fmt.Sprintf("APP_ENV %q is not one of development, staging, production", c.App.Environment))
	}
	switch strings.ToLower(c.App.LogFormat) {
	case "json", "text":
	default:
		errs = append(errs, "LOG_FORMAT must be json or text")
	}

	if c.IsProduction() && c.Database.URL == "" {
		errs = append(errs, "DATABASE_URL is required in production")
	}
	if c.HTTP.Port < 1 || c.HTTP.Port > 65535 {
		errs = append(errs, "HTTP_PORT must be 1-65535")
	}
	if c.Database.MinConns < 0 || c.Database.MaxConns < 1 || c.Database.MinConns > c.Database.MaxConns {
		errs = append(errs, "DATABASE_MIN_CONNS must be between 0 and DATABASE_MAX_CONNS")
	}
	if c.Database.RetryAttempts < 1 {
		errs = append(errs, "DATABASE_RETRY_ATTEMPTS must be at least 1")
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		errs = append(errs, "REDIS_ADDR is required when REDIS_ENABLED is set")
	}
	if c.Events.Workers < 1 {
		errs = append(errs, "EVENTS_WORKERS must be at least 1")
	}
	if c.Telemetry.Enabled && c.Telemetry.Endpoint == "" {
		errs = append(errs, "OTEL_ENDPOINT is required when OTEL_ENABLED is set")
	}
	if c.Grading.MaxPageSize < 1 {
		errs = append(errs, "PAGINATION_MAX_PAGE_SIZE must be at least 1")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == EnvDevelopment
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.App.Environment == EnvProduction
}
