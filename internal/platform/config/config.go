package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendAMQP     = "amqp"
)

// Config holds all configuration for the service. Every field maps to an environment variable.
type Config struct {
	Port     string `mapstructure:"PORT"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	StorageBackend string `mapstructure:"STORAGE_BACKEND"`
	DatabaseURL    string `mapstructure:"DATABASE_URL"`

	SessionBackend string `mapstructure:"SESSION_BACKEND"`
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	RedisDB        int    `mapstructure:"REDIS_DB"`

	EventsBackend      string `mapstructure:"EVENTS_BACKEND"`
	AMQPURL            string `mapstructure:"AMQP_URL"`
	NotificationsQueue string `mapstructure:"NOTIFICATIONS_QUEUE"`

	AdminEmail    string `mapstructure:"ADMIN_EMAIL"`
	AdminPassword string `mapstructure:"ADMIN_PASSWORD"`
	DemoPassword  string `mapstructure:"DEMO_PASSWORD"`
	SeedDemoData  bool   `mapstructure:"SEED_DEMO_DATA"`

	SessionTTL         time.Duration `mapstructure:"SESSION_TTL"`
	IdempotencyTTL     time.Duration `mapstructure:"IDEMPOTENCY_TTL"`
	LoginRatePerMinute int           `mapstructure:"LOGIN_RATE_PER_MINUTE"`
	LoginBurst         int           `mapstructure:"LOGIN_BURST"`
	SignupEnabled      bool          `mapstructure:"SIGNUP_ENABLED"`

	CORSAllowedOrigins []string `mapstructure:"CORS_ALLOWED_ORIGINS"`

	BusinessName    string `mapstructure:"BUSINESS_NAME"`
	BusinessEmail   string `mapstructure:"BUSINESS_EMAIL"`
	BusinessPhone   string `mapstructure:"BUSINESS_PHONE"`
	BusinessAddress string `mapstructure:"BUSINESS_ADDRESS"`
}

var defaults = map[string]any{
	"PORT":      "8080",
	"LOG_LEVEL": "info",

	"STORAGE_BACKEND": BackendMemory,
	"SESSION_BACKEND": BackendMemory,
	"REDIS_ADDR":      "localhost:6379",
	"REDIS_PASSWORD":  "",
	"REDIS_DB":        0,

	"EVENTS_BACKEND":      BackendMemory,
	"NOTIFICATIONS_QUEUE": "carwash.notifications",

	"ADMIN_EMAIL":    "admin@carwash.com",
	"ADMIN_PASSWORD": "admin123",
	"DEMO_PASSWORD":  "password123",
	"SEED_DEMO_DATA": true,

	"SESSION_TTL":           "60m",
	"IDEMPOTENCY_TTL":       "24h",
	"LOGIN_RATE_PER_MINUTE": 5,
	"LOGIN_BURST":           5,
	"SIGNUP_ENABLED":        true,

	"CORS_ALLOWED_ORIGINS": "*",

	"BUSINESS_NAME":    "AquaClean Car Wash",
	"BUSINESS_EMAIL":   "admin@aquaclean.com",
	"BUSINESS_PHONE":   "+1 (555) 000-0000",
	"BUSINESS_ADDRESS": "123 Clean Street, Wash City, WC 12345",
}

// Load reads configuration from the environment, after applying a local .env file if one exists.
// Variables already set in the environment win over .env entries.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromViper(viper.New())
}

// FromViper applies defaults and environment bindings to v and decodes the result.
func FromViper(v *viper.Viper) (Config, error) {
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	for _, k := range []string{"DATABASE_URL", "AMQP_URL"} {
		if err := v.BindEnv(k); err != nil {
			return Config{}, fmt.Errorf("bind %s: %w", k, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.CORSAllowedOrigins = splitList(cfg.CORSAllowedOrigins)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks backend selections and the settings each one requires.
func (c Config) Validate() error {
	switch c.StorageBackend {
	case BackendMemory:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when STORAGE_BACKEND=postgres")
		}
	default:
		return fmt.Errorf("STORAGE_BACKEND must be memory or postgres, got %q", c.StorageBackend)
	}

	switch c.SessionBackend {
	case BackendMemory:
	case BackendRedis:
		if c.RedisAddr == "" {
			return errors.New("REDIS_ADDR is required when SESSION_BACKEND=redis")
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when SESSION_BACKEND=postgres")
		}
	default:
		return fmt.Errorf("SESSION_BACKEND must be memory, redis or postgres, got %q", c.SessionBackend)
	}

	switch c.EventsBackend {
	case BackendMemory:
	case BackendAMQP:
		if c.AMQPURL == "" {
			return errors.New("AMQP_URL is required when EVENTS_BACKEND=amqp")
		}
		if c.NotificationsQueue == "" {
			return errors.New("NOTIFICATIONS_QUEUE is required when EVENTS_BACKEND=amqp")
		}
	default:
		return fmt.Errorf("EVENTS_BACKEND must be memory or amqp, got %q", c.EventsBackend)
	}

	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be a positive duration (e.g. 60m)")
	}
	if c.IdempotencyTTL <= 0 {
		return errors.New("IDEMPOTENCY_TTL must be a positive duration (e.g. 24h)")
	}
	if c.AdminEmail == "" || c.AdminPassword == "" {
		return errors.New("ADMIN_EMAIL and ADMIN_PASSWORD are required")
	}
	return nil
}

func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
