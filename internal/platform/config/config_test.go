package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := FromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, BackendMemory, cfg.StorageBackend)
	assert.Equal(t, BackendMemory, cfg.SessionBackend)
	assert.Equal(t, "admin@carwash.com", cfg.AdminEmail)
	assert.Equal(t, "password123", cfg.DemoPassword)
	assert.Equal(t, 60*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
	assert.Equal(t, 5, cfg.LoginRatePerMinute)
	assert.True(t, cfg.SeedDemoData)
	assert.True(t, cfg.SignupEnabled)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "AquaClean Car Wash", cfg.BusinessName)
}

func TestFromViper_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SESSION_TTL", "15m")
	t.Setenv("SIGNUP_ENABLED", "false")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("STORAGE_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/carwash")

	cfg, err := FromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 15*time.Minute, cfg.SessionTTL)
	assert.False(t, cfg.SignupEnabled)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "postgres://localhost/carwash", cfg.DatabaseURL)
}

func TestFromViper_RejectsIncompleteBackends(t *testing.T) {
	cases := map[string]map[string]string{
		"postgres without url": {"STORAGE_BACKEND": "postgres", "DATABASE_URL": ""},
		"amqp without url":     {"EVENTS_BACKEND": "amqp", "AMQP_URL": ""},
		"unknown sessions":     {"SESSION_BACKEND": "memcached"},
		"zero ttl":             {"SESSION_TTL": "0s"},
		"negative idem ttl":    {"IDEMPOTENCY_TTL": "-1h"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := FromViper(viper.New())
			assert.Error(t, err)
		})
	}
}
