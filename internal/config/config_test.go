package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/artconnect")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "artconnect-service", cfg.ServiceName)
	assert.Equal(t, 8085, cfg.HTTPPort)
	assert.Equal(t, "llama-3.3-70b-versatile", cfg.GroqModel)
	assert.Equal(t, 45*time.Second, cfg.GroqTimeout)
	assert.Equal(t, 5*time.Minute, cfg.DashboardCacheTTL)
	assert.True(t, cfg.EnableRBAC)
	assert.False(t, cfg.AIConfigured())
	assert.False(t, cfg.ObjectStorageConfigured())
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	_, err := Load()
	require.Error(t, err)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://db/artconnect")
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("GROQ_API_KEY", "gsk_test")
	t.Setenv("S3_ENDPOINT", "https://objects.example.com")
	t.Setenv("S3_ACCESS_KEY", "access")
	t.Setenv("S3_SECRET_KEY", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.HTTPPort)
	assert.True(t, cfg.AIConfigured())
	assert.True(t, cfg.ObjectStorageConfigured())
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			HTTPPort:                8085,
			DatabaseURL:             "postgres://db",
			GroqTimeout:             time.Second,
			GroqMaxTokens:           100,
			GroqTemperature:         0.5,
			IngestionBatchSize:      10,
			IngestionWorkers:        1,
			ExportWorkerConcurrency: 1,
			TelemetryProtocol:       "grpc",
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.HTTPPort = 70000 }},
		{"no database", func(c *Config) { c.DatabaseURL = "" }},
		{"zero timeout", func(c *Config) { c.GroqTimeout = 0 }},
		{"zero max tokens", func(c *Config) { c.GroqMaxTokens = 0 }},
		{"temperature too high", func(c *Config) { c.GroqTemperature = 3 }},
		{"zero batch", func(c *Config) { c.IngestionBatchSize = 0 }},
		{"zero workers", func(c *Config) { c.IngestionWorkers = 0 }},
		{"zero export workers", func(c *Config) { c.ExportWorkerConcurrency = 0 }},
		{"bad protocol", func(c *Config) { c.TelemetryProtocol = "udp" }},
	}

	valid := base()
	require.NoError(t, valid.Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
