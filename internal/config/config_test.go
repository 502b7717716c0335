package config

import (
	"testing"
	_ "time/tzdata"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allKeys = []string{
	"PORT", "MODEL_PATH", "CATALOG_PATH", "APP_TIMEZONE", "SCORE_CACHE_SIZE",
	"SCORE_JITTER", "RANDOM_SEED", "LOG_LEVEL",
	"BLUEPRINT_DB_HOST", "BLUEPRINT_DB_PORT", "BLUEPRINT_DB_USERNAME",
	"BLUEPRINT_DB_PASSWORD", "BLUEPRINT_DB_DATABASE", "BLUEPRINT_DB_SCHEMA",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "models/food_safety_model.json", cfg.ModelPath)
	assert.Empty(t, cfg.CatalogPath)
	assert.Equal(t, "Asia/Jerusalem", cfg.Location.String())
	assert.Equal(t, 1024, cfg.CacheSize)
	assert.Equal(t, 0.08, cfg.Jitter)
	assert.Zero(t, cfg.RandomSeed)
	assert.Equal(t, zerolog.InfoLevel, cfg.LogLevel)
	assert.False(t, cfg.Database.Enabled())
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("APP_TIMEZONE", "UTC")
	t.Setenv("SCORE_JITTER", "0")
	t.Setenv("RANDOM_SEED", "42")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("BLUEPRINT_DB_HOST", "db")
	t.Setenv("BLUEPRINT_DB_USERNAME", "eat")
	t.Setenv("BLUEPRINT_DB_PASSWORD", "secret")
	t.Setenv("BLUEPRINT_DB_DATABASE", "eat42")
	t.Setenv("BLUEPRINT_DB_SCHEMA", "public")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "UTC", cfg.Location.String())
	assert.Equal(t, 0.0, cfg.Jitter)
	assert.Equal(t, uint64(42), cfg.RandomSeed)
	assert.Equal(t, zerolog.DebugLevel, cfg.LogLevel)
	assert.True(t, cfg.Database.Enabled())
	assert.Equal(t, "postgres://eat:secret@db:5432/eat42?sslmode=disable&search_path=public", cfg.Database.DSN())
}

func TestLoadInvalid(t *testing.T) {
	tests := map[string]string{
		"PORT":             "eighty",
		"APP_TIMEZONE":     "Mars/Olympus",
		"SCORE_CACHE_SIZE": "-1",
		"SCORE_JITTER":     "0.5",
		"RANDOM_SEED":      "-3",
		"LOG_LEVEL":        "loud",
	}

	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)

			_, err := Load()
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}
