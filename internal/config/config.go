/*
Package config reads process configuration from the environment. A .env
file in the working directory is loaded first when present.
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog"

	"Eat42/internal/daypart"
)

// ErrInvalidConfig is returned when a variable is set but unusable.
var ErrInvalidConfig = errors.New("invalid configuration")

const (
	defaultPort      = 8080
	defaultModelPath = "models/food_safety_model.json"
	defaultCacheSize = 1024
	defaultJitter    = 0.08
	maxJitter        = 0.08
)

// Database holds the BLUEPRINT_DB_* connection settings.
type Database struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
	Schema   string
}

// Enabled reports whether a database host is configured.
func (d Database) Enabled() bool {
	return d.Host != ""
}

// DSN returns the postgres connection string.
func (d Database) DSN() string {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", d.Username, d.Password, d.Host, d.Port, d.Database)
	if d.Schema != "" {
		dsn += "&search_path=" + d.Schema
	}
	return dsn
}

// Config is the full process configuration.
type Config struct {
	Port        int
	Database    Database
	ModelPath   string
	CatalogPath string
	Location    *time.Location
	CacheSize   int
	Jitter      float64
	RandomSeed  uint64
	LogLevel    zerolog.Level
}

// Load reads the configuration, applying defaults to unset variables.
func Load() (Config, error) {
	cfg := Config{
		Database: Database{
			Host:     os.Getenv("BLUEPRINT_DB_HOST"),
			Port:     envOr("BLUEPRINT_DB_PORT", "5432"),
			Username: os.Getenv("BLUEPRINT_DB_USERNAME"),
			Password: os.Getenv("BLUEPRINT_DB_PASSWORD"),
			Database: os.Getenv("BLUEPRINT_DB_DATABASE"),
			Schema:   os.Getenv("BLUEPRINT_DB_SCHEMA"),
		},
		ModelPath:   envOr("MODEL_PATH", defaultModelPath),
		CatalogPath: os.Getenv("CATALOG_PATH"),
	}

	var err error
	if cfg.Port, err = intVar("PORT", defaultPort); err != nil {
		return Config{}, err
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("PORT %d out of range: %w", cfg.Port, ErrInvalidConfig)
	}

	tz := envOr("APP_TIMEZONE", daypart.DefaultTimezone)
	if cfg.Location, err = time.LoadLocation(tz); err != nil {
		return Config{}, fmt.Errorf("APP_TIMEZONE %q: %v: %w", tz, err, ErrInvalidConfig)
	}

	if cfg.CacheSize, err = intVar("SCORE_CACHE_SIZE", defaultCacheSize); err != nil {
		return Config{}, err
	}
	if cfg.CacheSize < 0 {
		return Config{}, fmt.Errorf("SCORE_CACHE_SIZE must not be negative: %w", ErrInvalidConfig)
	}

	if cfg.Jitter, err = floatVar("SCORE_JITTER", defaultJitter); err != nil {
		return Config{}, err
	}
	if cfg.Jitter < 0 || cfg.Jitter > maxJitter {
		return Config{}, fmt.Errorf("SCORE_JITTER %v outside [0, %v]: %w", cfg.Jitter, maxJitter, ErrInvalidConfig)
	}

	if v := os.Getenv("RANDOM_SEED"); v != "" {
		if cfg.RandomSeed, err = strconv.ParseUint(v, 10, 64); err != nil {
			return Config{}, fmt.Errorf("RANDOM_SEED %q: %w", v, ErrInvalidConfig)
		}
	}

	level := strings.ToLower(envOr("LOG_LEVEL", "info"))
	if cfg.LogLevel, err = zerolog.ParseLevel(level); err != nil {
		return Config{}, fmt.Errorf("LOG_LEVEL %q: %w", level, ErrInvalidConfig)
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func intVar(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s %q: %w", key, v, ErrInvalidConfig)
	}
	return n, nil
}

func floatVar(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s %q: %w", key, v, ErrInvalidConfig)
	}
	return f, nil
}
