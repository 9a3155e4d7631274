// Package config loads taskq settings from the environment and an optional
// .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Store backends.
const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// Config holds application configuration.
type Config struct {
	// Task store
	Store       string `validate:"oneof=sqlite postgres"`
	SQLitePath  string `validate:"required_if=Store sqlite"`
	DatabaseURL string `validate:"required_if=Store postgres"`

	// Cache. An empty RedisURL selects the in-process store.
	RedisURL        string
	CacheTTL        time.Duration `validate:"gt=0"`
	SingleFlight    bool
	BreakerFailures int           `validate:"gte=1"`
	BreakerTimeout  time.Duration `validate:"gt=0"`

	LogLevel string `validate:"oneof=debug info warn error"`
}

var validate = validator.New()

// Load reads the environment, after merging a .env file from the working
// directory if there is one.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return fromEnv()
}

// LoadFile is Load with an explicit env file, which must exist.
func LoadFile(path string) (*Config, error) {
	if err := godotenv.Load(path); err != nil {
		return nil, fmt.Errorf("config: load %s: %w", path, err)
	}
	return fromEnv()
}

func fromEnv() (*Config, error) {
	cfg := &Config{
		Store:       getEnv("TASKQ_STORE", StoreSQLite),
		SQLitePath:  getEnv("TASKQ_SQLITE_PATH", "taskq.db"),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		RedisURL:        getEnv("REDIS_URL", ""),
		CacheTTL:        getDurationEnv("TASKQ_CACHE_TTL", 300*time.Second),
		SingleFlight:    getBoolEnv("TASKQ_SINGLE_FLIGHT", false),
		BreakerFailures: getIntEnv("TASKQ_BREAKER_FAILURES", 5),
		BreakerTimeout:  getDurationEnv("TASKQ_BREAKER_TIMEOUT", 5*time.Second),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
