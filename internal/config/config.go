// Package config loads linguiz settings from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/abhisek/linguiz/internal/exercise"
)

// Config holds all configuration for linguiz
type Config struct {
	Client ClientConfig
	Server ServerConfig
	Cache  CacheConfig
	Log    LogConfig
}

// ClientConfig holds quiz client configuration
type ClientConfig struct {
	APIURL        string
	VerifyTimeout time.Duration
	FetchLimit    int
	Category      string
	Difficulty    exercise.Level
}

// Filter returns the exercise filter for a new session.
func (c ClientConfig) Filter() exercise.Filter {
	return exercise.Filter{Category: c.Category, Level: c.Difficulty, Limit: c.FetchLimit}
}

// ServerConfig holds verification service configuration
type ServerConfig struct {
	Host            string
	Port            int
	DBPath          string // empty means store.DefaultDBPath
	SeedPath        string
	Judge           bool
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// CacheConfig holds the optional Redis cache configuration
type CacheConfig struct {
	RedisAddr     string // empty disables the cache
	RedisPassword string
	TTL           time.Duration
}

// Enabled reports whether a Redis address is configured.
func (c CacheConfig) Enabled() bool { return c.RedisAddr != "" }

// LogConfig holds logging configuration
type LogConfig struct {
	Level slog.Level
	File  string
}

// Load reads an optional .env file and then the environment.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	cfg := &Config{
		Client: ClientConfig{
			APIURL:        getEnv("LINGUIZ_API_URL", "http://localhost:3000"),
			VerifyTimeout: getEnvAsDuration("LINGUIZ_VERIFY_TIMEOUT", 10*time.Second),
			FetchLimit:    getEnvAsInt("LINGUIZ_FETCH_LIMIT", 10),
			Category:      getEnv("LINGUIZ_CATEGORY", ""),
			Difficulty:    exercise.Level(strings.ToUpper(getEnv("LINGUIZ_DIFFICULTY", ""))),
		},
		Server: ServerConfig{
			Host:            getEnv("LINGUIZ_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("LINGUIZ_PORT", 3000),
			DBPath:          getEnv("LINGUIZ_DB", ""),
			SeedPath:        getEnv("LINGUIZ_SEED", ""),
			Judge:           getEnvAsBool("LINGUIZ_JUDGE", false),
			RequestTimeout:  getEnvAsDuration("LINGUIZ_REQUEST_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvAsDuration("LINGUIZ_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Cache: CacheConfig{
			RedisAddr:     getEnv("LINGUIZ_REDIS_ADDR", ""),
			RedisPassword: getEnv("LINGUIZ_REDIS_PASSWORD", ""),
			TTL:           getEnvAsDuration("LINGUIZ_CACHE_TTL", 10*time.Minute),
		},
		Log: LogConfig{
			Level: getEnvAsLevel("LINGUIZ_LOG_LEVEL", slog.LevelInfo),
			File:  getEnv("LINGUIZ_LOG_FILE", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	u, err := url.Parse(c.Client.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid API URL: %q", c.Client.APIURL)
	}
	if c.Client.VerifyTimeout <= 0 {
		return fmt.Errorf("verify timeout must be positive: %s", c.Client.VerifyTimeout)
	}
	if c.Client.FetchLimit < 1 || c.Client.FetchLimit > 100 {
		return fmt.Errorf("fetch limit must be between 1 and 100: %d", c.Client.FetchLimit)
	}
	if c.Client.Difficulty != "" && !c.Client.Difficulty.Valid() {
		return fmt.Errorf("invalid difficulty: %q", c.Client.Difficulty)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Cache.Enabled() && c.Cache.TTL <= 0 {
		return fmt.Errorf("cache TTL must be positive: %s", c.Cache.TTL)
	}

	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsLevel(key string, defaultValue slog.Level) slog.Level {
	if value, exists := os.LookupEnv(key); exists {
		var level slog.Level
		if err := level.UnmarshalText([]byte(value)); err == nil {
			return level
		}
	}
	return defaultValue
}
