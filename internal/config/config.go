package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	GeminiAPIKey string
	Model        string
	ImageModel   string
	SaveDir      string

	// Addr is the listen address of the HTTP API.
	Addr          string
	LogFile       string
	LogLevel      string
	OracleTimeout time.Duration
	// ImageMinScore is the score a message needs before it can be turned
	// into an image; zero or less allows every message.
	ImageMinScore int
}

// LoadConfig loads the configuration from environment variables, after
// merging in a .env file from the working directory when one exists.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	cfg := &Config{
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		Model:         getEnv("DUEL_MODEL", "gemini-2.5-flash"),
		ImageModel:    getEnv("DUEL_IMAGE_MODEL", "gemini-2.0-flash-preview-image-generation"),
		SaveDir:       getEnv("DUEL_SAVE_DIR", ".duel"),
		Addr:          getEnv("DUEL_ADDR", ":8080"),
		LogFile:       getEnv("DUEL_LOG_FILE", "duel.log"),
		LogLevel:      getEnv("DUEL_LOG_LEVEL", "info"),
		OracleTimeout: getEnvDuration("DUEL_ORACLE_TIMEOUT", 90*time.Second),
		ImageMinScore: getEnvInt("DUEL_IMAGE_MIN_SCORE", 7),
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable is not set")
	}
	if c.Model == "" {
		return fmt.Errorf("DUEL_MODEL cannot be empty")
	}
	if c.SaveDir == "" {
		return fmt.Errorf("DUEL_SAVE_DIR cannot be empty")
	}
	if c.OracleTimeout < 0 {
		return fmt.Errorf("DUEL_ORACLE_TIMEOUT must not be negative")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}
