package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	DBPath    string
	LogLevel  slog.Level
	Librarian LibrarianConfig
}

// LibrarianConfig holds the operator account. It is never stored in the
// library database.
type LibrarianConfig struct {
	Name     string
	Age      int
	Email    string
	Password string
}

// Load reads configuration from the given .env files (or ./.env when none
// are given) and environment variables. A missing .env file is not an error.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil {
		slog.Warn(".env file not found, using environment variables", "err", err)
	}

	age, err := strconv.Atoi(getEnv("LIBRARIAN_AGE", "40"))
	if err != nil {
		return nil, fmt.Errorf("invalid LIBRARIAN_AGE: %w", err)
	}

	level, err := parseLevel(getEnv("LOG_LEVEL", "warn"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DBPath:   getEnv("LIBRARY_DB", "library.db"),
		LogLevel: level,
		Librarian: LibrarianConfig{
			Name:     getEnv("LIBRARIAN_NAME", "Librarian"),
			Age:      age,
			Email:    strings.TrimSpace(os.Getenv("LIBRARIAN_EMAIL")),
			Password: os.Getenv("LIBRARIAN_PASSWORD"),
		},
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Librarian.Email == "" {
		return fmt.Errorf("config: LIBRARIAN_EMAIL is required")
	}
	if c.Librarian.Password == "" {
		return fmt.Errorf("config: LIBRARIAN_PASSWORD is required")
	}
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return level, fmt.Errorf("invalid LOG_LEVEL %q: %w", s, err)
	}
	return level, nil
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
