package config

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"

	"landlords/internal/database"
	"landlords/internal/loader"
)

// Dataset sources.
const (
	SourceDelimited = "delimited"
	SourceShapefile = "shapefile"
	SourceOracle    = "oracle"
	SourcePostgres  = "postgres"
)

// Config describes where the property table comes from and how the tool runs.
type Config struct {
	Source     string         `yaml:"source"`
	Path       string         `yaml:"path"`
	Delimiter  string         `yaml:"delimiter"`
	Table      string         `yaml:"table"`
	Columns    loader.Columns `yaml:"columns"`
	Projection string         `yaml:"projection"`

	Listen   string `yaml:"listen"`
	LogLevel string `yaml:"log_level"`

	Oracle      database.DBConfig `yaml:"oracle"`
	PostgresURL string            `yaml:"postgres_url"`
}

// Load reads .env (if present), builds a Config from the environment and
// overlays the YAML file at path when path is not empty. Callers apply their
// own overrides and then call Validate.
func Load(path string) (*Config, error) {
	// Try to load from .env file first
	if err := loadEnvFile(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("unable to read .env: %w", err)
	}

	cfg := &Config{
		Source:      getEnvOrDefault("LANDLORDS_SOURCE", SourceDelimited),
		Path:        getEnvOrDefault("LANDLORDS_PATH", filepath.Join("data", "landlord_info.txt")),
		Delimiter:   getEnvOrDefault("LANDLORDS_DELIMITER", "|"),
		Table:       getEnvOrDefault("LANDLORDS_TABLE", "LANDLORD_INFO"),
		Projection:  getEnvOrDefault("LANDLORDS_PROJECTION", "none"),
		Listen:      getEnvOrDefault("LANDLORDS_LISTEN", ":8080"),
		LogLevel:    getEnvOrDefault("LANDLORDS_LOG_LEVEL", "info"),
		PostgresURL: getEnvOrDefault("DATABASE_URL", ""),
		Oracle: database.DBConfig{
			Host:           getEnvOrDefault("DB_HOST", "localhost"),
			Port:           getEnvOrDefault("DB_PORT", "1521"),
			Service:        getEnvOrDefault("DB_SERVICE", "XE"),
			Username:       getEnvOrDefault("DB_USERNAME", ""),
			Password:       getEnvOrDefault("DB_PASSWORD", ""),
			WalletLocation: getEnvOrDefault("DB_WALLET_LOCATION", ""),
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("unable to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("unable to unmarshal config file: %w", err)
		}
	}

	return cfg, nil
}

// Validate checks the source settings.
func (c *Config) Validate() error {
	switch c.Source {
	case SourceDelimited:
		if len([]rune(c.Delimiter)) != 1 {
			return fmt.Errorf("delimiter must be a single character, got %q", c.Delimiter)
		}
		fallthrough
	case SourceShapefile:
		if c.Path == "" {
			return fmt.Errorf("source %s requires a path", c.Source)
		}
	case SourceOracle:
		if c.Table == "" {
			return fmt.Errorf("source %s requires a table", c.Source)
		}
	case SourcePostgres:
		if c.PostgresURL == "" {
			return fmt.Errorf("source %s requires DATABASE_URL or postgres_url", c.Source)
		}
		if c.Table == "" {
			return fmt.Errorf("source %s requires a table", c.Source)
		}
	default:
		return fmt.Errorf("unknown source %q", c.Source)
	}
	return nil
}

// Separator returns the delimiter as a rune.
func (c *Config) Separator() rune {
	return []rune(c.Delimiter)[0]
}

// Level maps LogLevel to a slog level, defaulting to info.
func (c *Config) Level() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// loadEnvFile reads environment variables from a .env file
func loadEnvFile(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue // Skip empty lines and comments
		}

		// Parse key=value format
		if idx := strings.Index(line, "="); idx > 0 {
			key := strings.TrimSpace(line[:idx])
			value := strings.TrimSpace(line[idx+1:])

			// Remove quotes if present
			if len(value) >= 2 && (value[0] == '"' && value[len(value)-1] == '"') {
				value = value[1 : len(value)-1]
			}

			// Only set if not already set in environment
			if os.Getenv(key) == "" {
				os.Setenv(key, value)
			}
		}
	}

	return scanner.Err()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
