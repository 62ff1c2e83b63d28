// Package config loads the application configuration from a YAML file with
// environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// JWTConfig holds token signing settings.
type JWTConfig struct {
	Secret        string `yaml:"secret"`
	ExpiryMinutes int    `yaml:"expiry-minutes"`
}

// Expiry returns the token lifetime as a duration.
func (c JWTConfig) Expiry() time.Duration {
	return time.Duration(c.ExpiryMinutes) * time.Minute
}

// SMTPConfig holds outbound mail settings. Mail is skipped when Host or
// Username is empty.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

// Enabled reports whether outbound mail is configured.
func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && c.Username != ""
}

// RedisConfig holds optional Redis settings for login throttling.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"` // "text" or "json".
	File       string `yaml:"file"`   // Empty logs to stdout only.
	MaxSizeMB  int    `yaml:"max-size-mb"`
	MaxBackups int    `yaml:"max-backups"`
	MaxAgeDays int    `yaml:"max-age-days"`
}

// AdminConfig seeds the initial administrator account.
type AdminConfig struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	FullName string `yaml:"full-name"`
}

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	JWT      JWTConfig      `yaml:"jwt"`
	SMTP     SMTPConfig     `yaml:"smtp"`
	Redis    RedisConfig    `yaml:"redis"`
	Logging  LoggingConfig  `yaml:"logging"`
	Admin    AdminConfig    `yaml:"admin"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server:   ServerConfig{Addr: ":8000"},
		Database: DatabaseConfig{DSN: "file:data/fintech.db"},
		JWT:      JWTConfig{ExpiryMinutes: 360},
		SMTP:     SMTPConfig{Port: 587},
		Logging:  LoggingConfig{Level: "info", Format: "text", MaxSizeMB: 100, MaxBackups: 3, MaxAgeDays: 30},
		Admin:    AdminConfig{Email: "admin@fintech.local", FullName: "Administrator"},
	}
}

// Load reads the configuration file at path, falling back to defaults when
// the file is absent, and applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, errRead := os.ReadFile(path)
		switch {
		case errRead == nil:
			if errUnmarshal := yaml.Unmarshal(raw, &cfg); errUnmarshal != nil {
				return Config{}, fmt.Errorf("config: parse %s: %w", path, errUnmarshal)
			}
		case errors.Is(errRead, os.ErrNotExist):
			// Defaults plus env overrides.
		default:
			return Config{}, fmt.Errorf("config: read %s: %w", path, errRead)
		}
	}

	applyEnvOverrides(&cfg)

	if errValidate := cfg.validate(); errValidate != nil {
		return Config{}, errValidate
	}
	return cfg, nil
}

// applyEnvOverrides overlays FINTECH_* environment variables.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("FINTECH_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("FINTECH_DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("FINTECH_JWT_SECRET"); v != "" {
		cfg.JWT.Secret = v
	}
	if v := os.Getenv("FINTECH_JWT_EXPIRY_MINUTES"); v != "" {
		if minutes, errParse := strconv.Atoi(v); errParse == nil && minutes > 0 {
			cfg.JWT.ExpiryMinutes = minutes
		}
	}
	if v := os.Getenv("FINTECH_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("FINTECH_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("FINTECH_ADMIN_EMAIL"); v != "" {
		cfg.Admin.Email = v
	}
	if v := os.Getenv("FINTECH_ADMIN_PASSWORD"); v != "" {
		cfg.Admin.Password = v
	}
}

// validate rejects configurations the server cannot run with.
func (c Config) validate() error {
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return fmt.Errorf("config: jwt secret is required (set jwt.secret or FINTECH_JWT_SECRET)")
	}
	if strings.TrimSpace(c.Database.DSN) == "" {
		return fmt.Errorf("config: database dsn is required")
	}
	if c.JWT.ExpiryMinutes <= 0 {
		return fmt.Errorf("config: jwt expiry must be positive")
	}
	return nil
}
