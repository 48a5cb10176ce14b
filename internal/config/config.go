package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"room-reservation/internal/email"
)

const QR_IMAGE_SIZE = 512

type RBACConfig struct {
	PolicyFile string `mapstructure:"policy_file"` // Path to the RBAC policy file. Empty uses the built-in policy.
	Superusers string `mapstructure:"superusers"`  // Comma separated usernames granted the superuser role
}

// SuperuserList splits Superusers, skipping blanks.
func (c RBACConfig) SuperuserList() []string {
	var users []string
	for _, u := range strings.Split(c.Superusers, ",") {
		if u = strings.TrimSpace(u); u != "" {
			users = append(users, u)
		}
	}
	return users
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type Config struct {
	// Secret key for signing auth tokens and session cookies. Must be set in production.
	Secret   string `mapstructure:"secret"`
	LogLevel string `mapstructure:"log_level"`

	// Address the HTTP server listens on, e.g. ":8080"
	Listen string `mapstructure:"listen"`
	// Base URL for the application. Empty means autodetect from request.
	BaseURL string `mapstructure:"base_url"`

	// Comma separated list of allowed CIDR networks. Empty means allow all.
	AllowedNetworks string `mapstructure:"allowed_networks"`

	// Student session backend: memory, sql or redis
	SessionStore string `mapstructure:"session_store"`
	// Student session lifetime in hours
	SessionTTL uint `mapstructure:"session_ttl"`

	// Backend for admin token nonces: memory, sql or redis
	NonceStore string `mapstructure:"nonce_store"`
	// Admin authentication TTL in hours
	UserAuthTTL uint `mapstructure:"user_auth_ttl"`

	// IANA zone used when rendering times
	Timezone string `mapstructure:"timezone"`

	// Address receiving a mail on every reservation. Empty disables notifications.
	NotifyTo string `mapstructure:"notify_to"`

	RBAC    RBACConfig       `mapstructure:"rbac"`
	Storage Storage          `mapstructure:"storage"`
	Redis   RedisConfig      `mapstructure:"redis"`
	Email   email.SMTPConfig `mapstructure:"email"`
}

// Check if running in Docker container by checking for the presence of /.dockerenv file
func runningInDocker() bool {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}
	return false
}

func getConfigPath() string {
	if runningInDocker() {
		return "/app/instance"
	}
	return "./instance"
}

// LoadConfig reads configuration from config.yaml and environment variables.
// An explicit config file path overrides the search path.
func LoadConfig(configFile ...string) (*Config, error) {
	var cfg Config

	v := viper.New()
	v.SetConfigName("config")
	v.AddConfigPath(getConfigPath())
	v.AddConfigPath(".")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for _, path := range configFile {
		if path != "" {
			v.SetConfigFile(path)
		}
	}

	for k, val := range Defaults() {
		v.SetDefault(k, val)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("unable to read config file: %w", err)
		}
		slog.Debug("No config file found, using defaults and environment")
	}

	// Load configuration from environment variables
	v.AutomaticEnv()

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %v", err)
	}

	// Convert relative sqlite path to absolute instance folder
	if cfg.Storage.SQLite != nil {
		path := cfg.Storage.SQLite.Path
		if path == ":memory:" || strings.HasPrefix(path, "file:") || path == "" {
			// In-memory database or explicit DSN, do nothing
		} else if !os.IsPathSeparator(path[0]) {
			cfg.Storage.SQLite.Path = fmt.Sprintf("%s/%s", getConfigPath(), strings.TrimPrefix(path, "./"))
		}
	}

	if cfg.Secret == "" {
		if os.Getenv("GIN_MODE") == "release" {
			return nil, fmt.Errorf("SECRET configuration variable is required in production")
		}
		slog.Warn("Secret is not set. Do not use in production.")
		cfg.Secret = "insecure-development-secret"
	}

	return &cfg, nil
}

// Location returns the configured display zone, falling back to UTC.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		slog.Warn("Unknown timezone, using UTC", "timezone", c.Timezone, "error", err)
		return time.UTC
	}
	return loc
}

func (c *Config) SessionLifetime() time.Duration {
	return time.Duration(c.SessionTTL) * time.Hour
}

func (c *Config) AuthLifetime() time.Duration {
	return time.Duration(c.UserAuthTTL) * time.Hour
}
