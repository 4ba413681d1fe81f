// Package config loads dbhealth configuration.
// It uses koanf to merge environment variables over an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/dmitrymomot/dbhealth/pkg/db"
)

var (
	ErrLoadFile     = errors.New("config: failed to load config file")
	ErrLoadEnvFile  = errors.New("config: failed to load env file")
	ErrInvalidValue = errors.New("config: invalid value")
)

// Environment variable prefixes read by Load. DB_HOST maps to the key db.host.
var envPrefixes = []string{"DB_", "LOG_", "SENTRY_"}

// Config holds all configuration values of the process.
type Config struct {
	DB     db.Config
	Log    LogConfig
	Sentry SentryConfig

	// Warnings lists recoverable problems, e.g. an unknown DB_TYPE.
	Warnings []string
}

// LogConfig selects the local log handler.
type LogConfig struct {
	Level  string
	Format string
}

// SentryConfig enables error forwarding when DSN is set.
type SentryConfig struct {
	DSN         string
	Environment string
}

// DefaultSentryEnvironment is used when SENTRY_ENVIRONMENT is unset.
const DefaultSentryEnvironment = "production"

// Load reads configuration from an optional YAML file and the environment.
// Environment variables take precedence over file values. Blank values count as unset.
//
// On invalid values Load still returns the partially parsed Config, with defaults
// applied, together with an error wrapping ErrInvalidValue.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Join(ErrLoadFile, fmt.Errorf("%s: %w", path, err))
		}
	}
	if err := k.Load(env.ProviderWithValue("", ".", envKey), nil); err != nil {
		return nil, err
	}

	cfg := &Config{
		Log: LogConfig{
			Level:  str(k, "log.level"),
			Format: str(k, "log.format"),
		},
		Sentry: SentryConfig{
			DSN:         str(k, "sentry.dsn"),
			Environment: str(k, "sentry.environment"),
		},
	}
	if cfg.Sentry.Environment == "" {
		cfg.Sentry.Environment = DefaultSentryEnvironment
	}

	var errs []error

	rawType := str(k, "db.type")
	engine, ok := db.ParseEngine(rawType)
	if !ok {
		cfg.Warnings = append(cfg.Warnings,
			fmt.Sprintf("unknown DB_TYPE %q, falling back to %s", rawType, engine))
	}

	port, err := parsePort(str(k, "db.port"))
	if err != nil {
		errs = append(errs, err)
	}
	timeout, err := parseTimeout(str(k, "db.connect_timeout"))
	if err != nil {
		errs = append(errs, err)
	}

	cfg.DB = db.Config{
		Engine:         engine,
		Driver:         str(k, "db.driver"),
		Host:           str(k, "db.host"),
		Port:           port,
		User:           str(k, "db.user"),
		Password:       str(k, "db.password"),
		Name:           str(k, "db.name"),
		SSLMode:        str(k, "db.sslmode"),
		ConnectTimeout: timeout,
	}.WithDefaults()

	if len(errs) > 0 {
		return cfg, errors.Join(append([]error{ErrInvalidValue}, errs...)...)
	}
	if err := cfg.DB.Validate(); err != nil {
		return cfg, errors.Join(ErrInvalidValue, err)
	}
	return cfg, nil
}

// LoadEnvFile loads KEY=VALUE pairs from a dotenv file into the process
// environment. Variables that are already set are not overridden and a
// missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return errors.Join(ErrLoadEnvFile, fmt.Errorf("%s: %w", path, err))
	}
	return nil
}

// envKey maps DB_CONNECT_TIMEOUT to db.connect_timeout and drops unrelated
// or blank variables.
func envKey(key, value string) (string, any) {
	if strings.TrimSpace(value) == "" {
		return "", nil
	}
	for _, prefix := range envPrefixes {
		if strings.HasPrefix(key, prefix) {
			return strings.Replace(strings.ToLower(key), "_", ".", 1), value
		}
	}
	return "", nil
}

func str(k *koanf.Koanf, key string) string {
	return strings.TrimSpace(k.String(key))
}

// parsePort returns 0 for an empty value so that the engine default applies.
func parsePort(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	port, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("DB_PORT %q is not a number", s)
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("DB_PORT %d is out of range 1-65535", port)
	}
	return port, nil
}

// parseTimeout accepts Go durations ("3s", "1500ms") and bare integers as seconds.
func parseTimeout(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		secs, convErr := strconv.Atoi(s)
		if convErr != nil {
			return 0, fmt.Errorf("DB_CONNECT_TIMEOUT %q is not a duration", s)
		}
		d = time.Duration(secs) * time.Second
	}
	if d <= 0 {
		return 0, fmt.Errorf("DB_CONNECT_TIMEOUT must be positive, got %s", s)
	}
	return d, nil
}
