package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	EnvConfigPath   = "CONFIG_PATH"
	EnvDBConnection = "DB_CONNECTION"
	EnvJWTSecret    = "JWT_SECRET"
	EnvJWTExpiry    = "JWT_EXPIRY"
)

// ErrMissingDatabaseDSN indicates no database DSN is present in the config
// file or environment.
var ErrMissingDatabaseDSN = errors.New("missing database dsn (set `database.dsn` in config file or DB_CONNECTION)")

// defaultJWTExpiry is used when the config omits or invalidates JWT expiry.
const defaultJWTExpiry = 30 * 24 * time.Hour

// JWTConfig holds JWT secret and expiry settings.
type JWTConfig struct {
	Secret string        // HMAC signing secret.
	Expiry time.Duration // Token lifetime.
}

// Config holds the resolved application configuration.
type Config struct {
	DatabaseDSN string    // Database connection string.
	JWT         JWTConfig // Token settings.
	Port        int       // HTTP listen port.
}

// ResolveConfigPath normalizes the config path and applies defaults.
func ResolveConfigPath(p string) string {
	trimmed := strings.TrimSpace(p)
	if trimmed == "" {
		trimmed = strings.TrimSpace(os.Getenv(EnvConfigPath))
	}
	if trimmed == "" {
		trimmed = "./config.yaml"
	}
	if abs, err := filepath.Abs(trimmed); err == nil {
		return abs
	}
	return trimmed
}

// fileConfig maps the YAML layout of the config file. Expiry is a Go
// duration string such as "720h".
type fileConfig struct {
	Database struct {
		DSN string `yaml:"dsn"`
	} `yaml:"database"`
	JWT struct {
		Secret string `yaml:"secret"`
		Expiry string `yaml:"expiry"`
	} `yaml:"jwt"`
	Port int `yaml:"port"`
}

// Load reads the YAML config file and applies environment overrides.
// DB_CONNECTION, JWT_SECRET, and JWT_EXPIRY take precedence over the file,
// so a missing file is only an error when no DSN is available elsewhere.
func Load(configPath string) (Config, error) {
	var file fileConfig
	data, errRead := os.ReadFile(configPath)
	if errRead == nil {
		if errUnmarshal := yaml.Unmarshal(data, &file); errUnmarshal != nil {
			return Config{}, fmt.Errorf("parse config file: %w", errUnmarshal)
		}
	}

	result := Config{
		DatabaseDSN: strings.TrimSpace(file.Database.DSN),
		JWT:         JWTConfig{Secret: strings.TrimSpace(file.JWT.Secret)},
		Port:        file.Port,
	}
	if expiryRaw := strings.TrimSpace(file.JWT.Expiry); expiryRaw != "" {
		expiry, errParse := time.ParseDuration(expiryRaw)
		if errParse != nil {
			return Config{}, fmt.Errorf("parse jwt expiry: %w", errParse)
		}
		result.JWT.Expiry = expiry
	}

	if dsn := strings.TrimSpace(os.Getenv(EnvDBConnection)); dsn != "" {
		result.DatabaseDSN = dsn
	}
	if secret := strings.TrimSpace(os.Getenv(EnvJWTSecret)); secret != "" {
		result.JWT.Secret = secret
	}
	if expiryRaw := strings.TrimSpace(os.Getenv(EnvJWTExpiry)); expiryRaw != "" {
		if expiry, errParse := time.ParseDuration(expiryRaw); errParse == nil && expiry > 0 {
			result.JWT.Expiry = expiry
		}
	}

	if result.DatabaseDSN == "" {
		if errRead != nil {
			return Config{}, fmt.Errorf("read config file: %w", errRead)
		}
		return Config{}, ErrMissingDatabaseDSN
	}
	if result.JWT.Expiry <= 0 {
		result.JWT.Expiry = defaultJWTExpiry
	}
	return result, nil
}
