package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	DriverPostgres = "postgres"
	DriverMongoDB  = "mongodb"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Redis    RedisConfig
}

// AppConfig holds application configuration
type AppConfig struct {
	Port               int      `envconfig:"APP_PORT" default:"8080"`
	Env                string   `envconfig:"APP_ENV" default:"development"`
	Timezone           string   `envconfig:"APP_TIMEZONE" default:"UTC"`
	LogLevel           string   `envconfig:"LOG_LEVEL" default:"info"`
	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
	LoginRateLimit     int      `envconfig:"LOGIN_RATE_LIMIT" default:"10"`
}

type DatabaseConfig struct {
	Driver        string `envconfig:"DB_DRIVER" default:"postgres"`
	URL           string `envconfig:"DATABASE_URL"`
	MongoURI      string `envconfig:"MONGO_URI"`
	MongoDatabase string `envconfig:"MONGO_DATABASE" default:"hris"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret            string `envconfig:"JWT_SECRET"`
	AccessExpiration  string `envconfig:"JWT_ACCESS_EXPIRATION_TIME" default:"168h"`
	RefreshExpiration string `envconfig:"JWT_REFRESH_EXPIRATION_TIME" default:"720h"`
}

// RedisConfig is optional; an empty Addr keeps revoked tokens in memory.
type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// Load reads .env when present, then binds the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	config := &Config{}
	if err := envconfig.Process("", config); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// LoadDatabase binds only the storage settings, for commands that never
// issue tokens.
func LoadDatabase() (*DatabaseConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	dbConfig := &DatabaseConfig{}
	if err := envconfig.Process("", dbConfig); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	if err := dbConfig.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return dbConfig, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if err := c.Database.Validate(); err != nil {
		return err
	}

	for name, value := range map[string]string{
		"JWT_ACCESS_EXPIRATION_TIME":  c.JWT.AccessExpiration,
		"JWT_REFRESH_EXPIRATION_TIME": c.JWT.RefreshExpiration,
	} {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}

	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

func (d *DatabaseConfig) Validate() error {
	d.Driver = strings.ToLower(strings.TrimSpace(d.Driver))
	switch d.Driver {
	case DriverPostgres:
		if d.URL == "" {
			return fmt.Errorf("DATABASE_URL is required when DB_DRIVER=%s", DriverPostgres)
		}
	case DriverMongoDB:
		if d.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required when DB_DRIVER=%s", DriverMongoDB)
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", d.Driver)
	}
	return nil
}

// Location resolves APP_TIMEZONE, the zone attendance calendar days are taken in.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}
	return loc, nil
}

// LogLevel maps LOG_LEVEL to a slog level; unknown values mean info.
func (c *Config) LogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.App.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// IsProduction reports whether APP_ENV is "production".
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
