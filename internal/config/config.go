package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
)

// DatabaseConfig selects the backing store. Driver "mysql" uses the
// host/port/credential fields, "sqlite" only Path.
type DatabaseConfig struct {
	Driver       string
	Host         string
	Port         int
	Username     string
	Password     string
	DatabaseName string
	Path         string
}

// DSN renders the gorm connection string for the configured driver.
func (d DatabaseConfig) DSN() string {
	if d.Driver == "sqlite" {
		return d.Path
	}
	return fmt.Sprintf(
		"%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.Username, d.Password, d.Host, d.Port, d.DatabaseName,
	)
}

// Config keeps all runtime settings for the service.
type Config struct {
	HTTPAddr        string
	Database        DatabaseConfig
	RedisAddr       string
	CacheTTL        time.Duration
	JWTSecret       string
	TokenTTL        time.Duration
	OverdueSchedule string
	LogLevel        string
	LogJSON         bool
}

// Load reads a .env file if present, then the process environment.
// Missing required settings are reported together, not one at a time.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		HTTPAddr: getenv("HTTP_ADDR", ":8080"),
		Database: DatabaseConfig{
			Driver:       getenv("DB_DRIVER", "mysql"),
			Host:         getenv("DB_HOST", "localhost"),
			Port:         getenvInt("DB_PORT", 3306),
			Username:     getenv("DB_USER", "libman"),
			Password:     os.Getenv("DB_PASSWORD"),
			DatabaseName: getenv("DB_NAME", "libman"),
			Path:         getenv("DB_PATH", "libman.db"),
		},
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		CacheTTL:        getenvDuration("CACHE_TTL", 5*time.Minute),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		TokenTTL:        getenvDuration("TOKEN_TTL", 24*time.Hour),
		OverdueSchedule: getenv("OVERDUE_SCHEDULE", "@daily"),
		LogLevel:        getenv("LOG_LEVEL", "info"),
		LogJSON:         getenvBool("LOG_JSON", false),
	}

	var errs *multierror.Error
	if cfg.JWTSecret == "" {
		errs = multierror.Append(errs, fmt.Errorf("JWT_SECRET is required"))
	}
	switch cfg.Database.Driver {
	case "mysql", "sqlite":
	default:
		errs = multierror.Append(errs, fmt.Errorf("DB_DRIVER must be mysql or sqlite, got %q", cfg.Database.Driver))
	}
	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return v
}

func getenvBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return v
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key)))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
