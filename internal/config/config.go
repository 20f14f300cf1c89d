package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	HTTPPort    string
	LogLevel    string
	HashScheme  string
	CORSOrigins []string
	DBConfig    DBConfig
	Market      MarketConfig
	Session     SessionConfig
}

type DBConfig struct {
	Driver   string
	Path     string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// ConnectionString returns the DSN understood by the configured driver.
func (d DBConfig) ConnectionString() string {
	if d.Driver == DriverSQLite {
		return fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", d.Path)
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Password, d.DBName)
}

type MarketConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type SessionConfig struct {
	TTL        time.Duration
	CookieName string
	Secure     bool
}

func LoadConfig(path string) (Config, error) {
	if err := godotenv.Load(path); err != nil {
		logrus.WithError(err).Warn("failed to load config file, using env vars")
	}

	cfg := Config{
		HTTPPort:    getEnv("HTTP_PORT", ":8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		HashScheme:  getEnv("HASH_SCHEME", "bcrypt"),
		CORSOrigins: getList("CORS_ORIGINS", []string{"http://localhost:8080"}),
		DBConfig: DBConfig{
			Driver:   getEnv("DB_DRIVER", DriverSQLite),
			Path:     getEnv("DB_PATH", "users.db"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "password"),
			DBName:   getEnv("DB_NAME", "dashboard"),
		},
		Market: MarketConfig{
			BaseURL: getEnv("MARKET_API_URL", "https://api.coingecko.com/api/v3"),
			APIKey:  getEnv("MARKET_API_KEY", ""),
			Timeout: getDuration("MARKET_API_TIMEOUT", 15*time.Second),
		},
		Session: SessionConfig{
			TTL:        getDuration("SESSION_TTL", 12*time.Hour),
			CookieName: getEnv("SESSION_COOKIE", "dashboard_session"),
			Secure:     getBool("SESSION_SECURE", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []string

	switch c.DBConfig.Driver {
	case DriverSQLite:
		if c.DBConfig.Path == "" {
			errs = append(errs, "DB_PATH is required for the sqlite driver")
		}
	case DriverPostgres:
	default:
		errs = append(errs, fmt.Sprintf("unsupported DB_DRIVER %q", c.DBConfig.Driver))
	}

	switch c.HashScheme {
	case "bcrypt", "sha256":
	default:
		errs = append(errs, fmt.Sprintf("unsupported HASH_SCHEME %q", c.HashScheme))
	}

	if c.Market.BaseURL == "" {
		errs = append(errs, "MARKET_API_URL is required")
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, "SESSION_TTL must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		logrus.WithField("key", key).Warn("invalid duration, using default")
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getList(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
