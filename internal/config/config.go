package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/database"
	"github.com/sirupsen/logrus"
)

// Create a new instance of the logger
// Configure it to log at the desired level
// and format it as JSON for structured logging
var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	level, _ := logrus.ParseLevel(DefaultLogLevel(GetEnvWithDefault("APP_ENV", "development")))
	log.SetLevel(level)
}

const (
	defaultJWTSecret = "secret"
	maxPageSize      = 100
)

// Config used for the application configuration, loading the input from environment variables
type Config struct {
	// Server Configuration
	Port        int    `json:"port"`
	Host        string `json:"host"`
	Environment string `json:"environment"`

	// Database configuration
	DatabaseURL string `json:"database_url"`
	DBDriver    string `json:"db_driver"`
	DBHost      string `json:"db_host"`
	DBPort      string `json:"db_port"`
	DBName      string `json:"db_name"`
	DBUser      string `json:"db_user"`
	DBPassword  string `json:"db_password"`
	DBSSLMode   string `json:"db_sslmode"`
	DBPath      string `json:"db_path"`
	SeedData    bool   `json:"seed_data"`

	// Logging configuration
	LogLevel string `json:"log_level"`

	// Security Configuration
	JWTSecret string        `json:"jwt_secret"`
	TokenTTL  time.Duration `json:"token_ttl"`

	// API behaviour
	PageSize       int     `json:"page_size"`
	RateLimit      float64 `json:"rate_limit"`
	RateLimitBurst int     `json:"rate_limit_burst"`
}

// String returns a string representation of Config with sensitive data masked
func (c *Config) String() string {
	return fmt.Sprintf("Config{Port: %d, Host: %s, Environment: %s, DatabaseURL: %s, DBDriver: %s, DBHost: %s, DBPort: %s, DBName: %s, DBUser: %s, DBPassword: [REDACTED], DBPath: %s, LogLevel: %s, JWTSecret: [REDACTED], TokenTTL: %s, PageSize: %d, RateLimit: %.1f, RateLimitBurst: %d}",
		c.Port, c.Host, c.Environment, maskDatabaseURL(c.DatabaseURL), c.DBDriver, c.DBHost, c.DBPort, c.DBName, c.DBUser,
		c.DBPath, c.LogLevel, c.TokenTTL, c.PageSize, c.RateLimit, c.RateLimitBurst)
}

// Database converts the flat settings into the connection configuration
// used by the database package.
func (c *Config) Database() database.DatabaseConfig {
	return database.DatabaseConfig{
		Driver:   c.DBDriver,
		URL:      c.DatabaseURL,
		Host:     c.DBHost,
		Port:     c.DBPort,
		User:     c.DBUser,
		Password: c.DBPassword,
		Name:     c.DBName,
		SSLMode:  c.DBSSLMode,
		Path:     c.DBPath,
	}
}

// maskDatabaseURL masks password in database URL
func maskDatabaseURL(dbURL string) string {
	if dbURL == "" {
		return ""
	}

	parsed, err := url.Parse(dbURL)
	if err != nil {
		return "[REDACTED_INVALID_URL]"
	}

	if parsed.User != nil {
		// Replace password with [REDACTED]
		parsed.User = url.UserPassword(parsed.User.Username(), "[REDACTED]")
	}

	return parsed.String()
}

// DefaultLogLevel maps an APP_ENV value to the logrus level used when
// LOG_LEVEL is not set.
func DefaultLogLevel(environment string) string {
	switch environment {
	case "development":
		return "debug"
	case "production":
		return "error"
	default:
		return "info"
	}
}

// LoadConfig read the proper configuration from environment variables and returns a Config struct
// It also validates formats like DATABASE_URL, the database driver and the JWT secret
// Returns an error if any environment variable is invalid
func LoadConfig() (*Config, error) {
	log.Info("Loading configuration from environment variables")
	port, err := strconv.Atoi(GetEnvWithDefault("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	dbURL := GetEnvWithDefault("DATABASE_URL", "")
	if dbURL != "" {
		// validate URL with net/url
		if _, err := url.ParseRequestURI(dbURL); err != nil {
			return nil, fmt.Errorf("invalid DATABASE_URL format: %w", err)
		}
	}

	driver := strings.ToLower(GetEnvWithDefault("DB_DRIVER", "sqlite"))
	switch driver {
	case "sqlite", "postgres", "postgresql":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q (supported: sqlite, postgres)", driver)
	}

	environment := GetEnvWithDefault("APP_ENV", "development")
	logLevel := GetEnvWithDefault("LOG_LEVEL", DefaultLogLevel(environment))
	if _, err := logrus.ParseLevel(logLevel); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	config := &Config{
		Port:           port,
		Host:           GetEnvWithDefault("APP_HOST", "localhost"),
		Environment:    environment,
		DatabaseURL:    dbURL,
		DBDriver:       driver,
		DBHost:         GetEnvWithDefault("DB_HOST", "localhost"),
		DBPort:         GetEnvWithDefault("DB_PORT", "5432"),
		DBName:         GetEnvWithDefault("DB_NAME", "foodgram"),
		DBUser:         GetEnvWithDefault("DB_USER", "foodgram"),
		DBPassword:     GetEnvWithDefault("DB_PASSWORD", "password"),
		DBSSLMode:      GetEnvWithDefault("DB_SSLMODE", "disable"),
		DBPath:         GetEnvWithDefault("DB_PATH", "foodgram.sqlite"),
		SeedData:       GetEnvAsType("SEED_DATA", true),
		LogLevel:       logLevel,
		JWTSecret:      GetEnvWithDefault("JWT_SECRET", defaultJWTSecret),
		TokenTTL:       time.Duration(GetEnvAsType("TOKEN_TTL_HOURS", 24)) * time.Hour,
		PageSize:       GetEnvAsType("PAGE_SIZE", 6),
		RateLimit:      GetEnvAsType("RATE_LIMIT", 100.0),
		RateLimitBurst: GetEnvAsType("RATE_LIMIT_BURST", 200),
	}

	if config.Environment == "production" && config.JWTSecret == defaultJWTSecret {
		return nil, errors.New("JWT_SECRET must be set in production")
	}
	if config.PageSize < 1 || config.PageSize > maxPageSize {
		return nil, fmt.Errorf("PAGE_SIZE must be between 1 and %d, got %d", maxPageSize, config.PageSize)
	}
	if config.TokenTTL <= 0 {
		return nil, errors.New("TOKEN_TTL_HOURS must be positive")
	}
	if config.RateLimit <= 0 || config.RateLimitBurst < 1 {
		return nil, errors.New("RATE_LIMIT and RATE_LIMIT_BURST must be positive")
	}

	log.Infof("Configuration loaded: %s", config.String())
	return config, nil
}

// Helper to get environment with default values
func GetEnvWithDefault(key, defaultValue string) string {
	log.Tracef("Getting environment variable: %s", key)
	value := os.Getenv(key)
	if value == "" {
		log.Debugf("Environment variable %s not set, using default value: %s", key, defaultValue)
		return defaultValue
	}
	return value
}

// GetEnvAsType retrieves an environment variable and converts it to the specified type
// using generic type handling.
func GetEnvAsType[T any](key string, defaultValue T) T {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var result T
	switch any(result).(type) {
	case int:
		intValue, err := strconv.Atoi(value)
		if err != nil {
			return defaultValue
		}
		return any(intValue).(T)
	case float64:
		floatValue, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return defaultValue
		}
		return any(floatValue).(T)
	case string:
		return any(value).(T)
	case bool:
		boolValue, err := strconv.ParseBool(value)
		if err != nil {
			return defaultValue
		}
		return any(boolValue).(T)
	default:
		return defaultValue // Fallback for unsupported types
	}
}
