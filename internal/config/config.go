package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database    DatabaseConfig
	JWT         JWTConfig
	App         AppConfig
	Timesheet   TimesheetConfig
	CORSOrigins []string
}

type DatabaseConfig struct {
	Host          string
	Port          int
	User          string
	Password      string
	Name          string
	SSLMode       string
	RunMigrations bool
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port     int
	Env      string
	LogLevel string
}

// TimesheetConfig holds the reporting rules that vary per deployment.
type TimesheetConfig struct {
	// OwnershipLegacyMode opens days nobody owns to every lead.
	OwnershipLegacyMode bool
	// AutoValidateAfterDays is the grace period after a week ends before
	// its drafts are validated automatically.
	AutoValidateAfterDays int
	AutoValidateInterval  time.Duration
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file loaded, using process environment")
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	runMigrations, err := strconv.ParseBool(getEnv("RUN_MIGRATIONS", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid RUN_MIGRATIONS: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:          getEnv("DB_HOST", "localhost"),
		Port:          dbPort,
		User:          getEnv("DB_USER", "postgres"),
		Password:      getEnv("DB_PASSWORD", ""),
		Name:          getEnv("DB_NAME", "timesheet"),
		SSLMode:       getEnv("DB_SSL_MODE", "disable"),
		RunMigrations: runMigrations,
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:     appPort,
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Timesheet rules
	legacyMode, err := strconv.ParseBool(getEnv("OWNERSHIP_LEGACY_MODE", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid OWNERSHIP_LEGACY_MODE: %w", err)
	}
	autoValidateDays, err := strconv.Atoi(getEnv("AUTO_VALIDATE_AFTER_DAYS", "7"))
	if err != nil {
		return nil, fmt.Errorf("invalid AUTO_VALIDATE_AFTER_DAYS: %w", err)
	}
	autoValidateInterval, err := time.ParseDuration(getEnv("AUTO_VALIDATE_INTERVAL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid AUTO_VALIDATE_INTERVAL: %w", err)
	}

	config.Timesheet = TimesheetConfig{
		OwnershipLegacyMode:   legacyMode,
		AutoValidateAfterDays: autoValidateDays,
		AutoValidateInterval:  autoValidateInterval,
	}

	config.CORSOrigins = getEnvSlice("CORS_ALLOWED_ORIGINS")
	if len(config.CORSOrigins) == 0 {
		config.CORSOrigins = []string{"http://localhost:3000"}
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Timesheet.AutoValidateAfterDays < 0 {
		return fmt.Errorf("AUTO_VALIDATE_AFTER_DAYS must not be negative")
	}
	if c.Timesheet.AutoValidateInterval <= 0 {
		return fmt.Errorf("AUTO_VALIDATE_INTERVAL must be positive")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// SlogLevel maps LOG_LEVEL onto slog.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			result = append(result, v)
		}
	}
	return result
}
