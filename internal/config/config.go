package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Environment string
	Port        string
	Service     ServiceConfig
	Log         LogConfig
	Database    DatabaseConfig
	HTTP        HTTPConfig
}

// ServiceConfig describes the service in the index document
type ServiceConfig struct {
	Name    string
	Version string
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string // logrus level name
	Format string // "text" or "json"
}

// HTTPConfig holds request limits and server timeouts
type HTTPConfig struct {
	MaxBodyBytes    int64
	RateLimitRPS    float64 // 0 disables rate limiting
	RateLimitBurst  int
	ShutdownTimeout time.Duration
}

// Load loads configuration from environment variables and an optional .env file
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Set up Viper
	viper.AutomaticEnv()
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("SERVICE_NAME", "Customer REST API Service")
	viper.SetDefault("SERVICE_VERSION", "1.0")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "text")
	viper.SetDefault("DB_DRIVER", DriverSQLite)
	viper.SetDefault("DB_DSN", DefaultSQLitePath)
	viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 25)
	viper.SetDefault("DB_CONN_MAX_LIFETIME", "1h")
	viper.SetDefault("DB_AUTO_MIGRATE", true)
	viper.SetDefault("DB_CONNECT_ATTEMPTS", 5)
	viper.SetDefault("RATE_LIMIT_RPS", 0)
	viper.SetDefault("RATE_LIMIT_BURST", 20)
	viper.SetDefault("MAX_BODY_BYTES", 1<<20)
	viper.SetDefault("SHUTDOWN_TIMEOUT", "30s")

	config := &Config{
		Environment: viper.GetString("ENVIRONMENT"),
		Port:        viper.GetString("PORT"),
		Service: ServiceConfig{
			Name:    viper.GetString("SERVICE_NAME"),
			Version: viper.GetString("SERVICE_VERSION"),
		},
		Log: LogConfig{
			Level:  viper.GetString("LOG_LEVEL"),
			Format: viper.GetString("LOG_FORMAT"),
		},
		Database: DatabaseConfig{
			Driver:          strings.ToLower(viper.GetString("DB_DRIVER")),
			DSN:             viper.GetString("DB_DSN"),
			MaxOpenConns:    viper.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    viper.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: viper.GetDuration("DB_CONN_MAX_LIFETIME"),
			AutoMigrate:     viper.GetBool("DB_AUTO_MIGRATE"),
			ConnectAttempts: viper.GetInt("DB_CONNECT_ATTEMPTS"),
		},
		HTTP: HTTPConfig{
			MaxBodyBytes:    viper.GetInt64("MAX_BODY_BYTES"),
			RateLimitRPS:    viper.GetFloat64("RATE_LIMIT_RPS"),
			RateLimitBurst:  viper.GetInt("RATE_LIMIT_BURST"),
			ShutdownTimeout: viper.GetDuration("SHUTDOWN_TIMEOUT"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the configuration for values the service cannot run with
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("PORT must be numeric, got %q", c.Port)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.Log.Format)
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		return fmt.Errorf("MAX_BODY_BYTES must be positive")
	}
	if c.HTTP.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must not be negative")
	}
	if c.HTTP.RateLimitRPS > 0 && c.HTTP.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_BURST must be positive when rate limiting is enabled")
	}
	return c.Database.Validate()
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// GetEnv gets an environment variable with a fallback value
func GetEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
