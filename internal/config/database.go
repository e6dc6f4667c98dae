package config

import (
	"fmt"
	"strings"
	"time"
)

// Supported values of DB_DRIVER
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// DefaultSQLitePath is the database file used when DB_DSN is not set
const DefaultSQLitePath = "./data/customers.db"

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
	ConnectAttempts int
}

// IsSQLite reports whether the embedded SQLite driver is configured
func (c DatabaseConfig) IsSQLite() bool {
	return c.Driver == DriverSQLite
}

// SQLDriverName returns the database/sql driver name registered for the configured engine
func (c DatabaseConfig) SQLDriverName() string {
	if c.Driver == DriverPostgres {
		return "pgx"
	}
	return "sqlite3"
}

// Validate checks database settings
func (c DatabaseConfig) Validate() error {
	switch c.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (use %s or %s)", c.Driver, DriverSQLite, DriverPostgres)
	}
	if strings.TrimSpace(c.DSN) == "" {
		return fmt.Errorf("DB_DSN must not be empty")
	}
	if c.MaxOpenConns <= 0 {
		return fmt.Errorf("DB_MAX_OPEN_CONNS must be positive, got %d", c.MaxOpenConns)
	}
	if c.MaxIdleConns <= 0 {
		return fmt.Errorf("DB_MAX_IDLE_CONNS must be positive, got %d", c.MaxIdleConns)
	}
	if c.ConnectAttempts <= 0 {
		return fmt.Errorf("DB_CONNECT_ATTEMPTS must be positive, got %d", c.ConnectAttempts)
	}
	return nil
}
