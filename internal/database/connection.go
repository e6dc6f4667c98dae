package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"customer-api/internal/config"
)

// ConnectionManager owns the shared connection pool
type ConnectionManager struct {
	config config.DatabaseConfig
	retry  *RetryConfig
	logger *logrus.Logger
	db     *sqlx.DB
}

// NewConnectionManager creates a new connection manager
func NewConnectionManager(cfg config.DatabaseConfig, logger *logrus.Logger) *ConnectionManager {
	if logger == nil {
		logger = logrus.New()
	}
	return &ConnectionManager{
		config: cfg,
		retry:  DefaultRetryConfig(cfg.ConnectAttempts),
		logger: logger,
	}
}

// Connect opens the pool, retrying with backoff while the database is
// unreachable, then applies pending migrations when auto-migrate is on.
func (cm *ConnectionManager) Connect(ctx context.Context) error {
	if cm.db != nil {
		return fmt.Errorf("database connection already established")
	}

	dsn, err := dataSourceName(cm.config)
	if err != nil {
		return err
	}

	var db *sqlx.DB
	err = WithRetry(ctx, cm.retry, func(ctx context.Context) error {
		conn, err := sqlx.Open(cm.config.SQLDriverName(), dsn)
		if err != nil {
			return err
		}
		if err := conn.PingContext(ctx); err != nil {
			conn.Close()
			return err
		}
		db = conn
		return nil
	}, func(attempt int, err error) {
		cm.logger.WithError(err).WithFields(logrus.Fields{
			"driver":  cm.config.Driver,
			"attempt": attempt,
		}).Warn("Database not reachable, retrying")
	})
	if err != nil {
		return fmt.Errorf("failed to connect to %s database: %w", cm.config.Driver, err)
	}

	db.SetMaxOpenConns(cm.config.MaxOpenConns)
	db.SetMaxIdleConns(cm.config.MaxIdleConns)
	if cm.config.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cm.config.ConnMaxLifetime)
	}
	cm.db = db

	cm.logger.WithFields(logrus.Fields{
		"driver":         cm.config.Driver,
		"max_open_conns": cm.config.MaxOpenConns,
	}).Info("Database connection established")

	if cm.config.AutoMigrate {
		if err := cm.MigrationManager().RunMigrations(); err != nil {
			cm.Close()
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	return nil
}

// GetDB returns the connection pool
func (cm *ConnectionManager) GetDB() *sqlx.DB {
	return cm.db
}

// MigrationManager returns a migration manager for the configured database
func (cm *ConnectionManager) MigrationManager() *MigrationManager {
	return NewMigrationManager(cm.config, cm.logger)
}

// Close closes the connection pool
func (cm *ConnectionManager) Close() error {
	if cm.db == nil {
		return nil
	}

	err := cm.db.Close()
	cm.db = nil

	if err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}

	cm.logger.Info("Database connection closed")
	return nil
}

// Ping tests the database connection
func (cm *ConnectionManager) Ping(ctx context.Context) error {
	if cm.db == nil {
		return fmt.Errorf("database connection not established")
	}

	if err := cm.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return nil
}

// HealthCheck pings the database and runs a trivial query against it
func (cm *ConnectionManager) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := cm.Ping(ctx); err != nil {
		return err
	}

	var result int
	if err := cm.db.GetContext(ctx, &result, "SELECT 1"); err != nil {
		return fmt.Errorf("test query failed: %w", err)
	}

	if result != 1 {
		return fmt.Errorf("test query returned unexpected result: %d", result)
	}

	return nil
}

// customerColumns lists the columns the repositories read and write
var customerColumns = []string{"id", "name", "address", "email", "phonenumber", "blocked"}

// ValidateSchema checks the catalog for the customers table and every expected column
func (cm *ConnectionManager) ValidateSchema(ctx context.Context) error {
	if cm.db == nil {
		return fmt.Errorf("database connection not established")
	}

	var tableQuery, columnQuery string
	if cm.config.IsSQLite() {
		tableQuery = "SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = 'customers'"
		columnQuery = "SELECT name FROM pragma_table_info('customers')"
	} else {
		tableQuery = "SELECT count(*) FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = 'customers'"
		columnQuery = "SELECT column_name FROM information_schema.columns WHERE table_schema = current_schema() AND table_name = 'customers'"
	}

	var tables int
	if err := cm.db.GetContext(ctx, &tables, tableQuery); err != nil {
		return fmt.Errorf("failed to read schema catalog: %w", err)
	}
	if tables == 0 {
		return fmt.Errorf("customers table is missing")
	}

	var columns []string
	if err := cm.db.SelectContext(ctx, &columns, columnQuery); err != nil {
		return fmt.Errorf("failed to read customers columns: %w", err)
	}

	present := make(map[string]bool, len(columns))
	for _, column := range columns {
		present[strings.ToLower(column)] = true
	}
	var missing []string
	for _, column := range customerColumns {
		if !present[column] {
			missing = append(missing, column)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("customers table is missing columns: %s", strings.Join(missing, ", "))
	}

	return nil
}

// dataSourceName returns the driver DSN, creating the directory of a SQLite file
func dataSourceName(cfg config.DatabaseConfig) (string, error) {
	if !cfg.IsSQLite() {
		return cfg.DSN, nil
	}

	path := cfg.DSN
	if !strings.HasPrefix(path, "file:") && !strings.Contains(path, ":memory:") {
		if dir := filepath.Dir(stripQuery(path)); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return "", fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	return buildSQLiteDSN(path), nil
}

// buildSQLiteDSN appends the connection options the service relies on
// unless the DSN already carries its own.
func buildSQLiteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path
	}

	options := []string{
		"_foreign_keys=on",
		"_busy_timeout=5000",
		"_journal_mode=WAL",
	}
	return fmt.Sprintf("%s?%s", path, strings.Join(options, "&"))
}

func stripQuery(dsn string) string {
	if i := strings.Index(dsn, "?"); i >= 0 {
		return dsn[:i]
	}
	return dsn
}
