package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/sirupsen/logrus"

	"customer-api/internal/config"
)

//go:embed migrations
var migrationsFS embed.FS

// MigrationManager applies the embedded schema migrations. It works on its
// own connection because closing a migrate instance closes the database
// handle it was given.
type MigrationManager struct {
	config config.DatabaseConfig
	logger *logrus.Logger
}

// NewMigrationManager creates a new migration manager
func NewMigrationManager(cfg config.DatabaseConfig, logger *logrus.Logger) *MigrationManager {
	if logger == nil {
		logger = logrus.New()
	}
	return &MigrationManager{
		config: cfg,
		logger: logger,
	}
}

// MigrationInfo contains information about a migration
type MigrationInfo struct {
	Version uint
	Dirty   bool
	Applied bool
}

// RunMigrations executes all pending migrations
func (m *MigrationManager) RunMigrations() error {
	m.logger.Info("Starting database migrations...")

	mig, err := m.initMigrate()
	if err != nil {
		return fmt.Errorf("failed to initialize migrate: %w", err)
	}
	defer closeMigrate(mig, m.logger)

	currentVersion, dirty, err := mig.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get current migration version: %w", err)
	}

	if dirty {
		previous, err := m.previousVersion(currentVersion)
		if err != nil {
			return err
		}
		m.logger.WithFields(logrus.Fields{
			"version":        currentVersion,
			"forced_version": previous,
		}).Warn("Database is in dirty state, retrying the failed migration")
		if err := mig.Force(previous); err != nil {
			return fmt.Errorf("failed to force migration version: %w", err)
		}
	}

	m.logger.WithField("current_version", currentVersion).Info("Current migration version")

	if err := mig.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	newVersion, _, err := mig.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get new migration version: %w", err)
	}

	m.logger.WithField("new_version", newVersion).Info("Migrations completed successfully")
	return nil
}

// RollbackMigration rolls back the last migration
func (m *MigrationManager) RollbackMigration() error {
	m.logger.Info("Rolling back last migration...")

	mig, err := m.initMigrate()
	if err != nil {
		return fmt.Errorf("failed to initialize migrate: %w", err)
	}
	defer closeMigrate(mig, m.logger)

	currentVersion, _, err := mig.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return fmt.Errorf("no migrations to rollback")
		}
		return fmt.Errorf("failed to get current migration version: %w", err)
	}

	m.logger.WithField("current_version", currentVersion).Info("Rolling back from version")

	if err := mig.Steps(-1); err != nil {
		return fmt.Errorf("failed to rollback migration: %w", err)
	}

	newVersion, _, err := mig.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get new migration version: %w", err)
	}

	m.logger.WithField("new_version", newVersion).Info("Rollback completed successfully")
	return nil
}

// GetMigrationStatus returns the current migration status
func (m *MigrationManager) GetMigrationStatus() (*MigrationInfo, error) {
	mig, err := m.initMigrate()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize migrate: %w", err)
	}
	defer closeMigrate(mig, m.logger)

	version, dirty, err := mig.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return &MigrationInfo{}, nil
		}
		return nil, fmt.Errorf("failed to get migration version: %w", err)
	}

	return &MigrationInfo{
		Version: version,
		Dirty:   dirty,
		Applied: true,
	}, nil
}

// previousVersion returns the migration before version, or migratedb.NilVersion
// when version is the first one
func (m *MigrationManager) previousVersion(version uint) (int, error) {
	source, err := iofs.New(migrationsFS, "migrations/"+m.config.Driver)
	if err != nil {
		return 0, fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	defer source.Close()

	prev, err := source.Prev(version)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return migratedb.NilVersion, nil
		}
		return 0, fmt.Errorf("failed to find migration before version %d: %w", version, err)
	}
	return int(prev), nil
}

// initMigrate builds a migrate instance over the embedded migrations for the configured driver
func (m *MigrationManager) initMigrate() (*migrate.Migrate, error) {
	source, err := iofs.New(migrationsFS, "migrations/"+m.config.Driver)
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	dsn, err := dataSourceName(m.config)
	if err != nil {
		source.Close()
		return nil, err
	}

	db, err := sql.Open(m.config.SQLDriverName(), dsn)
	if err != nil {
		source.Close()
		return nil, fmt.Errorf("failed to open migration connection: %w", err)
	}

	var driver migratedb.Driver
	switch m.config.Driver {
	case config.DriverPostgres:
		driver, err = migratepgx.WithInstance(db, &migratepgx.Config{})
	default:
		driver, err = migratesqlite.WithInstance(db, &migratesqlite.Config{})
	}
	if err != nil {
		db.Close()
		source.Close()
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	mig, err := migrate.NewWithInstance("iofs", source, m.config.Driver, driver)
	if err != nil {
		driver.Close()
		source.Close()
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	mig.Log = &migrateLogger{logger: m.logger}
	return mig, nil
}

func closeMigrate(mig *migrate.Migrate, logger *logrus.Logger) {
	sourceErr, dbErr := mig.Close()
	if sourceErr != nil {
		logger.WithError(sourceErr).Warn("Failed to close migration source")
	}
	if dbErr != nil {
		logger.WithError(dbErr).Warn("Failed to close migration connection")
	}
}

// migrateLogger routes golang-migrate output through logrus
type migrateLogger struct {
	logger *logrus.Logger
}

func (l *migrateLogger) Printf(format string, v ...interface{}) {
	l.logger.Debugf("migrate: "+format, v...)
}

func (l *migrateLogger) Verbose() bool {
	return l.logger.IsLevelEnabled(logrus.DebugLevel)
}
