package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/sirupsen/logrus"

	"customer-api/internal/config"
	"customer-api/internal/database"
	"customer-api/internal/logging"
)

func main() {
	var (
		action  = flag.String("action", "up", "Migration action: up, down, status, validate")
		dsn     = flag.String("dsn", "", "Database DSN (defaults to DB_DSN)")
		driver  = flag.String("driver", "", "Database driver: sqlite3 or postgres (defaults to DB_DRIVER)")
		verbose = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	if *dsn != "" {
		cfg.Database.DSN = *dsn
	}
	if *driver != "" {
		cfg.Database.Driver = *driver
	}
	if *verbose {
		cfg.Log.Level = "debug"
	}
	// migrations only run when asked for
	cfg.Database.AutoMigrate = false

	if err := cfg.Database.Validate(); err != nil {
		logrus.WithError(err).Fatal("Invalid database configuration")
	}

	logger := logging.New(cfg.Log)
	logger.WithFields(logrus.Fields{
		"driver": cfg.Database.Driver,
		"action": *action,
	}).Info("Starting migration tool")

	cm := database.NewConnectionManager(cfg.Database, logger)

	switch *action {
	case "up":
		err = runMigrationsUp(cm)
	case "down":
		err = runMigrationsDown(cm)
	case "status":
		err = showMigrationStatus(cm)
	case "validate":
		err = validateSchema(cm)
	default:
		logger.WithField("action", *action).Fatal("Unknown action. Use: up, down, status, validate")
	}

	if err != nil {
		logger.WithError(err).Fatalf("Migration %s failed", *action)
	}

	logger.Info("Migration tool completed successfully")
}

func runMigrationsUp(cm *database.ConnectionManager) error {
	return cm.MigrationManager().RunMigrations()
}

func runMigrationsDown(cm *database.ConnectionManager) error {
	return cm.MigrationManager().RollbackMigration()
}

func showMigrationStatus(cm *database.ConnectionManager) error {
	status, err := cm.MigrationManager().GetMigrationStatus()
	if err != nil {
		return fmt.Errorf("failed to get migration status: %w", err)
	}

	fmt.Printf("Migration Status:\n")
	fmt.Printf("  Version: %d\n", status.Version)
	fmt.Printf("  Applied: %t\n", status.Applied)
	fmt.Printf("  Dirty: %t\n", status.Dirty)

	return nil
}

func validateSchema(cm *database.ConnectionManager) error {
	ctx := context.Background()
	if err := cm.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer cm.Close()

	if err := cm.ValidateSchema(ctx); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}

	fmt.Println("Schema validation passed successfully")
	return nil
}
