package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"customer-api/internal/adapters/storage"
	"customer-api/internal/config"
	"customer-api/internal/logging"
	"customer-api/internal/migration"
	"customer-api/internal/services"
	"customer-api/pkg/server"
)

func main() {
	var (
		jsonPath = flag.String("json", "./data/import", "Directory containing customers.json")
		action   = flag.String("action", "migrate", "Action: migrate, validate, check")
		verbose  = flag.Bool("verbose", false, "Enable verbose logging")
		dryRun   = flag.Bool("dry-run", false, "Validate the file without writing to the database")
		backup   = flag.String("backup-dir", "", "Directory for backups of imported files (default: <json>/backup)")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if *verbose {
		cfg.Log.Level = "debug"
	}
	logger := logging.New(cfg.Log)

	absJSONPath, err := filepath.Abs(*jsonPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to get absolute JSON path")
	}

	logger.WithFields(logrus.Fields{
		"json_path": absJSONPath,
		"action":    *action,
		"dry_run":   *dryRun,
	}).Info("Starting JSON migration tool")

	ctx := context.Background()

	switch *action {
	case "check":
		err = checkJSONFiles(ctx, absJSONPath, *backup, logger)
	case "migrate":
		err = runMigration(ctx, cfg, absJSONPath, *backup, logger, *dryRun)
	case "validate":
		err = validateMigration(ctx, cfg, absJSONPath, *backup, logger)
	default:
		logger.WithField("action", *action).Fatal("Unknown action. Use: check, migrate, validate")
	}

	if err != nil {
		logger.WithError(err).Fatalf("JSON migration %s failed", *action)
	}

	logger.Info("JSON migration tool completed successfully")
}

// newMigrator builds a migrator, keeping backups in backupDir when it is set
func newMigrator(service services.CustomerService, jsonPath, backupDir string, logger *logrus.Logger) (*migration.JSONMigrator, error) {
	migrator := migration.NewJSONMigrator(service, jsonPath, logger)
	if backupDir == "" {
		return migrator, nil
	}

	backups, err := storage.NewLocalFileStorage(backupDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open backup directory: %w", err)
	}
	migrator.SetBackupStorage(backups)
	return migrator, nil
}

func checkJSONFiles(ctx context.Context, jsonPath, backupDir string, logger *logrus.Logger) error {
	logger.Info("Checking for JSON files...")

	migrator, err := newMigrator(nil, jsonPath, backupDir, logger)
	if err != nil {
		return err
	}
	hasFiles, existingFiles := migrator.CheckJSONFilesExist()

	if !hasFiles {
		fmt.Println("No JSON files found in the specified directory.")
		fmt.Printf("Checked directory: %s\n", jsonPath)
		fmt.Printf("Expected file: %s\n", migration.CustomersFile)
		return nil
	}

	for _, file := range existingFiles {
		fmt.Printf("Found %s\n", file)
		if info, err := os.Stat(filepath.Join(jsonPath, file)); err == nil {
			fmt.Printf("  Size: %d bytes, Modified: %s\n",
				info.Size(), info.ModTime().Format("2006-01-02 15:04:05"))
		}
	}

	backups, err := migrator.ListBackups(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Backups from earlier imports: %d\n", len(backups))
	for _, b := range backups {
		fmt.Printf("  %s (%d bytes)\n", b.Key, b.Size)
	}

	return nil
}

func runMigration(ctx context.Context, cfg *config.Config, jsonPath, backupDir string, logger *logrus.Logger, dryRun bool) error {
	var service services.CustomerService

	if dryRun {
		logger.Info("Performing dry run - no changes will be made")
	} else {
		container, err := server.NewContainer(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer container.Close()
		service = container.CustomerService
	}

	migrator, err := newMigrator(service, jsonPath, backupDir, logger)
	if err != nil {
		return err
	}

	if hasFiles, _ := migrator.CheckJSONFilesExist(); !hasFiles {
		return fmt.Errorf("no %s found in directory: %s", migration.CustomersFile, jsonPath)
	}

	result, err := migrator.MigrateFromJSON(ctx, dryRun)
	if err != nil {
		return err
	}

	fmt.Printf("\n=== Migration Results ===\n")
	fmt.Printf("Customers processed: %d\n", result.CustomersProcessed)
	fmt.Printf("Customers skipped: %d\n", result.CustomersSkipped)

	if len(result.Warnings) > 0 {
		fmt.Printf("\nWarnings (%d):\n", len(result.Warnings))
		for _, warning := range result.Warnings {
			fmt.Printf("  - %s\n", warning)
		}
	}

	if len(result.Errors) > 0 {
		fmt.Printf("\nErrors (%d):\n", len(result.Errors))
		for _, errMsg := range result.Errors {
			fmt.Printf("  - %s\n", errMsg)
		}
		return fmt.Errorf("migration completed with %d errors", len(result.Errors))
	}

	if dryRun {
		return nil
	}

	return migrator.ValidateMigration(ctx)
}

func validateMigration(ctx context.Context, cfg *config.Config, jsonPath, backupDir string, logger *logrus.Logger) error {
	container, err := server.NewContainer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer container.Close()

	migrator, err := newMigrator(container.CustomerService, jsonPath, backupDir, logger)
	if err != nil {
		return err
	}
	if err := migrator.ValidateMigration(ctx); err != nil {
		return err
	}

	fmt.Println("Migration validation passed successfully")
	return nil
}
