package migration

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"customer-api/internal/adapters/storage"
	"customer-api/internal/models"
	"customer-api/internal/repositories"
	"customer-api/internal/services"
)

// CustomersFile is the file the migrator reads from its JSON directory
const CustomersFile = "customers.json"

// JSONMigrator imports customers from a JSON file through the customer service
type JSONMigrator struct {
	service    services.CustomerService
	logger     *logrus.Logger
	jsonPath   string
	backupPath string
	backups    storage.FileStorage
}

// NewJSONMigrator creates a new JSON migrator. service may be nil when only
// checking or dry-running files.
func NewJSONMigrator(service services.CustomerService, jsonPath string, logger *logrus.Logger) *JSONMigrator {
	return &JSONMigrator{
		service:    service,
		logger:     logger,
		jsonPath:   jsonPath,
		backupPath: filepath.Join(jsonPath, "backup"),
	}
}

// SetBackupStorage replaces the default local backup directory
func (m *JSONMigrator) SetBackupStorage(backups storage.FileStorage) {
	m.backups = backups
}

// JSONCustomer represents the JSON structure for customers
type JSONCustomer struct {
	Name        string `json:"name"`
	Address     string `json:"address"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phonenumber"`
	Blocked     bool   `json:"blocked"`
}

func (c JSONCustomer) request() *services.CustomerRequest {
	return &services.CustomerRequest{
		Name:        c.Name,
		Address:     c.Address,
		Email:       c.Email,
		PhoneNumber: c.PhoneNumber,
		Blocked:     c.Blocked,
	}
}

// MigrationResult contains the results of the migration
type MigrationResult struct {
	CustomersProcessed int
	CustomersSkipped   int
	DryRun             bool
	Errors             []string
	Warnings           []string
}

// CheckJSONFilesExist checks if JSON files exist for migration
func (m *JSONMigrator) CheckJSONFilesExist() (bool, []string) {
	existingFiles := make([]string, 0, 1)

	if _, err := os.Stat(filepath.Join(m.jsonPath, CustomersFile)); err == nil {
		existingFiles = append(existingFiles, CustomersFile)
	}

	return len(existingFiles) > 0, existingFiles
}

// LoadCustomers reads the customers file
func (m *JSONMigrator) LoadCustomers() ([]JSONCustomer, error) {
	data, err := os.ReadFile(filepath.Join(m.jsonPath, CustomersFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read customers file: %w", err)
	}

	var customers []JSONCustomer
	if err := json.Unmarshal(data, &customers); err != nil {
		return nil, fmt.Errorf("failed to unmarshal customers: %w", err)
	}

	return customers, nil
}

// MigrateFromJSON creates every customer in the JSON file. Invalid records
// are reported and skipped; customers already present with the same name
// and email are skipped so the import can be rerun. A dry run only validates.
func (m *JSONMigrator) MigrateFromJSON(ctx context.Context, dryRun bool) (*MigrationResult, error) {
	m.logger.WithField("dry_run", dryRun).Info("Starting JSON customer import...")

	result := &MigrationResult{
		DryRun:   dryRun,
		Errors:   make([]string, 0),
		Warnings: make([]string, 0),
	}

	if !dryRun && m.service == nil {
		return nil, fmt.Errorf("customer service is required to import customers")
	}

	customers, err := m.LoadCustomers()
	if err != nil {
		return nil, err
	}

	if !dryRun {
		if err := m.createJSONBackup(ctx); err != nil {
			m.logger.WithError(err).Warn("Failed to create JSON backup")
			result.Warnings = append(result.Warnings, fmt.Sprintf("Failed to create JSON backup: %v", err))
		}
	}

	for i, jc := range customers {
		record := fmt.Sprintf("customer %d (%s)", i+1, jc.Email)
		req := jc.request()

		if err := models.ValidateStruct(req); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", record, err))
			continue
		}

		if dryRun {
			result.CustomersProcessed++
			continue
		}

		exists, err := m.exists(ctx, jc)
		if err != nil {
			return result, fmt.Errorf("failed to look up %s: %w", record, err)
		}
		if exists {
			result.CustomersSkipped++
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s already exists, skipped", record))
			continue
		}

		created, err := m.service.CreateCustomer(ctx, req)
		if err != nil {
			if repositories.IsValidation(err) {
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", record, err))
				continue
			}
			return result, fmt.Errorf("failed to import %s: %w", record, err)
		}

		m.logger.WithFields(logrus.Fields{
			"customer_id": created.ID,
			"email":       created.Email,
		}).Debug("Customer imported")
		result.CustomersProcessed++
	}

	m.logger.WithFields(logrus.Fields{
		"customers": result.CustomersProcessed,
		"skipped":   result.CustomersSkipped,
		"errors":    len(result.Errors),
		"dry_run":   dryRun,
	}).Info("JSON customer import completed")

	return result, nil
}

// ValidateMigration checks that every valid customer in the JSON file is present
func (m *JSONMigrator) ValidateMigration(ctx context.Context) error {
	if m.service == nil {
		return fmt.Errorf("customer service is required to validate the import")
	}

	m.logger.Info("Validating migration results...")

	customers, err := m.LoadCustomers()
	if err != nil {
		return err
	}

	missing := 0
	for _, jc := range customers {
		if models.ValidateStruct(jc.request()) != nil {
			continue
		}

		exists, err := m.exists(ctx, jc)
		if err != nil {
			return err
		}
		if !exists {
			missing++
			m.logger.WithField("email", jc.Email).Warn("Customer missing after import")
		}
	}

	if missing > 0 {
		return fmt.Errorf("%d customers from %s are missing", missing, CustomersFile)
	}

	m.logger.WithField("customers", len(customers)).Info("Migration validation completed")
	return nil
}

func (m *JSONMigrator) exists(ctx context.Context, jc JSONCustomer) (bool, error) {
	name, email := jc.Name, jc.Email
	found, err := m.service.ListCustomers(ctx, repositories.CustomerFilter{
		Name:  &name,
		Email: &email,
	})
	if err != nil {
		return false, err
	}
	return len(found) > 0, nil
}

// backupStorage opens the local backup directory on first use
func (m *JSONMigrator) backupStorage() (storage.FileStorage, error) {
	if m.backups == nil {
		local, err := storage.NewLocalFileStorage(m.backupPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create backup directory: %w", err)
		}
		m.backups = local
	}
	return m.backups, nil
}

// createJSONBackup creates a backup of the JSON file before migration
func (m *JSONMigrator) createJSONBackup(ctx context.Context) error {
	backups, err := m.backupStorage()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(filepath.Join(m.jsonPath, CustomersFile))
	if err != nil {
		return err
	}

	key := fmt.Sprintf("%s_%s", time.Now().Format("20060102_150405"), CustomersFile)
	if err := backups.Store(ctx, key, data, &storage.StoreOptions{Overwrite: true}); err != nil {
		return fmt.Errorf("failed to backup %s: %w", CustomersFile, err)
	}

	m.logger.WithField("backup_file", key).Info("JSON file backed up")
	return nil
}

// ListBackups returns the backups taken by earlier imports, oldest first
func (m *JSONMigrator) ListBackups(ctx context.Context) ([]storage.FileMetadata, error) {
	if m.backups == nil {
		if _, err := os.Stat(m.backupPath); os.IsNotExist(err) {
			return []storage.FileMetadata{}, nil
		}
	}

	backups, err := m.backupStorage()
	if err != nil {
		return nil, err
	}
	return backups.List(ctx, "")
}
