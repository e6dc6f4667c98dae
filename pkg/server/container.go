package server

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"customer-api/internal/config"
	"customer-api/internal/database"
	"customer-api/internal/handlers"
	"customer-api/internal/repositories"
	"customer-api/internal/repositories/sqlstore"
	"customer-api/internal/services"
)

// Container holds all application dependencies
type Container struct {
	Config          *config.Config
	Logger          *logrus.Logger
	DB              *database.ConnectionManager
	CustomerRepo    repositories.CustomerRepository
	CustomerService services.CustomerService

	router *gin.Engine
}

// NewContainer connects to the configured database, runs migrations when
// enabled and wires the repository and service on top of the pool
func NewContainer(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if logger == nil {
		logger = logrus.New()
	}

	db := database.NewConnectionManager(cfg.Database, logger)
	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	customerRepo := sqlstore.NewCustomerRepository(db.GetDB(), logger)

	container := &Container{
		Config:          cfg,
		Logger:          logger,
		DB:              db,
		CustomerRepo:    customerRepo,
		CustomerService: services.NewCustomerService(customerRepo, logger),
	}

	return container, nil
}

// Router returns the HTTP handler for the container, building it on first use
func (c *Container) Router() *gin.Engine {
	if c.router == nil {
		c.router = handlers.NewRouter(&handlers.RouterConfig{
			CustomerService: c.CustomerService,
			HealthChecker:   c.DB,
			Service:         c.Config.Service,
			HTTP:            c.Config.HTTP,
			Logger:          c.Logger,
		})
	}
	return c.router
}

// Close cleans up all resources
func (c *Container) Close() error {
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}

	return nil
}
