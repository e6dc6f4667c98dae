package lambda

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"customer-api/internal/config"
	"customer-api/internal/logging"
	"customer-api/pkg/server"
)

// staleAfter is how long a warm container may sit idle before it is reported unhealthy
const staleAfter = 5 * time.Minute

// ConnectionManager keeps one container per Lambda execution environment so
// warm invocations reuse the database pool
type ConnectionManager struct {
	container *server.Container
	adapter   *Adapter
	lastUsed  time.Time
	mu        sync.RWMutex
	config    *config.Config
	logger    *logrus.Logger
}

var (
	globalConnectionManager *ConnectionManager
	connectionManagerOnce   sync.Once
)

// GetConnectionManager returns the global connection manager instance
func GetConnectionManager() *ConnectionManager {
	connectionManagerOnce.Do(func() {
		globalConnectionManager = &ConnectionManager{}
	})
	return globalConnectionManager
}

// NewConnectionManager creates a manager for cfg. A nil cfg is loaded from
// the environment on first use.
func NewConnectionManager(cfg *config.Config, logger *logrus.Logger) *ConnectionManager {
	return &ConnectionManager{config: cfg, logger: logger}
}

// GetContainer returns the service container, initializing it if necessary.
// A failed initialization is retried on the next call.
func (cm *ConnectionManager) GetContainer(ctx context.Context) (*server.Container, error) {
	container, _, err := cm.load(ctx)
	return container, err
}

// Adapter returns the API Gateway adapter for the managed container
func (cm *ConnectionManager) Adapter(ctx context.Context) (*Adapter, error) {
	_, adapter, err := cm.load(ctx)
	return adapter, err
}

// load returns the container and its adapter as one pair, building both when
// a previous Cleanup or failed start left none
func (cm *ConnectionManager) load(ctx context.Context) (*server.Container, *Adapter, error) {
	cm.mu.RLock()
	container, adapter := cm.container, cm.adapter
	cm.mu.RUnlock()
	if container != nil {
		cm.UpdateLastUsed()
		return container, adapter, nil
	}

	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.container != nil {
		cm.lastUsed = time.Now()
		return cm.container, cm.adapter, nil
	}

	if cm.config == nil {
		cfg, err := config.GetOptimizedConfig()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		cm.config = cfg
	}
	if cm.logger == nil {
		cm.logger = logging.New(cm.config.Log)
	}

	container, err := server.NewContainer(ctx, cm.config, cm.logger)
	if err != nil {
		return nil, nil, err
	}

	cm.container = container
	cm.adapter = NewAdapter(container.Router())
	cm.lastUsed = time.Now()
	return cm.container, cm.adapter, nil
}

// IsHealthy reports whether a container exists and was used recently
func (cm *ConnectionManager) IsHealthy() bool {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	if cm.container == nil {
		return false
	}

	return time.Since(cm.lastUsed) < staleAfter
}

// Cleanup closes the container and its database pool
func (cm *ConnectionManager) Cleanup() error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.container != nil {
		if err := cm.container.Close(); err != nil {
			return err
		}
		cm.container = nil
		cm.adapter = nil
	}

	return nil
}

// UpdateLastUsed updates the last used timestamp
func (cm *ConnectionManager) UpdateLastUsed() {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.lastUsed = time.Now()
}
