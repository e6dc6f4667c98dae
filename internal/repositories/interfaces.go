package repositories

import (
	"context"

	"customer-api/internal/models"
)

// BaseRepository defines common CRUD operations for all repositories
type BaseRepository[T any] interface {
	// Create persists a new entity and sets its store-assigned ID
	Create(ctx context.Context, entity *T) error

	// GetByID retrieves an entity by its ID
	GetByID(ctx context.Context, id int64) (*T, error)

	// Update replaces the mutable fields of an existing entity
	Update(ctx context.Context, entity *T) error

	// Delete deletes an entity by its ID; a missing entity is not an error
	Delete(ctx context.Context, id int64) error

	// List retrieves entities matching every condition of the filter
	List(ctx context.Context, filter Filter) ([]*T, error)
}

// CustomerRepository defines operations specific to customer management
type CustomerRepository interface {
	BaseRepository[models.Customer]

	// SetBlocked suspends or reactivates a customer
	SetBlocked(ctx context.Context, id int64, blocked bool) (*models.Customer, error)
}
