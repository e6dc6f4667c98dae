package sqlstore

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"customer-api/internal/models"
	"customer-api/internal/repositories"
)

const customerColumns = "id, name, address, email, phonenumber, blocked"

// CustomerRepository implements repositories.CustomerRepository over SQLite or PostgreSQL
type CustomerRepository struct {
	*BaseRepository[models.Customer]
}

// NewCustomerRepository creates a new customer repository
func NewCustomerRepository(db *sqlx.DB, logger *logrus.Logger) repositories.CustomerRepository {
	return &CustomerRepository{
		BaseRepository: NewBaseRepository[models.Customer](db, "customers", "customer", logger),
	}
}

// Create inserts a customer and sets the ID assigned by the database
func (r *CustomerRepository) Create(ctx context.Context, customer *models.Customer) error {
	if err := customer.Validate(); err != nil {
		return repositories.ValidationError("customer", "", err)
	}

	query := `
		INSERT INTO customers (name, address, email, phonenumber, blocked)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id`

	var id int64
	err := r.executeGet(ctx, "create", 0, &id, query,
		customer.Name,
		customer.Address,
		customer.Email,
		customer.PhoneNumber,
		customer.Blocked,
	)
	if err != nil {
		return err
	}

	customer.ID = id
	return nil
}

// GetByID retrieves a customer by ID
func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (*models.Customer, error) {
	if err := r.validateID("get", id); err != nil {
		return nil, repositories.NotFoundError("customer", formatID(id))
	}

	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = ?`

	var customer models.Customer
	if err := r.executeGet(ctx, "get", id, &customer, query, id); err != nil {
		return nil, err
	}

	return &customer, nil
}

// Update replaces every mutable field of the customer in one statement
func (r *CustomerRepository) Update(ctx context.Context, customer *models.Customer) error {
	if err := r.validateID("update", customer.ID); err != nil {
		return repositories.NotFoundError("customer", formatID(customer.ID))
	}
	if err := customer.Validate(); err != nil {
		return repositories.ValidationError("customer", formatID(customer.ID), err)
	}

	query := `
		UPDATE customers
		SET name = ?, address = ?, email = ?, phonenumber = ?, blocked = ?
		WHERE id = ?
		RETURNING ` + customerColumns

	var updated models.Customer
	err := r.executeGet(ctx, "update", customer.ID, &updated, query,
		customer.Name,
		customer.Address,
		customer.Email,
		customer.PhoneNumber,
		customer.Blocked,
		customer.ID,
	)
	if err != nil {
		return err
	}

	*customer = updated
	return nil
}

// SetBlocked changes only the blocked flag
func (r *CustomerRepository) SetBlocked(ctx context.Context, id int64, blocked bool) (*models.Customer, error) {
	if err := r.validateID("set_blocked", id); err != nil {
		return nil, repositories.NotFoundError("customer", formatID(id))
	}

	query := `UPDATE customers SET blocked = ? WHERE id = ? RETURNING ` + customerColumns

	var customer models.Customer
	if err := r.executeGet(ctx, "set_blocked", id, &customer, query, blocked, id); err != nil {
		return nil, err
	}

	return &customer, nil
}

// Delete removes a customer. Deleting a missing customer succeeds.
func (r *CustomerRepository) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return nil
	}

	query := `DELETE FROM customers WHERE id = ?`

	result, err := r.executeExec(ctx, "delete", id, query, id)
	if err != nil {
		return err
	}

	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		r.logger.WithField("customer_id", id).Debug("Delete matched no customer")
	}

	return nil
}

// List returns customers matching every filter condition, oldest first
func (r *CustomerRepository) List(ctx context.Context, filter repositories.Filter) ([]*models.Customer, error) {
	where, args := r.buildWhereClause(filter)
	query := `SELECT ` + customerColumns + ` FROM customers` + where + ` ORDER BY id ASC`

	customers := make([]*models.Customer, 0)
	if err := r.executeSelect(ctx, "list", &customers, query, args...); err != nil {
		return nil, err
	}

	return customers, nil
}
