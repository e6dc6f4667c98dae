package services

import (
	"context"

	"customer-api/internal/models"
	"customer-api/internal/repositories"
)

// CustomerService defines the interface for customer business logic operations
type CustomerService interface {
	CreateCustomer(ctx context.Context, req *CustomerRequest) (*models.Customer, error)
	GetCustomer(ctx context.Context, id int64) (*models.Customer, error)
	UpdateCustomer(ctx context.Context, id int64, req *CustomerRequest) (*models.Customer, error)
	DeleteCustomer(ctx context.Context, id int64) error
	ListCustomers(ctx context.Context, filters repositories.CustomerFilter) ([]*models.Customer, error)

	// PerformAction suspends or reactivates a customer
	PerformAction(ctx context.Context, id int64, req *CustomerActionRequest) (*CustomerActionResult, error)
}

// Request/Response types

// CustomerRequest is the body of create and full-replace update calls.
// Blocked defaults to false when omitted.
type CustomerRequest struct {
	Name        string `json:"name" validate:"required,notblank,max=63" example:"Eve"`
	Address     string `json:"address" validate:"required,notblank,max=256" example:"1 Main St"`
	Email       string `json:"email" validate:"required,email,max=50" example:"eve@example.com"`
	PhoneNumber string `json:"phonenumber" validate:"required,notblank,max=25" example:"555-0101"`
	Blocked     bool   `json:"blocked" example:"false"`
}

// ToModel copies the request onto a customer with the given id
func (r *CustomerRequest) ToModel(id int64) *models.Customer {
	return &models.Customer{
		ID:          id,
		Name:        r.Name,
		Address:     r.Address,
		Email:       r.Email,
		PhoneNumber: r.PhoneNumber,
		Blocked:     r.Blocked,
	}
}

// CustomerActionRequest is the body of POST /customers/:id/action
type CustomerActionRequest struct {
	Action string `json:"action" validate:"required" example:"suspend"`
}

// CustomerActionResult is the customer after an action, with the applied action
type CustomerActionResult struct {
	*models.Customer
	Action string `json:"action" example:"suspended"`
}
