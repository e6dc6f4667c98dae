package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"customer-api/internal/models"
	"customer-api/internal/repositories"
)

// customerService implements the CustomerService interface
type customerService struct {
	customerRepo repositories.CustomerRepository
	logger       *logrus.Logger
}

// NewCustomerService creates a new customer service instance
func NewCustomerService(customerRepo repositories.CustomerRepository, logger *logrus.Logger) CustomerService {
	if logger == nil {
		logger = logrus.New()
	}
	return &customerService{
		customerRepo: customerRepo,
		logger:       logger,
	}
}

// CreateCustomer creates a new customer
func (s *customerService) CreateCustomer(ctx context.Context, req *CustomerRequest) (*models.Customer, error) {
	if req == nil {
		return nil, repositories.ValidationError("customer", "", fmt.Errorf("request body is required"))
	}

	if err := models.ValidateStruct(req); err != nil {
		return nil, repositories.ValidationError("customer", "", err)
	}

	customer := req.ToModel(0)
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	s.logger.WithField("customer_id", customer.ID).Debug("Customer created")
	return customer, nil
}

// GetCustomer retrieves a customer by ID
func (s *customerService) GetCustomer(ctx context.Context, id int64) (*models.Customer, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	return customer, nil
}

// UpdateCustomer replaces every mutable field of an existing customer
func (s *customerService) UpdateCustomer(ctx context.Context, id int64, req *CustomerRequest) (*models.Customer, error) {
	if req == nil {
		return nil, repositories.ValidationError("customer", formatID(id), fmt.Errorf("request body is required"))
	}

	if err := models.ValidateStruct(req); err != nil {
		return nil, repositories.ValidationError("customer", formatID(id), err)
	}

	customer := req.ToModel(id)
	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}

	s.logger.WithField("customer_id", id).Debug("Customer updated")
	return customer, nil
}

// DeleteCustomer removes a customer; removing an unknown customer succeeds
func (s *customerService) DeleteCustomer(ctx context.Context, id int64) error {
	if err := s.customerRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}

	s.logger.WithField("customer_id", id).Debug("Customer deleted")
	return nil
}

// ListCustomers lists customers matching every supplied filter exactly
func (s *customerService) ListCustomers(ctx context.Context, filters repositories.CustomerFilter) ([]*models.Customer, error) {
	customers, err := s.customerRepo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"filtered": !filters.IsEmpty(),
		"count":    len(customers),
	}).Debug("Customers listed")
	return customers, nil
}

// PerformAction applies a suspend or activate action to a customer
func (s *customerService) PerformAction(ctx context.Context, id int64, req *CustomerActionRequest) (*CustomerActionResult, error) {
	if req == nil {
		return nil, repositories.ValidationError("customer action", formatID(id), fmt.Errorf("request body is required"))
	}

	action := models.CustomerAction(strings.ToLower(strings.TrimSpace(req.Action)))
	blocked, err := action.Blocked()
	if err != nil {
		// an unknown customer is reported before an unsupported action
		if _, getErr := s.GetCustomer(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, repositories.ValidationError("customer action", formatID(id), err)
	}

	customer, err := s.customerRepo.SetBlocked(ctx, id, blocked)
	if err != nil {
		return nil, fmt.Errorf("failed to %s customer: %w", action, err)
	}

	s.logger.WithFields(logrus.Fields{
		"customer_id": id,
		"action":      action,
	}).Debug("Customer action applied")

	return &CustomerActionResult{
		Customer: customer,
		Action:   action.Result(),
	}, nil
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
