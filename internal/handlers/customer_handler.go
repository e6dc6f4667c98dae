package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"customer-api/internal/middleware"
	"customer-api/internal/repositories"
	"customer-api/internal/services"
)

// CustomerHandler handles customer-related HTTP requests
type CustomerHandler struct {
	customerService services.CustomerService
	logger          *logrus.Logger
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(customerService services.CustomerService, logger *logrus.Logger) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
		logger:          logger,
	}
}

// @Summary Create a new customer
// @Description Create a customer from a JSON payload. blocked defaults to false.
// @Tags customers
// @Accept json
// @Produce json
// @Param customer body services.CustomerRequest true "Customer data"
// @Success 201 {object} models.Customer
// @Header 201 {string} Location "URL of the created customer"
// @Failure 400 {object} ErrorResponse
// @Failure 415 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /customers [post]
func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	h.logger.Info("Request to create a customer")

	var req services.CustomerRequest
	if !bindJSON(c, h.logger, &req, "customer") {
		return
	}

	customer, err := h.customerService.CreateCustomer(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Set(middleware.ResourceIDKey, customer.ID)
	c.Header("Location", absoluteURL(c, fmt.Sprintf("/customers/%d", customer.ID)))
	h.logger.WithField("customer_id", customer.ID).Info("Customer created")
	c.JSON(http.StatusCreated, customer)
}

// @Summary List customers
// @Description List customers. Every supplied filter must match exactly; no filters returns all customers ordered by id.
// @Tags customers
// @Produce json
// @Param id query int false "Filter by id"
// @Param name query string false "Filter by name"
// @Param address query string false "Filter by address"
// @Param email query string false "Filter by email"
// @Param phonenumber query string false "Filter by phone number"
// @Param blocked query bool false "Filter by blocked flag"
// @Success 200 {array} models.Customer
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /customers [get]
func (h *CustomerHandler) ListCustomers(c *gin.Context) {
	h.logger.Info("Request for customer list")

	filters, err := parseCustomerFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid query parameters",
			Message: err.Error(),
		})
		return
	}

	customers, err := h.customerService.ListCustomers(c.Request.Context(), filters)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.WithField("count", len(customers)).Info("Returning customers")
	c.JSON(http.StatusOK, customers)
}

// @Summary Get a customer
// @Description Get a customer by id
// @Tags customers
// @Produce json
// @Param id path int true "Customer ID"
// @Success 200 {object} models.Customer
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /customers/{id} [get]
func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	id, ok := customerID(c)
	if !ok {
		return
	}
	h.logger.WithField("customer_id", id).Info("Request for customer")

	customer, err := h.customerService.GetCustomer(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, customer)
}

// @Summary Update a customer
// @Description Replace every field of an existing customer. An omitted blocked is stored as false.
// @Tags customers
// @Accept json
// @Produce json
// @Param id path int true "Customer ID"
// @Param customer body services.CustomerRequest true "Customer data"
// @Success 200 {object} models.Customer
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 415 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /customers/{id} [put]
func (h *CustomerHandler) UpdateCustomer(c *gin.Context) {
	id, ok := customerID(c)
	if !ok {
		return
	}
	h.logger.WithField("customer_id", id).Info("Request to update customer")

	var req services.CustomerRequest
	if !bindJSON(c, h.logger, &req, "customer") {
		return
	}

	customer, err := h.customerService.UpdateCustomer(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.WithField("customer_id", id).Info("Customer updated")
	c.JSON(http.StatusOK, customer)
}

// @Summary Delete a customer
// @Description Delete a customer by id. Deleting an unknown id also succeeds.
// @Tags customers
// @Param id path int true "Customer ID"
// @Success 204 "No Content"
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /customers/{id} [delete]
func (h *CustomerHandler) DeleteCustomer(c *gin.Context) {
	id, ok := customerID(c)
	if !ok {
		return
	}
	h.logger.WithField("customer_id", id).Info("Request to delete customer")

	if err := h.customerService.DeleteCustomer(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Perform an action on a customer
// @Description Suspend or activate a customer. The response is the customer with the applied action.
// @Tags customers
// @Accept json
// @Produce json
// @Param id path int true "Customer ID"
// @Param action body services.CustomerActionRequest true "Action (suspend or activate)"
// @Success 200 {object} services.CustomerActionResult
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 415 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /customers/{id}/action [post]
func (h *CustomerHandler) CustomerAction(c *gin.Context) {
	id, ok := customerID(c)
	if !ok {
		return
	}
	h.logger.WithField("customer_id", id).Info("Request to perform an action on customer")

	var req services.CustomerActionRequest
	if !bindJSON(c, h.logger, &req, "customer action") {
		return
	}

	result, err := h.customerService.PerformAction(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"customer_id": id,
		"action":      result.Action,
	}).Info("Customer action applied")
	c.JSON(http.StatusOK, result)
}

// customerID parses the :id path parameter, answering 400 when it is not an integer
func customerID(c *gin.Context) (int64, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid customer ID",
			Message: fmt.Sprintf("Customer id must be an integer, got '%s'", raw),
		})
		return 0, false
	}
	return id, true
}

// parseCustomerFilter reads the exact-match filters from the query string.
// Unknown parameters are ignored.
func parseCustomerFilter(c *gin.Context) (repositories.CustomerFilter, error) {
	var filters repositories.CustomerFilter

	if raw, ok := c.GetQuery("id"); ok {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return filters, fmt.Errorf("id must be an integer, got '%s'", raw)
		}
		filters.ID = &id
	}
	if v, ok := c.GetQuery("name"); ok {
		filters.Name = &v
	}
	if v, ok := c.GetQuery("address"); ok {
		filters.Address = &v
	}
	if v, ok := c.GetQuery("email"); ok {
		filters.Email = &v
	}
	if v, ok := c.GetQuery("phonenumber"); ok {
		filters.PhoneNumber = &v
	}
	if raw, ok := c.GetQuery("blocked"); ok {
		blocked, err := strconv.ParseBool(raw)
		if err != nil {
			return filters, fmt.Errorf("blocked must be true or false, got '%s'", raw)
		}
		filters.Blocked = &blocked
	}

	return filters, nil
}

// absoluteURL builds an external URL for path on the host the client used
func absoluteURL(c *gin.Context, path string) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + c.Request.Host + path
}
