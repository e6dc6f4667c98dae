package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"customer-api/internal/config"
)

// HealthChecker reports whether the backing store is reachable
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// IndexResponse describes the service at the root URL
type IndexResponse struct {
	Name    string `json:"name" example:"Customer REST API Service"`
	Version string `json:"version" example:"1.0"`
	Paths   string `json:"paths" example:"http://localhost:8080/customers"`
}

// HealthResponse is the body of the health endpoint
type HealthResponse struct {
	Status  string `json:"status" example:"OK"`
	Message string `json:"message" example:"Healthy"`
}

// IndexHandler serves the root and health endpoints
type IndexHandler struct {
	service config.ServiceConfig
	health  HealthChecker
	logger  *logrus.Logger
}

// NewIndexHandler creates a new index handler
func NewIndexHandler(service config.ServiceConfig, health HealthChecker, logger *logrus.Logger) *IndexHandler {
	return &IndexHandler{
		service: service,
		health:  health,
		logger:  logger,
	}
}

// @Summary Service metadata
// @Description Name, version and the absolute URL of the customer list
// @Tags service
// @Produce json
// @Success 200 {object} IndexResponse
// @Router / [get]
func (h *IndexHandler) Index(c *gin.Context) {
	h.logger.Info("Request for Root URL")

	c.JSON(http.StatusOK, IndexResponse{
		Name:    h.service.Name,
		Version: h.service.Version,
		Paths:   absoluteURL(c, "/customers"),
	})
}

// @Summary Health check
// @Description Reports OK when the database answers
// @Tags service
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (h *IndexHandler) Health(c *gin.Context) {
	if h.health != nil {
		if err := h.health.HealthCheck(c.Request.Context()); err != nil {
			h.logger.WithError(err).Warn("Health check failed")
			c.JSON(http.StatusServiceUnavailable, HealthResponse{
				Status:  "UNAVAILABLE",
				Message: err.Error(),
			})
			return
		}
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:  "OK",
		Message: "Healthy",
	})
}
