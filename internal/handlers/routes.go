package handlers

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "customer-api/docs"
	"customer-api/internal/config"
	"customer-api/internal/middleware"
	"customer-api/internal/models"
	"customer-api/internal/services"
)

// RouterConfig holds configuration for setting up routes
type RouterConfig struct {
	CustomerService services.CustomerService
	HealthChecker   HealthChecker
	Service         config.ServiceConfig
	HTTP            config.HTTPConfig
	Logger          *logrus.Logger
}

var registerValidatorsOnce sync.Once

// registerValidators makes gin's binding engine validate payloads like the service does
func registerValidators() {
	registerValidatorsOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			models.RegisterValidations(v)
		}
	})
}

// NewRouter builds the gin engine with middleware and every route
func NewRouter(cfg *RouterConfig) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	registerValidators()

	router := gin.New()
	router.HandleMethodNotAllowed = true

	SetupMiddleware(router, cfg)
	SetupRoutes(router, cfg)

	return router
}

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, cfg *RouterConfig) {
	customerHandler := NewCustomerHandler(cfg.CustomerService, cfg.Logger)
	indexHandler := NewIndexHandler(cfg.Service, cfg.HealthChecker, cfg.Logger)

	router.GET("/", indexHandler.Index)
	router.GET("/health", indexHandler.Health)

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Browser form
	router.StaticFS("/static", staticFS())

	customers := router.Group("/customers")
	customers.Use(middleware.ContentTypeValidation("application/json"))
	{
		customers.POST("", customerHandler.CreateCustomer)
		customers.GET("", customerHandler.ListCustomers)
		customers.GET("/:id", customerHandler.GetCustomer)
		customers.PUT("/:id", customerHandler.UpdateCustomer)
		customers.DELETE("/:id", customerHandler.DeleteCustomer)
		customers.POST("/:id/action", customerHandler.CustomerAction)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "Not found",
			Message: fmt.Sprintf("The requested URL %s was not found on the server", c.Request.URL.Path),
		})
	})

	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, ErrorResponse{
			Error:   "Method not allowed",
			Message: fmt.Sprintf("Method %s is not allowed for %s", c.Request.Method, c.Request.URL.Path),
		})
	})
}

// SetupMiddleware configures global middleware
func SetupMiddleware(router *gin.Engine, cfg *RouterConfig) {
	router.Use(middleware.Recovery(cfg.Logger))
	router.Use(middleware.RequestID())
	router.Use(middleware.StructuredLogger(cfg.Logger))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORS())

	if cfg.HTTP.MaxBodyBytes > 0 {
		router.Use(middleware.RequestSizeLimit(cfg.HTTP.MaxBodyBytes))
	}

	if cfg.HTTP.RateLimitRPS > 0 {
		router.Use(middleware.RateLimiter(cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst, cfg.Logger))
	}

	router.Use(middleware.AuditLogger(cfg.Logger))
}
