package api

import (
	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/employee-portal/employee-api/docs"
	"github.com/employee-portal/employee-api/internal/api/handler"
	"github.com/employee-portal/employee-api/internal/api/middleware"
	"github.com/employee-portal/employee-api/internal/core/domain"
	"github.com/employee-portal/employee-api/internal/core/ports"
)

// Deps carries everything the router needs. Optional fields may be left zero.
type Deps struct {
	Log       zerolog.Logger
	Auth      ports.AuthService
	Employees ports.EmployeeService
	Tokens    ports.TokenService

	// RateLimiter throttles /api requests per client IP; nil disables it.
	RateLimiter echomiddleware.RateLimiterStore
	// HealthChecks are run by the readiness probe, keyed by dependency name.
	HealthChecks map[string]handler.DependencyCheck
	// Metrics receives the HTTP metrics and backs /metrics. Defaults to the
	// global Prometheus registry.
	Metrics *prometheus.Registry

	StaticDir   string
	CORSOrigins []string
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)
	e.Validator = handler.NewValidator()

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if d.Metrics != nil {
		registerer, gatherer = d.Metrics, d.Metrics
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echomiddleware.Secure())
	if len(d.CORSOrigins) > 0 {
		e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
			AllowOrigins: d.CORSOrigins,
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		}))
	}
	e.Use(echomiddleware.BodyLimit("1M"))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "employee_api",
		Registerer: registerer,
	}))

	// --- Health probes, metrics and docs (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.HealthChecks)

	e.GET("/health", healthHandler.Liveness)            // liveness
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- API ---
	api := e.Group("/api")
	if d.RateLimiter != nil {
		api.Use(middleware.RateLimit(d.RateLimiter))
	}

	authHandler := handler.NewAuthHandler(d.Auth)
	api.POST("/register", authHandler.Register)
	api.POST("/login", authHandler.Login)

	employeeHandler := handler.NewEmployeeHandler(d.Employees)
	employees := api.Group("/employees", middleware.Auth(d.Tokens))
	employees.GET("", employeeHandler.List)
	employees.POST("", employeeHandler.Create, middleware.RBAC(domain.RoleAdmin))
	employees.GET("/:id", employeeHandler.Get)
	employees.PUT("/:id", employeeHandler.Update)
	employees.DELETE("/:id", employeeHandler.Delete)

	// --- Front-end ---
	if d.StaticDir != "" {
		e.Static("/", d.StaticDir)
	}

	return e
}
