package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/yao-todolist/todo-api/internal/api/handler"
	"github.com/yao-todolist/todo-api/internal/api/middleware"
	"github.com/yao-todolist/todo-api/internal/core/ports"
)

// Dependencies is everything NewRouter needs to wire the HTTP surface.
type Dependencies struct {
	AuthService ports.AuthService
	TaskService ports.TaskService
	Logger      zerolog.Logger

	AllowedOrigins []string

	// StaticDir holds the built front-end. Empty disables static serving.
	StaticDir string

	// JWTSecret, when set, requires a bearer token on the task routes.
	JWTSecret string

	HealthChecks map[string]handler.Pinger

	EnableMetrics bool
	EnableSwagger bool
}

// paths never handed to the static file server.
var apiPrefixes = []string{"/api", "/health", "/metrics", "/swagger"}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(deps.Logger))
	e.Use(middleware.CORS(deps.AllowedOrigins))
	if deps.EnableMetrics {
		e.Use(echoprometheus.NewMiddleware("todo"))
		e.GET("/metrics", echoprometheus.NewHandler())
	}
	if deps.StaticDir != "" {
		e.Use(echomiddleware.StaticWithConfig(echomiddleware.StaticConfig{
			Root:       ".",
			Filesystem: http.Dir(deps.StaticDir),
			Index:      "index.html",
			HTML5:      true,
			Skipper:    skipStatic,
		}))
	}

	// --- API routes ---
	authHandler := handler.NewAuthHandler(deps.AuthService, deps.Logger)
	taskHandler := handler.NewTaskHandler(deps.TaskService, deps.Logger)

	var taskMiddleware []echo.MiddlewareFunc
	if deps.JWTSecret != "" {
		taskMiddleware = append(taskMiddleware, middleware.Auth(deps.JWTSecret))
	}

	api := e.Group("/api")
	api.POST("/register", authHandler.Register)
	api.POST("/login", authHandler.Login)
	api.POST("/create", taskHandler.Create, taskMiddleware...)
	api.POST("/tasks", taskHandler.List, taskMiddleware...)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.HealthChecks)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	if deps.EnableSwagger {
		e.GET("/swagger/*", echoSwagger.WrapHandler)
	}

	return e
}

func skipStatic(c echo.Context) bool {
	method := c.Request().Method
	if method != http.MethodGet && method != http.MethodHead {
		return true
	}
	path := c.Request().URL.Path
	for _, p := range apiPrefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}
