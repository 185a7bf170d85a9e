package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	_ "github.com/taskmaster/dayplanner/docs"
	httpHandlers "github.com/taskmaster/dayplanner/internal/adapters/http"
	"github.com/taskmaster/dayplanner/internal/application/documents"
	"github.com/taskmaster/dayplanner/internal/infrastructure/config"
	"github.com/taskmaster/dayplanner/internal/infrastructure/logger"
	"github.com/taskmaster/dayplanner/internal/infrastructure/metrics"
)

const requestTimeout = 30 * time.Second

// Server represents the HTTP server
type Server struct {
	echo    *echo.Echo
	config  *config.Config
	logger  *logger.Logger
	metrics *metrics.Metrics
}

// CustomValidator wraps the validator
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates structs
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// New creates a new server instance over the document service. m may be nil
// when metrics are disabled.
func New(cfg *config.Config, documentService *documents.Service, m *metrics.Metrics, appLogger *logger.Logger) *Server {
	e := echo.New()

	e.Validator = &CustomValidator{validator: validator.New()}

	e.HideBanner = true
	e.HidePort = true

	e.HTTPErrorHandler = customErrorHandler(appLogger)

	server := &Server{
		echo:    e,
		config:  cfg,
		logger:  appLogger.WithComponent("server"),
		metrics: m,
	}

	server.setupMiddleware()

	if cfg.Metrics.Enabled && m != nil {
		server.setupMetrics()
	}

	server.setupRoutes(
		httpHandlers.NewHealthHandler(documentService, appLogger),
		httpHandlers.NewTaskHandler(documentService, appLogger),
		httpHandlers.NewNoteHandler(documentService, appLogger),
		httpHandlers.NewProjectHandler(documentService, appLogger),
		httpHandlers.NewPreferenceHandler(documentService, appLogger),
	)

	return server
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.Recover())

	s.echo.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))

	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogError:     true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, values middleware.RequestLoggerValues) error {
			log := s.logger.WithRequestID(values.RequestID)
			if values.Error != nil {
				log = log.WithError(values.Error)
			}
			log.LogHTTPRequest(
				values.Method,
				values.URI,
				httpHandlers.DeviceID(c),
				values.RemoteIP,
				values.Status,
				float64(values.Latency.Nanoseconds())/1e6,
			)
			return nil
		},
	}))

	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: splitOrigins(s.config.Security.CORSAllowedOrigins),
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, httpHandlers.DeviceHeader},
		AllowMethods: []string{echo.GET, echo.HEAD, echo.POST, echo.DELETE, echo.OPTIONS},
	}))

	if limit := s.config.Security.RateLimitRequests; limit > 0 {
		window := s.config.Security.RateLimitWindow
		if window <= 0 {
			window = time.Minute
		}
		s.echo.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
			Skipper: func(c echo.Context) bool {
				return !strings.HasPrefix(c.Request().URL.Path, "/api/")
			},
			Store: middleware.NewRateLimiterMemoryStoreWithConfig(
				middleware.RateLimiterMemoryStoreConfig{
					Rate:      rate.Limit(float64(limit) / window.Seconds()),
					Burst:     limit,
					ExpiresIn: 3 * window,
				},
			),
			IdentifierExtractor: func(c echo.Context) (string, error) {
				return httpHandlers.DeviceID(c) + "|" + c.RealIP(), nil
			},
			ErrorHandler: func(c echo.Context, err error) error {
				return c.JSON(http.StatusForbidden, httpHandlers.ErrorResponse{Error: "rate limit exceeded"})
			},
			DenyHandler: func(c echo.Context, identifier string, err error) error {
				return c.JSON(http.StatusTooManyRequests, httpHandlers.ErrorResponse{Error: "rate limit exceeded"})
			},
		}))
	}

	s.echo.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
	}))

	s.echo.Use(middleware.ContextTimeoutWithConfig(middleware.ContextTimeoutConfig{
		Timeout: requestTimeout,
	}))
}

// setupRoutes configures all routes
func (s *Server) setupRoutes(
	healthHandler *httpHandlers.HealthHandler,
	taskHandler *httpHandlers.TaskHandler,
	noteHandler *httpHandlers.NoteHandler,
	projectHandler *httpHandlers.ProjectHandler,
	preferenceHandler *httpHandlers.PreferenceHandler,
) {
	s.echo.GET("/swagger/*", echoSwagger.WrapHandler)

	api := s.echo.Group("/api")

	api.GET("/health", healthHandler.Health)
	api.GET("/ready", healthHandler.Ready)

	tasks := api.Group("/tasks")
	tasks.GET("", taskHandler.ListTasks)
	tasks.POST("", taskHandler.ReplaceTasks)
	tasks.GET("/:date", taskHandler.ListTasksByDate)
	tasks.POST("/:date", taskHandler.SaveTask)
	tasks.DELETE("/:date/:id", taskHandler.DeleteTask)

	notes := api.Group("/notes")
	notes.GET("", noteHandler.ListNotes)
	notes.POST("", noteHandler.SaveNote)
	notes.DELETE("/:id", noteHandler.DeleteNote)

	projects := api.Group("/projects")
	projects.GET("", projectHandler.ListProjects)
	projects.POST("", projectHandler.ReplaceProjects)
	projects.GET("/:id", projectHandler.GetProject)
	projects.POST("/:id", projectHandler.SaveProject)
	projects.DELETE("/:id", projectHandler.DeleteProject)

	api.GET("/preferences", preferenceHandler.GetPreferences)
	api.POST("/preferences", preferenceHandler.SavePreferences)

	if dir := s.config.Server.StaticDir; dir != "" {
		s.echo.Use(middleware.StaticWithConfig(middleware.StaticConfig{
			Root:  dir,
			Index: "index.html",
			HTML5: true,
			Skipper: func(c echo.Context) bool {
				path := c.Request().URL.Path
				return strings.HasPrefix(path, "/api/") || strings.HasPrefix(path, "/swagger/") || path == "/metrics"
			},
		}))
	}
}

// setupMetrics configures Prometheus metrics
func (s *Server) setupMetrics() {
	s.echo.Use(s.metrics.Middleware())
	s.echo.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))
}

// Start starts the HTTP server
func (s *Server) Start(address string) error {
	s.logger.Infow("Starting server", "address", address)

	s.echo.Server.ReadTimeout = s.config.Server.ReadTimeout
	s.echo.Server.WriteTimeout = s.config.Server.WriteTimeout
	s.echo.Server.IdleTimeout = s.config.Server.IdleTimeout

	err := s.echo.Start(address)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Infow("Shutting down server")
	return s.echo.Shutdown(ctx)
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, origin := range strings.Split(raw, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// customErrorHandler renders every error as {"error": "..."}.
func customErrorHandler(log *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		body := httpHandlers.ErrorResponse{Error: http.StatusText(code)}

		var he *echo.HTTPError
		var ve validator.ValidationErrors
		switch {
		case errors.As(err, &he):
			code = he.Code
			body.Error = fmt.Sprint(he.Message)
			if he.Internal != nil {
				err = fmt.Errorf("%v, %v", err, he.Internal)
			}
		case errors.As(err, &ve):
			code = http.StatusBadRequest
			body = httpHandlers.ErrorResponse{Error: "validation failed", Details: ve.Error()}
		}

		if code >= http.StatusInternalServerError {
			log.Errorw("Internal server error", "error", err, "path", c.Request().URL.Path)
		}

		if c.Response().Committed {
			return
		}
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, body)
		}
		if err != nil {
			log.Errorw("Error sending response", "error", err)
		}
	}
}
