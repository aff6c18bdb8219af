// Package server provides the HTTP server for the nutrition API
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/alchemorsel/nutrition/internal/infrastructure/config"
	"github.com/alchemorsel/nutrition/internal/infrastructure/http/handlers"
	"github.com/alchemorsel/nutrition/internal/infrastructure/http/middleware"
	"github.com/alchemorsel/nutrition/internal/infrastructure/monitoring"
	apperrors "github.com/alchemorsel/nutrition/pkg/errors"
	"github.com/alchemorsel/nutrition/pkg/healthcheck"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// Server represents the HTTP server
type Server struct {
	config  *config.Config
	logger  *zap.Logger
	engine  *gin.Engine
	handler http.Handler
	server  *http.Server
}

// NewServer creates a new HTTP server instance
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	mw *middleware.Middleware,
	api *handlers.NutritionHandlers,
	health *healthcheck.HealthCheck,
	metrics *monitoring.MetricsCollector,
) *Server {
	s := &Server{
		config: cfg,
		logger: logger.Named("http-server"),
	}

	s.engine = s.setupRouter(mw, api, health, metrics)

	// Trace every request except probes and scrapes
	traced := otelhttp.NewHandler(s.engine, cfg.App.Name,
		otelhttp.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != cfg.Monitoring.HealthCheckPath && r.URL.Path != cfg.Monitoring.MetricsPath
		}),
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)

	// Cleartext HTTP/2 for in-cluster clients
	s.handler = h2c.NewHandler(traced, &http2.Server{})

	s.server = &http.Server{
		Addr:           cfg.Address(),
		Handler:        s.handler,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	return s
}

func (s *Server) setupRouter(
	mw *middleware.Middleware,
	api *handlers.NutritionHandlers,
	health *healthcheck.HealthCheck,
	metrics *monitoring.MetricsCollector,
) *gin.Engine {
	if s.config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.HandleMethodNotAllowed = true

	engine.Use(
		mw.RequestID(),
		mw.Recovery(),
		mw.Security(),
		mw.Logger(),
		mw.Metrics(),
		mw.BodyLimit(),
	)
	if s.config.Server.Compression {
		engine.Use(mw.Compression())
	}

	engine.GET(s.config.Monitoring.HealthCheckPath, health.Handler())
	if s.config.Monitoring.EnableMetrics {
		engine.GET(s.config.Monitoring.MetricsPath, gin.WrapH(metrics.Handler()))
	}

	v1 := engine.Group("/api/v1", mw.RateLimit())
	api.RegisterRoutes(v1)

	engine.NoRoute(func(c *gin.Context) {
		appErr := apperrors.NewAppError(apperrors.CodeNotFound, "Route not found", c.Request.Method+" "+c.Request.URL.Path)
		c.JSON(http.StatusNotFound, apperrors.ToErrorResponse(appErr, c.GetString(middleware.RequestIDKey)))
	})
	engine.NoMethod(func(c *gin.Context) {
		appErr := apperrors.NewMethodNotAllowedError(c.Request.Method, c.Request.URL.Path)
		c.JSON(appErr.StatusCode(), apperrors.ToErrorResponse(appErr, c.GetString(middleware.RequestIDKey)))
	})

	return engine
}

// Handler returns the fully wrapped HTTP handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Routes lists the registered routes as "METHOD path"
func (s *Server) Routes() []string {
	routes := make([]string, 0)
	for _, r := range s.engine.Routes() {
		routes = append(routes, strings.Join([]string{r.Method, r.Path}, " "))
	}
	return routes
}

// Start binds the listener and serves in the background
func (s *Server) Start(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.server.Addr)
	if err != nil {
		return err
	}

	s.logger.Info("Starting HTTP server",
		zap.String("address", ln.Addr().String()),
		zap.String("environment", s.config.App.Environment),
	)

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server stopped", zap.Error(err))
		}
	}()

	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
