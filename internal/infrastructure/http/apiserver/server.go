// Package apiserver provides the JSON API HTTP server of the planner
package apiserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/jenz26/Chef-Generator/internal/infrastructure/config"
	"github.com/jenz26/Chef-Generator/internal/infrastructure/http/handlers"
	"github.com/jenz26/Chef-Generator/internal/infrastructure/http/middleware"
	"github.com/jenz26/Chef-Generator/internal/infrastructure/monitoring"
	"github.com/jenz26/Chef-Generator/internal/ports/inbound"
	"github.com/jenz26/Chef-Generator/pkg/healthcheck"
)

// Server represents the planner API HTTP server
type Server struct {
	config   *config.Config
	logger   *zap.Logger
	server   *http.Server
	router   *chi.Mux
	handler  http.Handler
	service  inbound.PlannerService
	metrics  *monitoring.MetricsCollector
	health   *healthcheck.HealthCheck
	limiter  *middleware.RateLimiter
	openAPI  *OpenAPIHandler
	jobs     context.Context
	stopJobs context.CancelFunc
}

// NewServer creates a new API server instance. metrics may be nil.
func NewServer(
	cfg *config.Config,
	log *zap.Logger,
	service inbound.PlannerService,
	metrics *monitoring.MetricsCollector,
	health *healthcheck.HealthCheck,
) *Server {
	log = log.Named("api-server")
	s := &Server{
		config:  cfg,
		logger:  log,
		service: service,
		metrics: metrics,
		health:  health,
		openAPI: NewOpenAPIHandler(log),
	}
	s.jobs, s.stopJobs = context.WithCancel(context.Background())
	if cfg.RateLimit.Enable {
		s.limiter = middleware.NewRateLimiter(cfg.RateLimit, log)
	}

	s.router = s.setupRoutes()
	s.handler = otelhttp.NewHandler(s.router, "chef-planner-api",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
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

// setupRoutes configures the router
func (s *Server) setupRoutes() *chi.Mux {
	r := chi.NewRouter()
	mon := s.config.Monitoring

	r.Use(chimiddleware.RequestID)
	r.Use(middleware.RequestIDHeader)
	r.Use(chimiddleware.RealIP)
	if s.metrics != nil {
		r.Use(s.metrics.HTTPMiddleware)
	}
	r.Use(middleware.Logger(s.logger, mon.HealthCheckPath, mon.MetricsPath))
	r.Use(middleware.Recoverer(s.logger))
	r.Use(middleware.Security(s.config.IsProduction()))
	r.Use(middleware.CORS(s.config.Server, s.config.IsDevelopment()))

	if s.health != nil {
		r.Get(mon.HealthCheckPath, s.health.Handler())
		r.Get(mon.HealthCheckPath+"/live", s.health.LivenessHandler())
	}
	if s.metrics != nil && mon.EnableMetrics {
		r.Method(http.MethodGet, mon.MetricsPath, s.metrics.Handler())
	}

	h := handlers.NewAPIHandlers(s.service, s.logger)
	r.Route("/api/v1", func(r chi.Router) {
		if s.limiter != nil {
			r.Use(s.limiter.Middleware)
		}
		r.Use(middleware.JSONOnly)
		if t := s.config.Server.WriteTimeout; t > 0 {
			r.Use(chimiddleware.Timeout(t))
		}
		r.Get("/openapi.yaml", s.openAPI.ServeOpenAPISpec)
		r.Get("/openapi.json", s.openAPI.ServeOpenAPIJSON)
		h.Routes(r)
	})

	return r
}

// Handler returns the fully wrapped handler, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Server returns the underlying HTTP server instance
func (s *Server) Server() *http.Server {
	return s.server
}

// Start starts background jobs and serves until Shutdown
func (s *Server) Start() error {
	if s.limiter != nil {
		s.limiter.StartCleanup(s.jobs)
	}

	s.logger.Info("Starting API server",
		zap.String("address", s.server.Addr),
		zap.String("environment", s.config.App.Environment),
	)

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server")
	s.stopJobs()
	return s.server.Shutdown(ctx)
}

// ShutdownTimeout is the grace period configured for Shutdown
func (s *Server) ShutdownTimeout() time.Duration {
	return s.config.Server.ShutdownTimeout
}
