// Package container provides dependency injection using Uber FX
// This implements the Dependency Inversion Principle from SOLID
package container

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/jenz26/Chef-Generator/internal/application/planner"
	"github.com/jenz26/Chef-Generator/internal/infrastructure/cache"
	"github.com/jenz26/Chef-Generator/internal/infrastructure/config"
	"github.com/jenz26/Chef-Generator/internal/infrastructure/dataset"
	"github.com/jenz26/Chef-Generator/internal/infrastructure/http/apiserver"
	"github.com/jenz26/Chef-Generator/internal/infrastructure/monitoring"
	"github.com/jenz26/Chef-Generator/internal/infrastructure/persistence/memory"
	"github.com/jenz26/Chef-Generator/internal/ports/inbound"
	"github.com/jenz26/Chef-Generator/internal/ports/outbound"
	"github.com/jenz26/Chef-Generator/pkg/healthcheck"
	"github.com/jenz26/Chef-Generator/pkg/logger"
)

// ConfigPathEnv names the variable holding an explicit config file path
const ConfigPathEnv = "CHEFPLANNER_CONFIG"

// Module provides all dependency injection modules
var Module = fx.Options(
	// Infrastructure modules
	ConfigModule,
	LoggerModule,
	MonitoringModule,
	DatasetModule,
	CacheModule,

	// Repository modules
	RepositoryModule,

	// Service modules
	ServiceModule,

	// HTTP modules
	HTTPModule,

	// Lifecycle hooks
	LifecycleModule,
)

// ConfigModule provides configuration
var ConfigModule = fx.Provide(
	func() (*config.Config, error) {
		return config.Load(os.Getenv(ConfigPathEnv))
	},
)

// LoggerModule provides logging
var LoggerModule = fx.Provide(
	func(cfg *config.Config) (*zap.Logger, error) {
		return logger.New(logger.Config{
			Level:       cfg.App.LogLevel,
			Format:      cfg.App.LogFormat,
			Development: cfg.App.Debug,
			Service:     cfg.App.Name,
			Version:     cfg.App.Version,
		})
	},
)

// MonitoringModule provides metrics and tracing
var MonitoringModule = fx.Provide(
	monitoring.NewMetricsCollector,
	func(m *monitoring.MetricsCollector) planner.Metrics { return m },
	func(cfg *config.Config, log *zap.Logger) (*monitoring.TracingProvider, error) {
		return monitoring.NewTracingProvider(monitoring.TracingConfig{
			ServiceName:    cfg.App.Name,
			ServiceVersion: cfg.App.Version,
			Environment:    cfg.App.Environment,
			OTLPEndpoint:   cfg.Monitoring.OTLPEndpoint,
			Insecure:       cfg.Monitoring.OTLPInsecure,
			SamplingRate:   cfg.Monitoring.SamplingRate,
			Enabled:        cfg.Monitoring.EnableTracing,
		}, log)
	},
)

// DatasetModule provides the reference data store
var DatasetModule = fx.Provide(
	func(cfg *config.Config) dataset.Options {
		return dataset.Options{
			Dir:            cfg.Data.Dir,
			TemplatesPath:  cfg.Data.TemplatesPath,
			FallbackToDemo: cfg.Data.FallbackToDemo,
		}
	},
	dataset.NewLoader,
	dataset.NewStore,
	func(store *dataset.Store) outbound.ReferenceDataProvider { return store },
)

// CacheModule provides the proposal cache selected by cache.backend.
// The "none" backend yields a nil repository and disables caching.
var CacheModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) (outbound.CacheRepository, error) {
		switch cfg.Cache.Backend {
		case "memory":
			log.Info("Using in-memory proposal cache", zap.Int("size", cfg.Cache.Size))
			return memory.NewCacheRepository(cfg.Cache.Size, cfg.Cache.TTL), nil
		case "redis":
			return cache.NewRedisClient(cfg.Redis, log), nil
		case "none":
			log.Info("Proposal cache disabled")
			return nil, nil
		default:
			return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
		}
	},
)

// RepositoryModule provides repository implementations
var RepositoryModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) *memory.SessionRepository {
		return memory.NewSessionRepository(cfg.Session.TTL, cfg.Session.MaxSessions, log)
	},
	func(repo *memory.SessionRepository) outbound.SessionRepository { return repo },
)

// ServiceModule provides application services
var ServiceModule = fx.Provide(
	func(
		cfg *config.Config,
		sessions outbound.SessionRepository,
		cacheRepo outbound.CacheRepository,
		reference outbound.ReferenceDataProvider,
		metrics planner.Metrics,
		log *zap.Logger,
	) *planner.Service {
		return planner.NewService(sessions, cacheRepo, reference, metrics, planner.Options{
			Tuning:    cfg.Tuning(),
			Analytics: cfg.Analytics(),
			CacheTTL:  cfg.Cache.TTL,
		}, log)
	},
	func(s *planner.Service) inbound.PlannerService { return s },
)

// HTTPModule provides the health registry and the HTTP server
var HTTPModule = fx.Provide(
	NewHealthCheck,
	apiserver.NewServer,
)

// LifecycleModule provides lifecycle hooks
var LifecycleModule = fx.Invoke(
	RegisterLifecycleHooks,
)

// NewHealthCheck registers the dataset check and, when Redis backs the cache,
// an optional Redis check that only degrades the service.
func NewHealthCheck(
	cfg *config.Config,
	log *zap.Logger,
	store *dataset.Store,
	cacheRepo outbound.CacheRepository,
) *healthcheck.HealthCheck {
	health := healthcheck.New(cfg.App.Version, log)
	health.Register("dataset", healthcheck.NewCustomChecker("dataset", func(ctx context.Context) (healthcheck.Status, string, interface{}) {
		if err := store.HealthCheck(ctx); err != nil {
			return healthcheck.StatusUnhealthy, err.Error(), nil
		}
		report := store.Report()
		status := healthcheck.StatusHealthy
		message := ""
		if report.Source == dataset.SourceDemo && cfg.Data.Dir != "" {
			status = healthcheck.StatusDegraded
			message = "serving embedded demo data"
		}
		return status, message, map[string]interface{}{
			"source":      report.Source,
			"fingerprint": report.Fingerprint,
			"ingredients": report.Ingredients,
			"templates":   report.Templates,
			"warnings":    len(report.Warnings),
			"loaded_at":   store.LoadedAt(),
		}
	}))
	if redisClient, ok := cacheRepo.(*cache.RedisClient); ok {
		health.Register("redis", healthcheck.NewOptionalPingChecker(redisClient.HealthCheck))
	}
	return health
}

// RegisterLifecycleHooks registers application lifecycle hooks
func RegisterLifecycleHooks(
	lc fx.Lifecycle,
	cfg *config.Config,
	log *zap.Logger,
	store *dataset.Store,
	sessions *memory.SessionRepository,
	cacheRepo outbound.CacheRepository,
	metrics *monitoring.MetricsCollector,
	tracing *monitoring.TracingProvider,
	server *apiserver.Server,
) {
	var watcher *dataset.Watcher
	jobs, stopJobs := context.WithCancel(context.Background())

	sessions.OnEvict(metrics.SessionsActive)
	metrics.DatasetLoaded(string(store.Report().Source))
	store.OnReload(func(r dataset.Report) {
		metrics.DatasetLoaded(string(r.Source))
	})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			report := store.Report()
			log.Info("Starting Chef Planner",
				zap.String("version", cfg.App.Version),
				zap.String("environment", cfg.App.Environment),
				zap.String("dataset_source", string(report.Source)),
				zap.String("dataset_fingerprint", report.Fingerprint),
				zap.String("cache_backend", cfg.Cache.Backend),
			)

			sessions.StartCleanup(jobs, cfg.Session.CleanupInterval)

			if cfg.Data.Watch {
				opts := dataset.Options{Dir: cfg.Data.Dir, TemplatesPath: cfg.Data.TemplatesPath, FallbackToDemo: cfg.Data.FallbackToDemo}
				w, err := dataset.NewWatcher(store, opts, cfg.Data.WatchDebounce, log)
				if err != nil {
					log.Warn("Dataset hot reload unavailable", zap.Error(err))
				} else {
					watcher = w
					watcher.Start()
				}
			}

			// Start HTTP server
			go func() {
				if err := server.Start(); err != nil {
					log.Fatal("Failed to start HTTP server", zap.Error(err))
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down Chef Planner")

			if err := server.Shutdown(ctx); err != nil {
				log.Error("Failed to shutdown HTTP server", zap.Error(err))
			}
			stopJobs()
			if watcher != nil {
				if err := watcher.Stop(); err != nil {
					log.Warn("Failed to stop dataset watcher", zap.Error(err))
				}
			}
			if closer, ok := cacheRepo.(io.Closer); ok {
				if err := closer.Close(); err != nil {
					log.Warn("Failed to close cache", zap.Error(err))
				}
			}
			if err := tracing.Shutdown(ctx); err != nil {
				log.Warn("Failed to flush traces", zap.Error(err))
			}

			// Flush logs
			_ = log.Sync()

			return nil
		},
	})
}
