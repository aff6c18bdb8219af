// Package container provides dependency injection using Uber FX
package container

import (
	"context"
	"fmt"
	"time"

	"github.com/alchemorsel/nutrition/internal/application/nutrition"
	"github.com/alchemorsel/nutrition/internal/domain/dietary"
	"github.com/alchemorsel/nutrition/internal/infrastructure/config"
	"github.com/alchemorsel/nutrition/internal/infrastructure/http/handlers"
	"github.com/alchemorsel/nutrition/internal/infrastructure/http/middleware"
	"github.com/alchemorsel/nutrition/internal/infrastructure/http/server"
	"github.com/alchemorsel/nutrition/internal/infrastructure/monitoring"
	"github.com/alchemorsel/nutrition/internal/infrastructure/persistence/breaker"
	gormRepo "github.com/alchemorsel/nutrition/internal/infrastructure/persistence/gorm"
	"github.com/alchemorsel/nutrition/internal/infrastructure/persistence/memory"
	"github.com/alchemorsel/nutrition/internal/infrastructure/persistence/postgres"
	redisRepo "github.com/alchemorsel/nutrition/internal/infrastructure/persistence/redis"
	"github.com/alchemorsel/nutrition/internal/infrastructure/persistence/sqlite"
	"github.com/alchemorsel/nutrition/internal/infrastructure/security"
	"github.com/alchemorsel/nutrition/internal/ports/inbound"
	"github.com/alchemorsel/nutrition/internal/ports/outbound"
	"github.com/alchemorsel/nutrition/pkg/healthcheck"
	"github.com/alchemorsel/nutrition/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	cachePrefix          = "nutrition:"
	cacheCleanupInterval = 5 * time.Minute
)

// Module provides all dependency injection modules
var Module = fx.Options(
	// Infrastructure modules
	ConfigModule,
	LoggerModule,
	MonitoringModule,
	DatabaseModule,
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

// ConfigPath is the config file handed to the loader; empty searches the defaults
type ConfigPath string

// WithConfigPath supplies the config file location
func WithConfigPath(path string) fx.Option {
	return fx.Supply(ConfigPath(path))
}

// ConfigModule provides configuration
var ConfigModule = fx.Provide(
	func(path ConfigPath) *config.Loader {
		return config.NewLoader(string(path))
	},
	func(loader *config.Loader) (*config.Config, error) {
		return loader.Load()
	},
)

// LoggerModule provides logging
var LoggerModule = fx.Provide(
	func(cfg *config.Config) (*zap.Logger, zap.AtomicLevel, error) {
		return logger.NewWithLevel(logger.Config{
			Level:       cfg.App.LogLevel,
			Format:      cfg.App.LogFormat,
			Development: cfg.App.Debug,
		})
	},
)

// MonitoringModule provides metrics and tracing
var MonitoringModule = fx.Provide(
	fx.Annotate(
		monitoring.NewMetricsCollector,
		fx.As(fx.Self()),
		fx.As(new(outbound.MetricsRecorder)),
	),
	func(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*monitoring.TracingProvider, error) {
		tp, err := monitoring.NewTracingProvider(context.Background(), monitoring.TracingConfig{
			ServiceName:    cfg.App.Name,
			ServiceVersion: cfg.App.Version,
			Environment:    cfg.App.Environment,
			OTLPEndpoint:   cfg.Monitoring.OTLPEndpoint,
			Insecure:       cfg.Monitoring.OTLPInsecure,
			SamplingRate:   cfg.Monitoring.SamplingRate,
			Enabled:        cfg.Monitoring.EnableTracing,
		}, log)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.StopHook(tp.Shutdown))
		return tp, nil
	},
)

// DatabaseModule provides the dietary profile store
var DatabaseModule = fx.Provide(
	func(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
		var (
			db  *gorm.DB
			err error
		)

		switch cfg.Database.Driver {
		case "postgres":
			db, err = postgres.Connect(context.Background(), cfg, log)
		default:
			db, err = sqlite.SetupDatabase(cfg.Database.Database, gormRepo.NewLogger(log, cfg.App.LogLevel, 0))
			if err == nil {
				log.Info("Connected to SQLite database",
					zap.String("path", cfg.Database.Database),
					zap.Bool("in_memory", cfg.Database.Database == ":memory:"),
				)
			}
		}
		if err != nil {
			return nil, fmt.Errorf("failed to setup %s database: %w", cfg.Database.Driver, err)
		}

		lc.Append(fx.StopHook(func() error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		}))

		return db, nil
	},
)

// CacheModule provides the analysis cache
var CacheModule = fx.Provide(
	func(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (outbound.CacheRepository, redis.UniversalClient, error) {
		if cfg.Cache.Provider != "redis" {
			log.Info("Using in-memory analysis cache")
			cache := memory.NewCacheRepository(cacheCleanupInterval)
			lc.Append(fx.StopHook(cache.Close))
			return cache, nil, nil
		}

		client, err := redisRepo.NewClient(context.Background(), cfg.Redis, log)
		if err != nil {
			return nil, nil, err
		}
		lc.Append(fx.StopHook(client.Close))
		cache := breaker.NewCacheRepository(
			redisRepo.NewCacheRepository(client, cachePrefix, log),
			breaker.DefaultConfig("redis-cache"),
			log,
		)
		return cache, client, nil
	},
)

// RepositoryModule provides repository implementations
var RepositoryModule = fx.Provide(
	fx.Annotate(
		gormRepo.NewDietaryProfileRepository,
		fx.As(new(outbound.DietaryProfileRepository)),
	),
)

// ServiceModule provides application services
var ServiceModule = fx.Provide(
	dietary.DefaultClassifier,
	fx.Annotate(
		func(
			classifier *dietary.Classifier,
			profiles outbound.DietaryProfileRepository,
			cache outbound.CacheRepository,
			metrics outbound.MetricsRecorder,
			tracing *monitoring.TracingProvider,
			cfg *config.Config,
			log *zap.Logger,
		) *nutrition.NutritionService {
			return nutrition.NewNutritionService(classifier, profiles, cache, metrics, tracing.Tracer(),
				nutrition.Config{AnalysisTTL: cfg.Cache.AnalysisTTL}, log)
		},
		fx.As(new(inbound.NutritionService)),
	),
)

// HTTPModule provides HTTP server and handlers
var HTTPModule = fx.Provide(
	security.NewValidationService,
	middleware.New,
	handlers.NewNutritionHandlers,
	NewHealthCheck,
	server.NewServer,
)

// LifecycleModule provides lifecycle hooks
var LifecycleModule = fx.Invoke(
	WatchConfig,
	RegisterLifecycleHooks,
)

// NewHealthCheck registers a checker for every backing store in use
func NewHealthCheck(cfg *config.Config, log *zap.Logger, db *gorm.DB, client redis.UniversalClient) (*healthcheck.HealthCheck, error) {
	health := healthcheck.New(cfg.App.Version, log)

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	health.Register("database", healthcheck.NewDatabaseChecker(sqlDB))

	if client != nil {
		health.Register("redis", healthcheck.NewRedisChecker(client))
	}

	return health, nil
}

// WatchConfig applies log level changes from the config file without a restart
func WatchConfig(loader *config.Loader, level zap.AtomicLevel, log *zap.Logger) {
	if loader.ConfigFile() == "" {
		return
	}

	loader.Watch(func(cfg *config.Config) {
		next := logger.ParseLevel(cfg.App.LogLevel)
		if next != level.Level() {
			level.SetLevel(next)
			log.Info("Log level changed", zap.String("level", next.String()))
		}
	}, func(err error) {
		log.Warn("Ignoring invalid configuration reload", zap.Error(err))
	})

	log.Info("Watching configuration file", zap.String("file", loader.ConfigFile()))
}

// RegisterLifecycleHooks registers application lifecycle hooks
func RegisterLifecycleHooks(
	lc fx.Lifecycle,
	cfg *config.Config,
	log *zap.Logger,
	metrics *monitoring.MetricsCollector,
	srv *server.Server,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting nutrition service",
				zap.String("version", cfg.App.Version),
				zap.String("environment", cfg.App.Environment),
				zap.String("database", cfg.Database.Driver),
				zap.String("cache", cfg.Cache.Provider),
			)
			return srv.Start(ctx)
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down nutrition service")

			if err := srv.Shutdown(ctx); err != nil {
				log.Error("Failed to shutdown HTTP server", zap.Error(err))
			}

			if err := metrics.Shutdown(ctx); err != nil {
				log.Error("Failed to shutdown metrics provider", zap.Error(err))
			}

			// Flush logs
			_ = log.Sync()

			return nil
		},
	})
}
