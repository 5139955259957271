// Package container provides dependency injection using Uber FX
package container

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
	"go.uber.org/zap"

	appmodification "github.com/healthymeal/v2/internal/application/modification"
	"github.com/healthymeal/v2/internal/infrastructure/ai/openrouter"
	"github.com/healthymeal/v2/internal/infrastructure/config"
	"github.com/healthymeal/v2/internal/infrastructure/http/server"
	"github.com/healthymeal/v2/internal/infrastructure/monitoring"
	"github.com/healthymeal/v2/internal/infrastructure/persistence/migrations"
	"github.com/healthymeal/v2/internal/infrastructure/persistence/postgres"
	"github.com/healthymeal/v2/internal/ports/inbound"
	"github.com/healthymeal/v2/internal/ports/outbound"
	"github.com/healthymeal/v2/pkg/healthcheck"
	"github.com/healthymeal/v2/pkg/logger"
)

// Module provides all dependency injection modules
var Module = fx.Options(
	ConfigModule,
	LoggerModule,
	MonitoringModule,
	DatabaseModule,
	RepositoryModule,
	ServiceModule,
	HealthModule,
	HTTPModule,
	LifecycleModule,
)

// ConfigModule provides configuration
var ConfigModule = fx.Provide(
	func() (*config.Config, error) {
		return config.Load("")
	},
)

// LoggerModule provides logging
var LoggerModule = fx.Provide(
	func(cfg *config.Config) (*zap.Logger, error) {
		return logger.New(logger.Config{
			Level:       cfg.App.LogLevel,
			Format:      cfg.App.LogFormat,
			Development: cfg.App.Debug,
		})
	},
)

// MonitoringModule provides metrics and tracing
var MonitoringModule = fx.Provide(
	monitoring.NewMetricsCollector,
	func(cfg *config.Config, log *zap.Logger) (*monitoring.TracingProvider, error) {
		return monitoring.NewTracingProvider(context.Background(), monitoring.TracingConfig{
			ServiceName:    cfg.App.Name,
			ServiceVersion: cfg.App.Version,
			Environment:    cfg.App.Environment,
			OTLPEndpoint:   cfg.Monitoring.OTLPEndpoint,
			SamplingRate:   cfg.Monitoring.TraceSamplingRate,
			Enabled:        cfg.Monitoring.EnableTracing,
		}, log)
	},
)

// DatabaseModule provides the connection pool and runs migrations
var DatabaseModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) (*pgxpool.Pool, error) {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if cfg.Database.AutoMigrate {
			migrator, err := migrations.New(cfg.Database.DSN(), log)
			if err != nil {
				return nil, err
			}
			if err := migrator.Up(); err != nil {
				migrator.Close()
				return nil, err
			}
			if err := migrator.Close(); err != nil {
				log.Warn("Failed to close migrator", zap.Error(err))
			}
		}

		return postgres.NewPool(ctx, cfg.Database, log)
	},
)

// RepositoryModule provides repository implementations
var RepositoryModule = fx.Provide(
	postgres.NewRecipeRepository,
	postgres.NewProfileRepository,
	postgres.NewAuditLogRepository,
)

// ServiceModule provides the model client and application services
var ServiceModule = fx.Provide(
	fx.Annotate(
		func(cfg *config.Config, log *zap.Logger) (*openrouter.Client, error) {
			return openrouter.NewClient(cfg.AI.OpenRouterKey, log,
				openrouter.WithBaseURL(cfg.AI.BaseURL),
				openrouter.WithTimeout(cfg.AI.RequestTimeout),
			)
		},
		fx.As(new(outbound.ModelService)),
	),

	fx.Annotate(
		func(
			recipes outbound.RecipeRepository,
			profiles outbound.ProfileRepository,
			model outbound.ModelService,
			auditLog outbound.AuditLogStore,
			metrics *monitoring.MetricsCollector,
			cfg *config.Config,
			log *zap.Logger,
		) *appmodification.Service {
			return appmodification.NewService(recipes, profiles, model, auditLog, metrics,
				appmodification.Config{
					Model:        cfg.AI.Model,
					Temperature:  cfg.AI.Temperature,
					MaxTokens:    cfg.AI.MaxTokens,
					AuditTimeout: cfg.AI.AuditTimeout,
				}, log)
		},
		fx.As(new(inbound.ModificationService)),
	),
)

// HealthModule provides health checks for the service dependencies
var HealthModule = fx.Provide(
	func(cfg *config.Config, pool *pgxpool.Pool, log *zap.Logger) *healthcheck.HealthCheck {
		health := healthcheck.New(cfg.App.Version, log)
		health.Register("database", healthcheck.NewDatabaseChecker(pool))

		breaker := healthcheck.NewCircuitBreaker("model-service", healthcheck.DefaultCircuitBreakerConfig())
		health.Register("model-service", healthcheck.NewModelServiceChecker(
			"model-service",
			cfg.AI.BaseURL+"/models",
			cfg.AI.OpenRouterKey,
			5*time.Second,
			breaker,
		))

		return health
	},
)

// HTTPModule provides the HTTP server
var HTTPModule = fx.Provide(
	server.NewServer,
)

// LifecycleModule provides lifecycle hooks
var LifecycleModule = fx.Invoke(
	RegisterLifecycleHooks,
)

// RegisterLifecycleHooks registers application lifecycle hooks
func RegisterLifecycleHooks(
	lc fx.Lifecycle,
	cfg *config.Config,
	log *zap.Logger,
	pool *pgxpool.Pool,
	tracing *monitoring.TracingProvider,
	srv *server.Server,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting application",
				zap.String("name", cfg.App.Name),
				zap.String("version", cfg.App.Version),
				zap.String("environment", cfg.App.Environment),
			)

			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("Failed to start HTTP server", zap.Error(err))
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down application")

			if err := srv.Shutdown(ctx); err != nil {
				log.Error("Failed to shutdown HTTP server", zap.Error(err))
			}

			if err := tracing.Shutdown(ctx); err != nil {
				log.Error("Failed to shutdown tracing", zap.Error(err))
			}

			pool.Close()
			_ = log.Sync()

			return nil
		},
	})
}
