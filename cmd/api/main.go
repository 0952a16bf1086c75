// Package main is the entry point of the school records API.
//
// Layers:
//   - Domain: entities, value objects and domain events
//   - Application: commands and queries behind the request pipeline
//   - Infrastructure: PostgreSQL or in-memory storage, Redis, event bus
//   - Interface: JSON over HTTP
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/juju/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"

	"github.com/asidocente/school-records/config"
	"github.com/asidocente/school-records/internal/application"
	"github.com/asidocente/school-records/internal/application/eventhandler"
	"github.com/asidocente/school-records/internal/application/pipeline"
	"github.com/asidocente/school-records/internal/domain/shared"
	"github.com/asidocente/school-records/internal/domain/store"
	"github.com/asidocente/school-records/internal/infrastructure/messaging"
	"github.com/asidocente/school-records/internal/infrastructure/persistence/memory"
	"github.com/asidocente/school-records/internal/infrastructure/persistence/postgres"
	"github.com/asidocente/school-records/internal/infrastructure/persistence/redis"
	"github.com/asidocente/school-records/internal/infrastructure/service"
	"github.com/asidocente/school-records/internal/infrastructure/telemetry"
	httpserver "github.com/asidocente/school-records/internal/interface/http"
	"github.com/asidocente/school-records/internal/interface/http/handlers"
	"github.com/asidocente/school-records/pkg/logger"
	"github.com/asidocente/school-records/pkg/retry"
)

const metricsNamespace = "school_records"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

// storage is the store plus whatever must be closed with it.
type storage struct {
	store.Store
	close func()
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	log.Info("starting school records API",
		"env", cfg.App.Environment,
		"version", cfg.App.Version,
		"passing_percentage", cfg.Grading.PassingPercentage,
	)

	clk := clock.WallClock
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. TRACING
	// ─────────────────────────────────────────────────────────────────────────
	tp, shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: cfg.App.Version,
	})
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. EVENT BUS
	// ─────────────────────────────────────────────────────────────────────────
	busMetrics := messaging.NewEventBusMetrics(metricsNamespace)
	if err := busMetrics.Register(registry); err != nil {
		return err
	}
	eventBus := messaging.NewInMemoryEventBus(messaging.InMemoryEventBusConfig{
		AsyncMode:      cfg.Events.Async,
		WorkerPoolSize: cfg.Events.Workers,
		Logger:         log,
		Clock:          clk,
		Metrics:        busMetrics,
	})
	defer func() { _ = eventBus.Close() }()

	// ─────────────────────────────────────────────────────────────────────────
	// 5. REDIS (optional)
	// ─────────────────────────────────────────────────────────────────────────
	var (
		redisClient  *goredis.Client
		redisCache   *redis.Cache
		studentCache application.StudentCache
		publisher    shared.EventPublisher = eventBus
	)
	if cfg.Redis.Enabled {
		log.Info("connecting to Redis...", "addr", cfg.Redis.Addr)
		redisCfg := redis.DefaultConfig()
		redisCfg.Addr = cfg.Redis.Addr
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB

		redisClient, err = redis.NewClient(ctx, redisCfg)
		if err != nil {
			log.Warn("failed to connect to Redis, caching disabled", logger.Err(err))
		} else {
			defer func() { _ = redisClient.Close() }()
			redisCache = redis.NewCache(redisClient).WithBreaker(redis.NewBreaker(log))
			studentCache = redis.NewStudentCache(redisCache, cfg.Redis.StudentTTL)

			if cfg.Redis.EventChannel != "" {
				mirror, err := messaging.NewRedisPublisher(redisClient, cfg.Redis.EventChannel, log)
				if err != nil {
					return err
				}
				publisher = messaging.Tee{eventBus, mirror}
			}
			log.Info("Redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. STORAGE
	// ─────────────────────────────────────────────────────────────────────────
	st, err := openStorage(ctx, cfg, publisher, log, clk)
	if err != nil {
		return err
	}
	defer st.close()

	// ─────────────────────────────────────────────────────────────────────────
	// 7. EVENT HANDLERS
	// ─────────────────────────────────────────────────────────────────────────
	notifications := eventhandler.New(
		st,
		service.NewLogEmailSender(log, nil),
		service.NewLogNotificationSender(log, nil),
		log,
	)
	if err := notifications.Register(eventBus); err != nil {
		return fmt.Errorf("failed to register event handlers: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 8. APPLICATION
	// ─────────────────────────────────────────────────────────────────────────
	requestMetrics := pipeline.NewMetrics()
	registry.MustRegister(requestMetrics)

	app := application.New(application.Deps{
		Store:          st,
		Clock:          clk,
		Logger:         log,
		StudentCache:   studentCache,
		Metrics:        requestMetrics,
		TracerProvider: tp,
		MaxPageSize:    cfg.Grading.MaxPageSize,
	})

	// ─────────────────────────────────────────────────────────────────────────
	// 9. HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────────
	health := handlers.NewCompositeHealthChecker(cfg.App.Version, clk)
	health.AddCheck("database", handlers.NewDatabaseCheck(st))
	if cfg.Redis.Enabled {
		var pinger handlers.Pinger
		if redisCache != nil {
			pinger = redisCache
		}
		health.AddCheck("cache", handlers.NewCacheCheck(pinger))
	}

	httpConfig := httpserver.DefaultConfig()
	httpConfig.Host = cfg.HTTP.Host
	httpConfig.Port = cfg.HTTP.Port
	httpConfig.ReadTimeout = cfg.HTTP.ReadTimeout
	httpConfig.WriteTimeout = cfg.HTTP.WriteTimeout
	httpConfig.RequestTimeout = cfg.HTTP.RequestTimeout

	httpServer := httpserver.NewServer(httpConfig, httpserver.Dependencies{
		App:           app,
		HealthChecker: health,
		Gatherer:      registry,
		Logger:        log,
		Clock:         clk,
	})

	// ─────────────────────────────────────────────────────────────────────────
	// 10. START
	// ─────────────────────────────────────────────────────────────────────────
	errCh := make(chan error, 1)
	go func() {
		log.Info("starting HTTP server", "address", httpServer.Address())
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 11. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		log.Error("service error", logger.Err(err))
		return err
	case <-ctx.Done():
	}

	log.Info("starting graceful shutdown...", "timeout", cfg.App.ShutdownTimeout.String())
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	var shutdownErr error
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to stop HTTP server gracefully", logger.Err(err))
		shutdownErr = err
	}
	// Drain async event handlers while the store is still open.
	log.Info("closing event bus...")
	if err := eventBus.Close(); err != nil {
		log.Error("failed to close event bus", logger.Err(err))
		shutdownErr = errors.Join(shutdownErr, err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("failed to flush traces", logger.Err(err))
		shutdownErr = errors.Join(shutdownErr, err)
	}

	if shutdownErr != nil {
		log.Warn("shutdown completed with errors")
	} else {
		log.Info("shutdown completed successfully")
	}
	return nil
}

// openStorage connects to PostgreSQL, or falls back to the in-memory store
// when no database URL is configured.
func openStorage(ctx context.Context, cfg *config.Config, publisher shared.EventPublisher, log *slog.Logger, clk clock.Clock) (*storage, error) {
	if cfg.Database.URL == "" {
		log.Warn("DATABASE_URL not set, using in-memory storage")
		return &storage{Store: memory.New(publisher, log), close: func() {}}, nil
	}

	log.Info("connecting to database...")
	dbConfig := postgres.DefaultConfig()
	dbConfig.URL = cfg.Database.URL
	dbConfig.MaxConns = cfg.Database.MaxConns
	dbConfig.MinConns = cfg.Database.MinConns

	conn, err := postgres.NewConnection(ctx, dbConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	closeConn := func() {
		log.Info("closing database connection...")
		conn.Close()
	}

	if cfg.Database.Migrate {
		log.Info("running database migrations...")
		migrator := postgres.NewMigrator(conn)
		if err := migrator.Migrate(ctx); err != nil {
			closeConn()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		if status, err := migrator.Status(ctx); err != nil {
			log.Warn("failed to get migration status", logger.Err(err))
		} else {
			log.Info("migrations completed", "applied", postgres.CountApplied(status), "total", len(status))
		}
	}

	st := postgres.NewStore(conn, publisher, log, clk, retry.WithMaxAttempts(cfg.Database.RetryAttempts))
	return &storage{Store: st, close: closeConn}, nil
}

func setupLogger(cfg *config.Config) *slog.Logger {
	opts := logger.DefaultOptions()
	opts.Level = logger.ParseLevel(cfg.App.LogLevel)
	opts.Format = logger.Format(cfg.App.LogFormat)
	if cfg.IsProduction() {
		opts.Format = logger.FormatJSON
	}

	log := logger.New(opts)
	slog.SetDefault(log)
	return log
}
