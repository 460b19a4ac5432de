// Command artconnect-service is the HTTP server for the ArtConnect CRM.
//
// It loads configuration, applies migrations, wires Postgres, Redis, the
// completion client, object storage and the traffic stream, starts the
// background workers and serves the API until SIGINT or SIGTERM.
//
// Optional dependencies degrade instead of failing startup:
//   - no Redis: dashboard snapshots are not cached
//   - no GROQ_API_KEY: reports use the deterministic fallback
//   - no S3 credentials: export routes answer EXPORT_FAILED
//   - stream unavailable: the service runs without traffic ingestion
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/VXerys/artconnect-crm-sub001/internal/aggregation"
	"github.com/VXerys/artconnect-crm-sub001/internal/api"
	"github.com/VXerys/artconnect-crm-sub001/internal/cache"
	"github.com/VXerys/artconnect-crm-sub001/internal/config"
	"github.com/VXerys/artconnect-crm-sub001/internal/dashboard"
	"github.com/VXerys/artconnect-crm-sub001/internal/exports"
	"github.com/VXerys/artconnect-crm-sub001/internal/groq"
	"github.com/VXerys/artconnect-crm-sub001/internal/ingestion"
	"github.com/VXerys/artconnect-crm-sub001/internal/observability"
	"github.com/VXerys/artconnect-crm-sub001/internal/reports"
	"github.com/VXerys/artconnect-crm-sub001/internal/storage/postgres"
	"github.com/VXerys/artconnect-crm-sub001/migrations"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad()

	obs := observability.MustInit(ctx, observability.Config{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
		Endpoint:    cfg.TelemetryEndpoint,
		Protocol:    cfg.TelemetryProtocol,
		Headers:     map[string]string{},
		Insecure:    cfg.TelemetryInsecure,
		LogLevel:    cfg.LogLevel,
	})
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := obs.Shutdown(shutdownCtx); err != nil {
			obs.Logger.Error("failed to shutdown observability", zap.Error(err))
		}
	}()
	logger := obs.Logger

	store, err := postgres.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer store.Close()

	if cfg.RunMigrations {
		db := store.SQLDB()
		if err := migrations.Up(ctx, db); err != nil {
			logger.Fatal("failed to apply migrations", zap.Error(err))
		}
		_ = db.Close()
		logger.Info("database migrations applied")
	}

	checks := map[string]api.Check{
		"postgres": store.Ping,
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		redisClient, err = cache.Connect(pingCtx, cfg.RedisURL)
		cancel()
		if err != nil {
			logger.Warn("redis unavailable - dashboard snapshots will not be cached", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
			checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
		}
	}
	snapshots := cache.New(cache.Config{
		Client: redisClient,
		Logger: logger,
		TTL:    cfg.DashboardCacheTTL,
	})
	dash := dashboard.NewService(store, snapshots, logger)

	var completer reports.Completer
	if cfg.AIConfigured() {
		completer = groq.NewClient(groq.Config{
			APIKey:      cfg.GroqAPIKey,
			BaseURL:     cfg.GroqBaseURL,
			Model:       cfg.GroqModel,
			Temperature: cfg.GroqTemperature,
			MaxTokens:   cfg.GroqMaxTokens,
			Timeout:     cfg.GroqTimeout,
			Logger:      logger,
		})
		logger.Info("AI completion client configured", zap.String("model", cfg.GroqModel))
	} else {
		logger.Warn("GROQ_API_KEY not set - reports will use the fallback generator")
	}
	generator := reports.NewGenerator(store, store, completer, logger)

	serverCfg := api.Config{
		Logger:     logger,
		EnableRBAC: cfg.EnableRBAC,
		Store:      store,
		Dashboard:  dash,
		Generator:  generator,
		Checks:     checks,
	}

	var exportRunner *exports.JobRunner
	if cfg.ObjectStorageConfigured() {
		delivery, err := exports.NewS3Delivery(ctx, exports.S3Config{
			Endpoint:     cfg.S3Endpoint,
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
			Bucket:       cfg.S3Bucket,
			Region:       cfg.S3Region,
			SignedURLTTL: cfg.ExportSignedURLTTL,
			Logger:       logger,
		})
		if err != nil {
			logger.Fatal("failed to initialize object storage", zap.Error(err))
		}
		jobs := exports.NewJobRepository(store.Pool())
		serverCfg.Exports = jobs
		serverCfg.Signer = delivery

		exportRunner = exports.NewJobRunner(exports.RunnerConfig{
			Jobs:     jobs,
			Reports:  store,
			Uploader: delivery,
			Logger:   logger,
			Interval: cfg.ExportWorkerInterval,
			Workers:  cfg.ExportWorkerConcurrency,
		})
		go func() {
			if err := exportRunner.Start(ctx); err != nil {
				logger.Error("export job runner failed", zap.Error(err))
			}
		}()
		defer exportRunner.Stop()
	} else {
		logger.Warn("object storage not configured - export jobs are disabled")
	}

	rollupWorker := aggregation.NewWorker(aggregation.Config{
		Store:    store,
		Logger:   logger,
		Interval: cfg.RollupInterval,
	})
	go func() {
		if err := rollupWorker.Start(ctx); err != nil {
			logger.Error("rollup worker failed", zap.Error(err))
		}
	}()
	defer rollupWorker.Stop()

	if cfg.EnableIngestion {
		defer startIngestion(ctx, cfg, store, logger)()
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      api.NewServer(serverCfg),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting artconnect service",
			zap.String("service", cfg.ServiceName),
			zap.String("environment", cfg.Environment),
			zap.Int("port", cfg.HTTPPort),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", zap.Error(err))
			if err := srv.Close(); err != nil {
				logger.Error("force close failed", zap.Error(err))
			}
		}
		logger.Info("shutdown complete")
	}
}

// startIngestion starts the traffic consumer in the background and returns
// the function that stops it. A consumer that cannot be created or connected
// leaves the service in query-only mode.
func startIngestion(ctx context.Context, cfg *config.Config, store *postgres.Store, logger *zap.Logger) func() {
	consumer, err := ingestion.NewConsumer(ingestion.Config{
		StreamURL:    cfg.RabbitMQURL,
		Stream:       cfg.RabbitMQStream,
		Consumer:     cfg.RabbitMQConsumer,
		BatchSize:    cfg.IngestionBatchSize,
		Workers:      cfg.IngestionWorkers,
		BatchTimeout: cfg.IngestionBatchTimeout,
		Store:        store,
		Logger:       logger,
	})
	if err != nil {
		logger.Warn("failed to create ingestion consumer - running without traffic ingestion", zap.Error(err))
		return func() {}
	}

	go func() {
		if err := consumer.Start(ctx); err != nil {
			logger.Error("ingestion consumer failed - running without traffic ingestion", zap.Error(err))
		}
	}()

	return func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := consumer.Stop(stopCtx); err != nil {
			logger.Error("failed to stop ingestion consumer", zap.Error(err))
		}
	}
}
