package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"JetScheduler/internal/aggregation"
	"JetScheduler/internal/api"
	"JetScheduler/internal/config"
	"JetScheduler/internal/configuration"
	"JetScheduler/internal/datasource"
	"JetScheduler/internal/db"
	"JetScheduler/internal/domain"
	"JetScheduler/internal/email"
	"JetScheduler/internal/metrics"
	"JetScheduler/internal/preview"
	"JetScheduler/internal/recipient"
	"JetScheduler/internal/report"
	"JetScheduler/internal/schedule"
	"JetScheduler/internal/store"
	"JetScheduler/internal/worker"
)

func main() {

	// ------------------------------------------------
	// Logger
	// ------------------------------------------------
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}

	// ------------------------------------------------
	// Config
	// ------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	if cfg.LogFormat == "console" {
		dev, err := zap.NewDevelopment()
		if err != nil {
			logger.Fatal("failed to build console logger", zap.Error(err))
		}
		logger = dev
	}
	defer logger.Sync()

	// ------------------------------------------------
	// Root Context + Shutdown
	// ------------------------------------------------
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))
		cancel()
	}()

	// ------------------------------------------------
	// Store
	// ------------------------------------------------
	kv, err := openStore(ctx, cfg)
	if err != nil {
		logger.Fatal("store connection failed",
			zap.String("driver", cfg.StoreDriver),
			zap.Error(err),
		)
	}
	defer kv.Close()

	logger.Info("store ready", zap.String("driver", cfg.StoreDriver))

	// ------------------------------------------------
	// Rate Limiter (shared by workers + datalake)
	// ------------------------------------------------
	limiter := rate.NewLimiter(rate.Limit(cfg.DatalakeRateLimit), cfg.DatalakeRateLimit)

	// ------------------------------------------------
	// Datalake
	// ------------------------------------------------
	var lake domain.Datalake

	if cfg.DatalakeURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatalakeURL)
		if err != nil {
			logger.Fatal("datalake connection failed", zap.Error(err))
		}
		defer pool.Close()

		lake = datasource.NewPostgres(pool, limiter, cfg.DatalakeRetry(), logger)
		logger.Info("datalake source: postgres")
	} else {
		fx := datasource.DefaultFixture()
		if cfg.FixturePath != "" {
			fx, err = datasource.LoadFixture(cfg.FixturePath)
			if err != nil {
				logger.Fatal("failed to load fixture", zap.Error(err))
			}
		}
		lake = fx
		logger.Info("datalake source: fixture", zap.String("path", cfg.FixturePath))
	}

	// ------------------------------------------------
	// Metrics
	// ------------------------------------------------
	metrics.Init()

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())

	metricsServer := &http.Server{
		Addr:    ":" + cfg.MetricsPort,
		Handler: metricsMux,
	}

	go func() {
		logger.Info("metrics server started", zap.String("port", cfg.MetricsPort))
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("metrics server error", zap.Error(err))
		}
	}()

	// ------------------------------------------------
	// Worker Pool
	// ------------------------------------------------
	workers := worker.New(cfg.WorkerCount, limiter, logger)

	// ------------------------------------------------
	// Services
	// ------------------------------------------------
	recipients := recipient.NewService(kv, lake, logger)
	aggregations := aggregation.NewService(kv, lake, workers, logger)

	configs := configuration.NewService(
		kv,
		recipients,
		report.NewService(kv, lake, logger),
		aggregations,
		schedule.NewService(kv, logger),
		logger,
	)

	// ------------------------------------------------
	// HTTP API Server
	// ------------------------------------------------
	apiHandler := &api.Handler{
		Configs:     configs,
		Preview:     preview.NewPipeline(aggregations, recipients, logger),
		Mail:        &email.Composer{From: cfg.MailFrom, Locale: cfg.DescribeLocale},
		Locale:      cfg.DescribeLocale,
		CORSOrigins: cfg.CORSOrigins,
		Log:         logger,
	}

	apiServer := &http.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           apiHandler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("api server started", zap.String("port", cfg.APIPort))
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("api server error", zap.Error(err))
		}
	}()

	// ------------------------------------------------
	// Wait for shutdown
	// ------------------------------------------------
	<-ctx.Done()

	logger.Info("shutting down services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("api shutdown failed", zap.Error(err))
	}

	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics shutdown failed", zap.Error(err))
	}

	logger.Info("application shutdown complete")
}

func openStore(ctx context.Context, cfg *config.Config) (store.KV, error) {
	switch cfg.StoreDriver {
	case config.StoreRedis:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		rs := store.NewRedis(redis.NewClient(opts), store.DefaultRedisPrefix)
		if err := rs.Ping(ctx); err != nil {
			rs.Close()
			return nil, err
		}
		return rs, nil

	case config.StorePostgres:
		pg, err := db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return pg, nil

	default:
		return store.NewMemory(), nil
	}
}
