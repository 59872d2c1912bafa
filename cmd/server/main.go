package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pitwall/strategy-api/internal/config"
	"github.com/pitwall/strategy-api/internal/handlers"
	"github.com/pitwall/strategy-api/internal/logic"
	"github.com/pitwall/strategy-api/internal/ml"
	"github.com/pitwall/strategy-api/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	var logger *zap.Logger
	if cfg.Env == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ClickHouse
	chOpts, err := clickhouse.ParseDSN(cfg.ClickHouseURL)
	if err != nil {
		sugar.Fatalw("invalid ClickHouse URL", "error", err)
	}
	chConn, err := clickhouse.Open(chOpts)
	if err != nil {
		sugar.Fatalw("failed to connect to ClickHouse", "error", err)
	}
	defer chConn.Close()

	// PostgreSQL
	pgPool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		sugar.Fatalw("failed to connect to PostgreSQL", "error", err)
	}
	defer pgPool.Close()

	// Redis
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		sugar.Fatalw("invalid Redis URL", "error", err)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	// Model registry with persisted artifacts
	registry := ml.NewRegistry(cfg.ModelsDir, sugar)
	registry.LoadAll()

	// Ingest worker pool
	pool := worker.NewPool(worker.PoolConfig{
		WorkerCount:   cfg.WorkerCount,
		QueueSize:     cfg.QueueSize,
		BatchSize:     cfg.BatchSize,
		FlushInterval: cfg.FlushInterval,
		ClickHouse:    chConn,
		Logger:        logger,
	})
	pool.Start(ctx)

	// Services
	telemetry := logic.NewTelemetryService(chConn, pgPool, sugar)
	training := logic.NewTrainingService(registry, telemetry, pgPool, cfg, sugar)
	prediction := logic.NewPredictionService(registry, redisClient, cfg.PredictionCacheTTL, sugar)

	handler := handlers.New(handlers.Config{
		WorkerPool: pool,
		Postgres:   pgPool,
		ClickHouse: chConn,
		Redis:      redisClient,
		Logger:     logger,
		Registry:   registry,
		Training:   training,
		Prediction: prediction,
		Telemetry:  telemetry,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler.Routes(cfg.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		sugar.Infow("server listening", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalw("server failed", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	sugar.Info("shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		sugar.Errorw("server shutdown failed", "error", err)
	}
	pool.Stop()
	sugar.Info("shutdown complete")
}
