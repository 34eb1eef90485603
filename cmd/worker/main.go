package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/finoracle/backoffice/internal/app"
	jobmetrics "github.com/finoracle/backoffice/internal/jobs"
	"github.com/finoracle/backoffice/internal/platform/cache"
	"github.com/finoracle/backoffice/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	redisOpts := cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}
	redisClient, err := cache.New(ctx, redisOpts)
	if err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	gw := app.NewGateway(cfg, logger, nil)
	loader := app.NewRefdataLoader(cfg, redisClient, gw, logger, nil)
	warmupJob := jobs.NewRefdataWarmupJob(loader, logger, jobmetrics.NewMetrics(prometheus.DefaultRegisterer))

	warmupTask, err := jobs.NewRefdataWarmupTask("cron")
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: redisOpts.Asynq(),
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskRefdataWarmup, Handler: warmupJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.WarmupCron, Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	// Prime the cache once at startup instead of waiting for the first tick.
	client := jobs.NewClient(redisOpts.Asynq())
	if _, err := client.EnqueueRefdataWarmup(ctx, "startup"); err != nil {
		logger.Warn("enqueue startup warmup", slog.Any("error", err))
	}
	if err := client.Close(); err != nil {
		logger.Warn("jobs client close", slog.Any("error", err))
	}

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
