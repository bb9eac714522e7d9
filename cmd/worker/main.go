package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/benfund/benfund/internal/app"
	"github.com/benfund/benfund/internal/observability"
	"github.com/benfund/benfund/internal/platform/cache"
	"github.com/benfund/benfund/internal/platform/db"
	"github.com/benfund/benfund/internal/reports"
	"github.com/benfund/benfund/internal/settings"
	"github.com/benfund/benfund/jobs"
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

	pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	reportCache := reports.NewCache(redisClient, cfg.ReportCacheTTL)
	settingsService := settings.NewService(settings.NewRepository(pool), reportCache, logger)
	reportLoader := reports.NewLoader(reports.NewSnapshotRepository(pool), settingsService)
	reportService := reports.NewService(reportLoader, reportCache, metrics, logger)

	warmupJob := jobs.NewReportWarmupJob(reportService, logger, metrics)
	reconJob := jobs.NewMembershipReconJob(reportLoader, logger, metrics)

	warmupTask, err := jobs.NewReportWarmupTask(2)
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}
	reconTask, err := jobs.NewMembershipReconTask("")
	if err != nil {
		logger.Error("build recon task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:      logger,
		Concurrency: cfg.JobConcurrency,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskReportWarmup, Handler: warmupJob.Handle},
			{Type: jobs.TaskMembershipRecon, Handler: reconJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "30 1 * * *", Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "0 2 * * *", Task: reconTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("starting worker", slog.Int("concurrency", cfg.JobConcurrency))
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
