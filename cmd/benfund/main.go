package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/benfund/benfund/internal/app"
	"github.com/benfund/benfund/internal/members"
	"github.com/benfund/benfund/internal/observability"
	"github.com/benfund/benfund/internal/payments"
	"github.com/benfund/benfund/internal/payouts"
	"github.com/benfund/benfund/internal/platform/cache"
	"github.com/benfund/benfund/internal/platform/db"
	"github.com/benfund/benfund/internal/reports"
	reportshttp "github.com/benfund/benfund/internal/reports/http"
	"github.com/benfund/benfund/internal/settings"
	"github.com/benfund/benfund/internal/shared"
	"github.com/benfund/benfund/internal/transfers"
	"github.com/benfund/benfund/internal/units"
	"github.com/benfund/benfund/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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
		logger.Warn("redis unavailable, reports served uncached", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	auditLogger := shared.NewAuditLogger(pool)
	reportCache := reports.NewCache(redisClient, cfg.ReportCacheTTL)

	unitsService := units.NewService(units.NewRepository(pool), reportCache, logger)
	unitsHandler := units.NewHandler(logger, unitsService)

	membersService := members.NewService(members.NewRepository(pool), reportCache, logger)
	membersHandler := members.NewHandler(logger, membersService)

	transfersService := transfers.NewService(transfers.NewRepository(pool), auditLogger, reportCache, logger)
	transfersHandler := transfers.NewHandler(logger, transfersService)

	paymentsService := payments.NewService(payments.NewRepository(pool), auditLogger, reportCache, logger)
	paymentsHandler := payments.NewHandler(logger, paymentsService)

	settingsService := settings.NewService(settings.NewRepository(pool), reportCache, logger)
	settingsHandler := settings.NewHandler(logger, settingsService)

	payoutsService := payouts.NewService(payouts.NewRepository(pool), auditLogger, logger)
	payoutsHandler := payouts.NewHandler(logger, payoutsService)

	reportLoader := reports.NewLoader(reports.NewSnapshotRepository(pool), settingsService)
	reportService := reports.NewService(reportLoader, reportCache, metrics, logger)
	reportsHandler := reportshttp.NewHandler(logger, reportService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		UnitsHandler:    unitsHandler,
		MembersHandler:  membersHandler,
		TransferHandler: transfersHandler,
		PaymentHandler:  paymentsHandler,
		SettingsHandler: settingsHandler,
		PayoutHandler:   payoutsHandler,
		ReportsHandler:  reportsHandler,
		JobHandler:      jobHandler,
		Metrics:         metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
