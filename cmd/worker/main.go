package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/societyhub/societyhub/internal/app"
	"github.com/societyhub/societyhub/internal/authz"
	"github.com/societyhub/societyhub/internal/billing"
	"github.com/societyhub/societyhub/internal/helpdesk"
	"github.com/societyhub/societyhub/internal/platform/db"
	"github.com/societyhub/societyhub/internal/shared"
	"github.com/societyhub/societyhub/internal/visitors"
	"github.com/societyhub/societyhub/jobs"
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

	if err := authz.ValidateRegistry(); err != nil {
		logger.Error("role registry invalid", slog.Any("error", err))
		os.Exit(1)
	}

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	auditLogger := shared.NewAuditLogger(pool)

	sweeper := &jobs.Sweeper{
		Billing:  billing.NewService(billing.NewRepository(pool), auditLogger, logger),
		Helpdesk: helpdesk.NewService(helpdesk.NewRepository(pool), logger),
		Visitors: visitors.NewService(visitors.NewRepository(pool), logger),
		Logger:   logger,
	}

	cron, err := sweeper.DefaultCron()
	if err != nil {
		logger.Error("build cron schedule", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers:  sweeper.Handlers(),
		Cron:      cron,
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
