package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/einstein4784/combined2026-sub002/internal/app"
	"github.com/einstein4784/combined2026-sub002/internal/auth"
	"github.com/einstein4784/combined2026-sub002/internal/platform/db"
	"github.com/einstein4784/combined2026-sub002/jobs"
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

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	client := asynq.NewClient(redisOpts)
	defer func() {
		if err := client.Close(); err != nil {
			logger.Warn("asynq close", slog.Any("error", err))
		}
	}()

	users := auth.NewRepository(pool)
	mailer := &jobs.Mailer{
		Addr:   fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		From:   cfg.SMTPFrom,
		Logger: logger,
	}
	decided := &jobs.DecidedHandler{
		Lookup: func(ctx context.Context, userID int64) (string, error) {
			u, err := users.FindByID(ctx, userID)
			if err != nil {
				return "", err
			}
			return u.Email, nil
		},
		Enqueue: func(ctx context.Context, task *asynq.Task) error {
			_, err := client.EnqueueContext(ctx, task, asynq.Queue(jobs.QueueDefault))
			return err
		},
		Logger: logger,
	}

	worker := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: redisOpts,
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeSendEmail, Handler: mailer.HandleSendEmailTask},
			{Type: jobs.TaskTypeDeletionDecided, Handler: decided.HandleDeletionDecidedTask},
		},
	})

	go func() {
		<-ctx.Done()
		logger.Info("shutting down worker")
		worker.Shutdown()
	}()

	logger.Info("worker started", slog.String("redis", cfg.RedisAddr))
	if err := worker.Run(); err != nil {
		logger.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
