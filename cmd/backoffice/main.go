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
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/errgroup"

	"github.com/einstein4784/combined2026-sub002/internal/app"
	"github.com/einstein4784/combined2026-sub002/internal/audit"
	"github.com/einstein4784/combined2026-sub002/internal/auth"
	"github.com/einstein4784/combined2026-sub002/internal/chat"
	"github.com/einstein4784/combined2026-sub002/internal/customers"
	"github.com/einstein4784/combined2026-sub002/internal/deletion"
	"github.com/einstein4784/combined2026-sub002/internal/finperiods"
	"github.com/einstein4784/combined2026-sub002/internal/observability"
	"github.com/einstein4784/combined2026-sub002/internal/payments"
	"github.com/einstein4784/combined2026-sub002/internal/platform/cache"
	"github.com/einstein4784/combined2026-sub002/internal/platform/db"
	"github.com/einstein4784/combined2026-sub002/internal/policies"
	"github.com/einstein4784/combined2026-sub002/internal/rbac"
	"github.com/einstein4784/combined2026-sub002/internal/shared"
	"github.com/einstein4784/combined2026-sub002/jobs"
)

// observedNotifier forwards decisions to the queue and counts outcomes.
type observedNotifier struct {
	next    deletion.Notifier
	metrics *observability.Metrics
}

func (n observedNotifier) DecisionRecorded(ctx context.Context, req deletion.DeleteRequest) {
	n.metrics.ObserveDecision(string(req.Status))
	if n.next != nil {
		n.next.DecisionRecorded(ctx, req)
	}
}

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

	pool, err := db.New(ctx, cfg.PGDSN)
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

	sessionManager := shared.NewSessionManager(redisClient, "backoffice_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	registry := rbac.NewRegistry(rbac.NewPermissionStore(pool), rbac.DefaultCapabilities(), logger)
	if err := registry.Seed(ctx); err != nil {
		logger.Error("seed role permissions", slog.Any("error", err))
		os.Exit(1)
	}
	guard := rbac.NewGuard(registry)
	rbacMiddleware := rbac.Middleware{Guard: guard, Logger: logger}

	auditLogger := shared.NewAuditLogger(pool, logger)

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager)

	customerRepo := customers.NewRepository(pool)
	policyRepo := policies.NewRepository(pool)
	paymentRepo := payments.NewRepository(pool)
	chatRepo := chat.NewRepository(pool)
	periodRepo := finperiods.NewRepository(pool)

	executor := deletion.NewExecutor(logger)
	executor.Register(customers.EntityType, customers.Cascade{})
	executor.Register(policies.EntityType, policies.Cascade{})
	executor.Register(payments.EntityType, payments.Cascade{})
	executor.Register(payments.ReceiptEntityType, payments.ReceiptCascade{})
	executor.Register(chat.EntityType, chat.Cascade{})
	executor.Register(finperiods.EntityType, finperiods.Cascade{})
	executor.RegisterProtected("RolePermission", deletion.TierConfiguration)
	executor.RegisterProtected("User", deletion.TierSystem)
	executor.RegisterProtected("Session", deletion.TierSystem)
	executor.RegisterProtected("AuditLog", deletion.TierSystem)
	executor.RegisterProtected("DeleteRequest", deletion.TierSystem)

	purgeLock := shared.NewLock(redisClient, shared.PurgeLockKey, cfg.PurgeLockTTL)
	runTx := func(ctx context.Context, fn func(pgx.Tx) error) error {
		return db.WithTx(ctx, pool, fn)
	}
	deletionService := deletion.NewService(deletion.NewRequestStore(pool), executor, auditLogger, runTx, purgeLock, logger)
	deletionService.RegisterLabelResolver(customers.EntityType, func(ctx context.Context, id string) (string, error) {
		c, err := customerRepo.FindByID(ctx, id)
		if err != nil {
			return "", err
		}
		return c.FullName, nil
	})
	deletionService.RegisterLabelResolver(policies.EntityType, func(ctx context.Context, id string) (string, error) {
		p, err := policyRepo.FindByID(ctx, id)
		if err != nil {
			return "", err
		}
		return p.PolicyNumber + " " + p.Product, nil
	})
	deletionService.RegisterLabelResolver(payments.EntityType, func(ctx context.Context, id string) (string, error) {
		p, err := paymentRepo.FindByID(ctx, id)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s %.2f", p.Method, p.Amount), nil
	})
	deletionService.RegisterLabelResolver(payments.ReceiptEntityType, func(ctx context.Context, id string) (string, error) {
		rec, err := paymentRepo.FindReceiptByID(ctx, id)
		if err != nil {
			return "", err
		}
		return rec.Number, nil
	})
	deletionService.RegisterLabelResolver(chat.EntityType, func(ctx context.Context, id string) (string, error) {
		t, err := chatRepo.FindThreadByID(ctx, id)
		if err != nil {
			return "", err
		}
		return t.Subject, nil
	})
	deletionService.RegisterLabelResolver(finperiods.EntityType, func(ctx context.Context, id string) (string, error) {
		p, err := periodRepo.FindByID(ctx, id)
		if err != nil {
			return "", err
		}
		return p.Code, nil
	})

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := asynqClient.Close(); err != nil {
			logger.Warn("asynq close", slog.Any("error", err))
		}
	}()
	metrics := observability.NewMetrics()
	notifier := observedNotifier{
		next:    jobs.NewDecisionNotifier(asynqClient, logger),
		metrics: metrics,
	}

	deletionHandler := deletion.NewHandler(logger, deletionService, guard, notifier)
	auditHandler := audit.NewHandler(logger, audit.NewService(audit.NewRepository(pool)), guard)
	permissionsHandler := rbac.NewPermissionsHandler(logger, registry, guard, auditLogger)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		SessionManager:     sessionManager,
		CSRFManager:        csrfManager,
		AuthHandler:        authHandler,
		DeletionHandler:    deletionHandler,
		AuditHandler:       auditHandler,
		PermissionsHandler: permissionsHandler,
		RBAC:               rbacMiddleware,
		Metrics:            metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
