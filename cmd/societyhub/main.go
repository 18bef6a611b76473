package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/societyhub/societyhub/internal/app"
	"github.com/societyhub/societyhub/internal/auth"
	"github.com/societyhub/societyhub/internal/authz"
	"github.com/societyhub/societyhub/internal/billing"
	"github.com/societyhub/societyhub/internal/dashboard"
	"github.com/societyhub/societyhub/internal/helpdesk"
	"github.com/societyhub/societyhub/internal/observability"
	"github.com/societyhub/societyhub/internal/orgs"
	"github.com/societyhub/societyhub/internal/platform/cache"
	"github.com/societyhub/societyhub/internal/platform/db"
	"github.com/societyhub/societyhub/internal/platform/devicetoken"
	"github.com/societyhub/societyhub/internal/shared"
	"github.com/societyhub/societyhub/internal/users"
	"github.com/societyhub/societyhub/internal/vehicles"
	"github.com/societyhub/societyhub/internal/visitors"
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

	// A malformed role registry must never reach serving traffic.
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

	// Sessions live in Redis, so the server cannot run without it.
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

	sessionManager := shared.NewSessionManager(redisClient, "societyhub_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	auditLogger := shared.NewAuditLogger(pool)
	metrics := observability.NewMetrics()

	capCache, err := authz.NewCache(cfg.CapabilityCacheSize)
	if err != nil {
		logger.Error("init capability cache", slog.Any("error", err))
		os.Exit(1)
	}

	usersRepo := users.NewRepository(pool)
	authzMiddleware := authz.Middleware{Source: usersRepo, Cache: capCache, Logger: logger}

	authService := auth.NewService(auth.NewRepository(pool))
	authHandler := auth.NewHandler(logger, authService, sessionManager, capCache)

	usersService := users.NewService(usersRepo, auditLogger, logger)
	usersHandler := users.NewHandler(logger, usersService, authzMiddleware)

	orgsService := orgs.NewService(orgs.NewRepository(pool))
	orgsHandler := orgs.NewHandler(logger, orgsService, authzMiddleware)

	deviceIssuer := devicetoken.NewIssuer(cfg.GateDeviceSecret, cfg.GateDeviceTokenTTL)
	vehiclesService := vehicles.NewService(vehicles.NewRepository(pool), metrics)
	vehiclesHandler := vehicles.NewHandler(logger, vehiclesService, authzMiddleware, deviceIssuer)

	billingService := billing.NewService(billing.NewRepository(pool), auditLogger, logger)
	billingHandler := billing.NewHandler(billingService, authzMiddleware)

	visitorsService := visitors.NewService(visitors.NewRepository(pool), logger)
	visitorsHandler := visitors.NewHandler(visitorsService, authzMiddleware)

	helpdeskService := helpdesk.NewService(helpdesk.NewRepository(pool), logger)
	helpdeskHandler := helpdesk.NewHandler(helpdeskService, authzMiddleware)

	dashboardService := dashboard.NewService(dashboard.NewRepository(pool), redisClient, logger)
	dashboardHandler := dashboard.NewHandler(dashboardService, authzMiddleware)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		SessionManager:   sessionManager,
		CSRFManager:      csrfManager,
		AuthHandler:      authHandler,
		UsersHandler:     usersHandler,
		OrgsHandler:      orgsHandler,
		VehiclesHandler:  vehiclesHandler,
		BillingHandler:   billingHandler,
		VisitorsHandler:  visitorsHandler,
		HelpdeskHandler:  helpdeskHandler,
		DashboardHandler: dashboardHandler,
		Authz:            authzMiddleware,
		Metrics:          metrics,
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
