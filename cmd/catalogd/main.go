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

	"github.com/catalogd/catalogd/internal/app"
	"github.com/catalogd/catalogd/internal/auth"
	"github.com/catalogd/catalogd/internal/catalog/batch"
	"github.com/catalogd/catalogd/internal/catalog/history"
	"github.com/catalogd/catalogd/internal/catalog/products"
	"github.com/catalogd/catalogd/internal/catalog/stats"
	"github.com/catalogd/catalogd/internal/catalog/suppliers"
	"github.com/catalogd/catalogd/internal/observability"
	"github.com/catalogd/catalogd/internal/platform/cache"
	"github.com/catalogd/catalogd/internal/platform/db"
	"github.com/catalogd/catalogd/internal/rbac"
	"github.com/catalogd/catalogd/jobs"
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

	dbpool, err := db.New(ctx, cfg.DatabaseURL())
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis connect", slog.Any("error", err))
	}
	defer func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	tokenManager := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, tokenManager)

	rbacMiddleware := rbac.Middleware{Logger: logger}

	productRepo := products.NewRepository(dbpool)
	productService := products.NewService(productRepo)
	productHandler := products.NewHandler(logger, productService, rbacMiddleware)

	supplierRepo := suppliers.NewRepository(dbpool)
	supplierService := suppliers.NewService(supplierRepo, productService)
	supplierHandler := suppliers.NewHandler(logger, supplierService, rbacMiddleware)

	batchCoordinator := batch.NewCoordinator(logger, productService)
	supplierBatchCoordinator := batch.NewSupplierCoordinator(logger, supplierService)
	batchHandler := batch.NewHandler(batchCoordinator, supplierBatchCoordinator, rbacMiddleware)

	historyRepo := history.NewRepository(dbpool)
	historyService := history.NewService(historyRepo, productService)
	historyHandler := history.NewHandler(logger, historyService, rbacMiddleware)

	statsRepo := stats.NewRepository(dbpool)
	statsCache := stats.NewCache(redisClient, cfg.CacheTTL)
	statsService := stats.NewService(statsRepo, statsCache, cfg.LowStockThreshold)
	statsHandler := stats.NewHandler(logger, statsService, rbacMiddleware)
	if err := statsCache.ListenForInvalidation(ctx, ""); err != nil {
		logger.Warn("cache invalidation listener", slog.Any("error", err))
	}
	productService.BindStatsInvalidator(statsService)
	supplierService.BindStatsInvalidator(statsService)

	metrics := observability.NewMetrics()

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
		TokenManager:    tokenManager,
		AuthHandler:     authHandler,
		ProductHandler:  productHandler,
		BatchHandler:    batchHandler,
		SupplierHandler: supplierHandler,
		HistoryHandler:  historyHandler,
		StatsHandler:    statsHandler,
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
