package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/craftline-erp/craftline/internal/app"
	"github.com/craftline-erp/craftline/internal/assembly"
	"github.com/craftline-erp/craftline/internal/audit"
	"github.com/craftline-erp/craftline/internal/dispatch"
	"github.com/craftline-erp/craftline/internal/observability"
	"github.com/craftline-erp/craftline/internal/platform/cache"
	"github.com/craftline-erp/craftline/internal/platform/db"
	"github.com/craftline-erp/craftline/internal/production"
	"github.com/craftline-erp/craftline/internal/purchase"
	"github.com/craftline-erp/craftline/internal/sales"
	"github.com/craftline-erp/craftline/internal/shared"
	"github.com/craftline-erp/craftline/internal/showroom"
	"github.com/craftline-erp/craftline/internal/store"
	"github.com/craftline-erp/craftline/internal/taxlookup"
	"github.com/craftline-erp/craftline/internal/tracker"
	"github.com/craftline-erp/craftline/internal/transport"
	"github.com/craftline-erp/craftline/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	_ = godotenv.Load()

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

	auditLogger := shared.NewAuditLogger(pool)
	approvalRecorder := shared.NewApprovalRecorder(pool, logger)
	idempotencyStore := shared.NewIdempotencyStore(pool)

	taskClient := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := taskClient.Close(); err != nil {
			logger.Warn("task client close", slog.Any("error", err))
		}
	}()

	storeService := store.NewService(store.NewRepository(pool), auditLogger)
	showroomService := showroom.NewService(showroom.NewRepository(pool), auditLogger)

	productionService := production.NewService(production.NewRepository(pool), auditLogger)
	purchaseService := purchase.NewService(purchase.NewRepository(pool), storeService, productionService, approvalRecorder, auditLogger, idempotencyStore)
	assemblyService := assembly.NewService(assembly.NewRepository(pool), showroomService, productionService, auditLogger)
	productionService.BindWorkflow(purchaseService, assemblyService)

	var taxClient sales.TaxPort = taxlookup.Disabled{}
	if cfg.TaxRegistryURL != "" {
		taxClient = taxlookup.NewClient(cfg.TaxRegistryURL, cfg.TaxRegistryTimeout)
	}

	transportService := transport.NewService(transport.NewRepository(pool), auditLogger)
	dispatchService := dispatch.NewService(dispatch.NewRepository(pool), auditLogger)
	salesService := sales.NewService(sales.NewRepository(pool), showroomService, transportService, taxClient, dispatchService, taskClient, approvalRecorder, auditLogger)
	transportService.BindSales(salesService)

	trackerService := tracker.NewService(logger, productionService, salesService, redisClient, cfg.TrackerCacheTTL)
	auditService := audit.NewService(audit.NewRepository(pool))

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		ProductionHandler: production.NewHandler(logger, productionService),
		PurchaseHandler:   purchase.NewHandler(logger, purchaseService),
		StoreHandler:      store.NewHandler(logger, storeService),
		AssemblyHandler:   assembly.NewHandler(logger, assemblyService),
		ShowroomHandler:   showroom.NewHandler(logger, showroomService),
		SalesHandler:      sales.NewHandler(logger, salesService),
		TransportHandler:  transport.NewHandler(logger, transportService),
		DispatchHandler:   dispatch.NewHandler(logger, dispatchService),
		TrackerHandler:    tracker.NewHandler(logger, trackerService),
		AuditHandler:      audit.NewHandler(logger, auditService),
		JobHandler:        jobs.NewHandler(inspector, logger),
		Metrics:           metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}
