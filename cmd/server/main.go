package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	financeapp "github.com/pharmapos/backend/internal/application/finance"
	inventoryapp "github.com/pharmapos/backend/internal/application/inventory"
	tradeapp "github.com/pharmapos/backend/internal/application/trade"
	"github.com/pharmapos/backend/internal/domain/trade"
	"github.com/pharmapos/backend/internal/infrastructure/auth"
	"github.com/pharmapos/backend/internal/infrastructure/cache"
	"github.com/pharmapos/backend/internal/infrastructure/config"
	"github.com/pharmapos/backend/internal/infrastructure/event"
	"github.com/pharmapos/backend/internal/infrastructure/logger"
	"github.com/pharmapos/backend/internal/infrastructure/persistence"
	"github.com/pharmapos/backend/internal/infrastructure/strategy"
	"github.com/pharmapos/backend/internal/infrastructure/telemetry"
	"github.com/pharmapos/backend/internal/interfaces/http/handler"
	"github.com/pharmapos/backend/internal/interfaces/http/router"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// version is stamped at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := &logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output}
	bootLog, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	providers, err := telemetry.Setup(ctx, cfg.Telemetry, version, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize telemetry", zap.Error(err))
	}

	// rebuilt so every entry is also exported over OTLP when log export is on
	log, err := logger.New(logCfg, providers.LogCore(logger.ParseLevel(cfg.Telemetry.LogsMinLevel)))
	if err != nil {
		bootLog.Fatal("Failed to initialize logger", zap.Error(err))
	}
	defer func() { _ = logger.Sync(log) }()
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	log.Info("Starting pharmapos backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", version),
		zap.String("port", cfg.App.Port),
	)

	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithLogger(
		logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
			logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh),
			logger.WithFullSQL(cfg.Telemetry.DBLogFullSQL),
		),
	))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.InstrumentGorm(db.DB, cfg.Telemetry, log); err != nil {
		log.Fatal("Failed to instrument database", zap.Error(err))
	}
	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate schema", zap.Error(err))
		}
		log.Info("Schema migrated", zap.String("driver", db.Driver))
	}

	counter, closeCounter, err := sequenceCounter(ctx, cfg, db)
	if err != nil {
		log.Fatal("Failed to initialize order number sequence", zap.Error(err))
	}
	defer closeCounter()

	// Repositories
	orderRepo := persistence.NewGormPurchaseOrderRepository(db.DB)
	batchRepo := persistence.NewGormInventoryBatchRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	supplierRepo := persistence.NewGormSupplierRepository(db.DB)
	groupRepo := persistence.NewGormTransactionGroupRepository(db.DB)

	// Metrics
	meter := providers.MeterProvider().Meter(cfg.Telemetry.ServiceName)
	metrics, err := telemetry.NewPurchasingMetrics(telemetry.PurchasingMetricsConfig{
		Meter:         meter,
		Logger:        log,
		StockProvider: telemetry.NewGormStockMetricsProvider(db.DB),
	})
	if err != nil {
		log.Fatal("Failed to create purchasing metrics", zap.Error(err))
	}
	metrics.StartPeriodicCollection(ctx, telemetry.NewGormTenantProvider(db.DB), cfg.Telemetry.MetricsInterval)
	defer metrics.Stop()

	// Events
	bus := event.NewInMemoryEventBus(log)
	bus.Subscribe(tradeapp.NewPurchaseOrderMetricsHandler(metrics, log))
	if err := bus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() { _ = bus.Stop(context.Background()) }()

	// Inventory and costing
	strategies, err := strategy.NewRegistryWithDefaults(cfg.Costing.DefaultMethod)
	if err != nil {
		log.Fatal("Failed to register cost strategies", zap.Error(err))
	}
	costingService := inventoryapp.NewCostingService(batchRepo, strategies, log)
	costingService.SetMetrics(metrics)
	ledgerService := inventoryapp.NewLedgerService(inventoryapp.NewLedger(batchRepo, productRepo, log), costingService, log)
	ledgerService.SetMetrics(metrics)

	// Purchase order lifecycle
	allocator := tradeapp.NewOrderNumberAllocator(counter, cfg.OrderNumber.MaxAttempts, log)
	allocator.RegisterKind(trade.OrderKindPurchase, cfg.OrderNumber.Prefix, orderRepo.ExistsByOrderNumber)
	allocator.SetMetrics(metrics)

	inventoryEffect := tradeapp.NewInventoryEffect(log)
	inventoryEffect.SetMetrics(metrics)

	orderService := tradeapp.NewPurchaseOrderService(
		orderRepo,
		persistence.NewGormPurchaseTransactionScope(db.DB),
		allocator,
		tradeapp.NewPurchaseOrderValidator(productRepo, supplierRepo),
		log,
	)
	orderService.AddEffect(inventoryEffect)
	orderService.AddEffect(tradeapp.NewAccountingEffect(financeapp.NewPurchaseAccountingService(groupRepo, log)))
	orderService.SetPriceUpdater(productRepo)
	orderService.SetEventPublisher(bus)
	orderService.SetMetrics(metrics)

	// HTTP
	defaultTenant, err := uuid.Parse(cfg.Auth.DefaultTenantID)
	if err != nil {
		log.Fatal("Invalid auth.default_tenant_id", zap.Error(err))
	}
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	engine, err := router.NewRouter(router.Config{
		ServiceName:    cfg.Telemetry.ServiceName,
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		TrustedProxies: cfg.HTTP.TrustedProxies,
		Verifier:       auth.NewTokenVerifier(cfg.Auth),
		DefaultTenant:  defaultTenant,
		Logger:         log,
		Registry:       registry,
		Health:         handler.NewHealthHandler(db, version).Check,
	}).Register(
		handler.NewPurchaseOrderHandler(orderService),
		handler.NewInventoryHandler(ledgerService, costingService),
	).Setup()
	if err != nil {
		log.Fatal("Failed to build router", zap.Error(err))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Warn("Telemetry shutdown incomplete", zap.Error(err))
	}
	log.Info("Server exited gracefully")
}

// sequenceCounter returns the per-day order number counter for the
// configured backend and a function releasing its resources.
func sequenceCounter(ctx context.Context, cfg *config.Config, db *persistence.Database) (tradeapp.SequenceCounter, func(), error) {
	if cfg.OrderNumber.SequenceBackend != config.SequenceBackendRedis {
		return persistence.NewGormSequenceCounter(db.DB), func() {}, nil
	}
	client, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	return cache.NewRedisSequenceCounter(client), func() { _ = client.Close() }, nil
}

var _ handler.Pinger = (*persistence.Database)(nil)
