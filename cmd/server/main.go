package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	ordersyncapp "github.com/kiendt120702/BTCShopee-sub000/internal/application/ordersync"
	"github.com/kiendt120702/BTCShopee-sub000/internal/infrastructure/auth"
	"github.com/kiendt120702/BTCShopee-sub000/internal/infrastructure/config"
	"github.com/kiendt120702/BTCShopee-sub000/internal/infrastructure/logger"
	"github.com/kiendt120702/BTCShopee-sub000/internal/infrastructure/persistence"
	"github.com/kiendt120702/BTCShopee-sub000/internal/infrastructure/shopee"
	"github.com/kiendt120702/BTCShopee-sub000/internal/interfaces/http/handler"
	"github.com/kiendt120702/BTCShopee-sub000/internal/interfaces/http/router"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting BTCShopee sync service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database connection with GORM logging routed through zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Repositories
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	escrowRepo := persistence.NewGormEscrowRepository(db.DB)
	stateRepo := persistence.NewGormSyncStateRepository(db.DB)
	credentialRepo := persistence.NewGormCredentialRepository(db.DB)

	// Shopee Open API gateway
	gateway, err := shopee.NewClient(&shopee.Config{
		PartnerID:           cfg.Shopee.PartnerID,
		PartnerKey:          cfg.Shopee.PartnerKey,
		BaseURL:             cfg.Shopee.BaseURL,
		TimeoutSeconds:      cfg.Shopee.TimeoutSeconds,
		DefaultAccessToken:  cfg.Shopee.DefaultAccessToken,
		DefaultRefreshToken: cfg.Shopee.DefaultRefreshToken,
	}, credentialRepo, shopee.NewRequestLimiter(cfg.Shopee.RequestInterval), log)
	if err != nil {
		log.Fatal("Failed to initialize Shopee client", zap.Error(err))
	}

	// Application services
	syncConfig := ordersyncapp.Config{
		ChunkDays:       cfg.Sync.ChunkDays,
		PageSize:        cfg.Sync.PageSize,
		DetailBatchSize: cfg.Sync.DetailBatchSize,
		WriteBatchSize:  cfg.Sync.WriteBatchSize,
		MaxDuration:     cfg.Sync.MaxDuration,
		MaxRecords:      cfg.Sync.MaxRecords,
		QuickSyncDays:   cfg.Sync.QuickSyncDays,
		PeriodicOverlap: cfg.Sync.PeriodicOverlap,
		EscrowBatchSize: cfg.Sync.EscrowBatchSize,
	}
	orderSyncService := ordersyncapp.NewOrderSyncService(orderRepo, stateRepo, gateway, syncConfig, log)
	escrowSyncService := ordersyncapp.NewEscrowSyncService(orderRepo, escrowRepo, stateRepo, gateway, syncConfig, log)

	// Dashboard API auth
	jwtService := auth.NewJWTService(cfg.JWT)

	// HTTP handlers
	syncHandler := handler.NewSyncHandler(orderSyncService, escrowSyncService, log)
	systemHandler := handler.NewSystemHandler(db)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := router.Setup(router.Config{
		Logger:     log,
		JWTService: jwtService,
		System:     systemHandler,
		Registrars: []router.RouteRegistrar{syncHandler},
	})

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
