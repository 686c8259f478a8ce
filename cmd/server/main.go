package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"vendordesk/internal/catalog"
	"vendordesk/internal/config"
	"vendordesk/internal/gateway"
	"vendordesk/internal/infrastructure/logger"
	"vendordesk/internal/infrastructure/metrics"
	"vendordesk/internal/infrastructure/mysql"
	"vendordesk/internal/order"
	"vendordesk/internal/server"
	"vendordesk/internal/vendor"
	vendorrepo "vendordesk/internal/vendorsettings/repository"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "internal/config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	var settings vendor.SettingsStore
	if cfg.Database.Enabled {
		var db *sql.DB
		db, err = mysql.NewConnection(context.Background(), cfg.Database)
		if err != nil {
			zapLogger.Fatal("connecting to database", zap.Error(err))
		}
		defer db.Close()
		zapLogger.Info("database connected")
		settings = vendorrepo.NewMySQLSettingsRepository(db)
	} else {
		zapLogger.Info("database disabled, using default vendor", zap.String("vendorId", cfg.Vendor.DefaultID))
	}

	reg := metrics.NewRegistry()
	client := gateway.NewClient(cfg.Backend, nil, reg, zapLogger)
	resolver := vendor.NewResolver(settings, cfg.Vendor.SettingsKey, cfg.Vendor.DefaultID, zapLogger)

	router := server.NewRouter(server.RouterDeps{
		Orders:        order.NewModule(client, cfg, reg, zapLogger),
		Catalog:       catalog.NewModule(client, zapLogger),
		Vendor:        vendor.NewController(resolver, zapLogger),
		VendorContext: resolver.Middleware,
		Metrics:       reg.Handler(),
		Logger:        zapLogger,
	})

	srv := server.New(cfg.Server, router, zapLogger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil {
			zapLogger.Fatal("server error", zap.Error(err))
		}
	}()

	<-quit
	zapLogger.Info("received shutdown signal")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server shutdown failed", zap.Error(err))
	}

	zapLogger.Info("server stopped gracefully")
}
