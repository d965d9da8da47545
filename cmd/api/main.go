package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/mdfakih/inventory-backend/api/routes"
	"github.com/mdfakih/inventory-backend/internal/designs"
	"github.com/mdfakih/inventory-backend/internal/entries"
	"github.com/mdfakih/inventory-backend/internal/inventory"
	"github.com/mdfakih/inventory-backend/internal/orders"
	"github.com/mdfakih/inventory-backend/pkg/config"
	"github.com/mdfakih/inventory-backend/pkg/db"
	"github.com/mdfakih/inventory-backend/pkg/logger"
	"github.com/mdfakih/inventory-backend/pkg/metrics"
	"github.com/mdfakih/inventory-backend/pkg/migrate"
	"github.com/mdfakih/inventory-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	coreMetrics := metrics.NewCoreMetrics(registry)

	gormDB := dbClient.DB()

	ledger, err := inventory.NewService(inventory.NewRepository(gormDB), coreMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory service", err)
		os.Exit(1)
	}
	designService, err := designs.NewService(designs.NewRepository(gormDB))
	if err != nil {
		logg.Error(context.Background(), "failed to create designs service", err)
		os.Exit(1)
	}
	entryService, err := entries.NewService(dbClient, entries.NewRepository(gormDB), ledger, coreMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create entries service", err)
		os.Exit(1)
	}
	orderService, err := orders.NewService(dbClient, orders.NewRepository(gormDB), designService, ledger, coreMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, registry, routes.Services{
			Designs:   designService,
			Inventory: ledger,
			Entries:   entryService,
			Orders:    orderService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
