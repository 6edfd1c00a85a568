package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cartforge/cartforge/api"
	"github.com/cartforge/cartforge/api/routes"
	"github.com/cartforge/cartforge/internal/access"
	"github.com/cartforge/cartforge/internal/attributes"
	"github.com/cartforge/cartforge/internal/cart"
	"github.com/cartforge/cartforge/internal/checkoutattrs"
	"github.com/cartforge/cartforge/internal/customers"
	"github.com/cartforge/cartforge/internal/products"
	"github.com/cartforge/cartforge/pkg/config"
	"github.com/cartforge/cartforge/pkg/db"
	"github.com/cartforge/cartforge/pkg/logger"
	"github.com/cartforge/cartforge/pkg/metrics"
	"github.com/cartforge/cartforge/pkg/migrate"
	"github.com/cartforge/cartforge/pkg/redis"
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

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
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
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	cartMetrics := metrics.NewCartMetrics(registry)

	customersRepo, err := customers.NewRepository(dbClient.DB())
	if err != nil {
		logg.Error(context.Background(), "failed to create customer repository", err)
		os.Exit(1)
	}
	productsRepo := products.NewRepository(dbClient.DB())
	checkoutRepo, err := checkoutattrs.NewRepository(dbClient.DB())
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout attribute repository", err)
		os.Exit(1)
	}
	itemsRepo, err := cart.NewRepository(dbClient.DB())
	if err != nil {
		logg.Error(context.Background(), "failed to create cart item repository", err)
		os.Exit(1)
	}
	attrService, err := attributes.NewService(dbClient.DB())
	if err != nil {
		logg.Error(context.Background(), "failed to create attribute service", err)
		os.Exit(1)
	}
	accessService := access.NewService()

	cartService, err := cart.NewService(cart.Deps{
		DB:            dbClient,
		Items:         itemsRepo,
		Products:      productsRepo,
		Customers:     customersRepo,
		CheckoutAttrs: checkoutRepo,
		Attributes:    attrService,
		Access:        accessService,
		Config:        cfg.Cart,
		Logger:        logg,
		Metrics:       cartMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	metricsHandler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	router := routes.NewRouter(cfg, logg, dbClient, redisClient, cartService, customersRepo, productsRepo, metricsHandler)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(runCtx, "starting api server")

	if err := api.Serve(ctx, addr, router, logg); err != nil {
		logg.Error(runCtx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(runCtx, "api server stopped")
}
