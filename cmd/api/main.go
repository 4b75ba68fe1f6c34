package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/fosbar/barpos-backend/api/routes"
	"github.com/fosbar/barpos-backend/internal/debtors"
	"github.com/fosbar/barpos-backend/internal/inventory"
	"github.com/fosbar/barpos-backend/internal/ledger"
	"github.com/fosbar/barpos-backend/internal/loyalty"
	"github.com/fosbar/barpos-backend/internal/persons"
	"github.com/fosbar/barpos-backend/internal/products"
	"github.com/fosbar/barpos-backend/internal/sales"
	"github.com/fosbar/barpos-backend/internal/settings"
	"github.com/fosbar/barpos-backend/internal/users"
	"github.com/fosbar/barpos-backend/pkg/config"
	"github.com/fosbar/barpos-backend/pkg/db"
	"github.com/fosbar/barpos-backend/pkg/logger"
	"github.com/fosbar/barpos-backend/pkg/metrics"
	"github.com/fosbar/barpos-backend/pkg/migrate"
	"github.com/fosbar/barpos-backend/pkg/redis"
)

const shutdownTimeout = 10 * time.Second

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

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	saleMetrics := metrics.NewSaleMetrics(registry)

	gormDB := dbClient.DB()

	catalogService, err := products.NewService(products.NewRepository(gormDB))
	requireService(logg, "catalog", err)

	personService, err := persons.NewService(persons.NewRepository(gormDB), dbClient)
	requireService(logg, "persons", err)

	debtorService, err := debtors.NewService(debtors.NewRepository(gormDB), dbClient)
	requireService(logg, "debtors", err)

	ledgerService, err := ledger.NewService(ledger.NewRepository(gormDB), dbClient)
	requireService(logg, "ledger", err)

	loyaltyService, err := loyalty.NewService(loyalty.NewRepository(gormDB), dbClient)
	requireService(logg, "loyalty", err)

	cardTypeService, err := loyalty.NewTypeService(loyalty.NewRepository(gormDB))
	requireService(logg, "card types", err)

	inventoryService, err := inventory.NewService(inventory.NewRepository(gormDB))
	requireService(logg, "inventory", err)

	saleService, err := sales.NewService(
		sales.NewRepository(gormDB),
		dbClient,
		ledgerService,
		loyaltyService,
		inventoryService,
		saleMetrics,
	)
	requireService(logg, "sales", err)

	userService, err := users.NewService(users.NewRepository(gormDB), cfg.Password)
	requireService(logg, "users", err)

	settingService, err := settings.NewService(gormDB)
	requireService(logg, "settings", err)

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
		Handler: routes.NewRouter(
			cfg,
			logg,
			redisClient,
			registry,
			catalogService,
			personService,
			debtorService,
			ledgerService,
			loyaltyService,
			cardTypeService,
			saleService,
			inventoryService,
			userService,
			settingService,
		),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		closeErr := multierr.Combine(
			server.Shutdown(shutdownCtx),
			redisClient.Close(),
			dbClient.Close(),
		)
		if closeErr != nil {
			logg.Error(ctx, "shutdown finished with errors", closeErr)
			os.Exit(1)
		}
		logg.Info(ctx, "shutdown complete")
	}
}

func requireService(logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(logg.WithField(context.Background(), "service", name), "failed to create service", err)
	os.Exit(1)
}
