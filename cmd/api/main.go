package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/balcaohq/balcao-backend/api/routes"
	"github.com/balcaohq/balcao-backend/internal/cashbook"
	"github.com/balcaohq/balcao-backend/internal/catalog"
	"github.com/balcaohq/balcao-backend/internal/cron"
	"github.com/balcaohq/balcao-backend/internal/customers"
	"github.com/balcaohq/balcao-backend/internal/orders"
	"github.com/balcaohq/balcao-backend/internal/paymentmethods"
	"github.com/balcaohq/balcao-backend/internal/pos"
	"github.com/balcaohq/balcao-backend/pkg/config"
	"github.com/balcaohq/balcao-backend/pkg/db"
	"github.com/balcaohq/balcao-backend/pkg/logger"
	"github.com/balcaohq/balcao-backend/pkg/metrics"
	"github.com/balcaohq/balcao-backend/pkg/migrate"
	"github.com/balcaohq/balcao-backend/pkg/redis"
)

const sweepLockName = "session-sweep"

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

	catalogService, err := catalog.NewService(catalog.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}
	customersService, err := customers.NewService(customers.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create customers service", err)
		os.Exit(1)
	}
	methodsService, err := paymentmethods.NewService(paymentmethods.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create payment methods service", err)
		os.Exit(1)
	}
	cashbookService, err := cashbook.NewService(cashbook.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create cashbook service", err)
		os.Exit(1)
	}

	ordersRepo := orders.NewRepository(dbClient.DB())
	ordersService, err := orders.NewService(ordersRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	posService, err := pos.NewService(
		pos.NewRegistry(),
		catalogService,
		customersService,
		methodsService,
		orders.NewWriter(ordersRepo),
		cashbookService,
		pos.NewRedisTicketSequence(redisClient),
		dbClient,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create pos service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Sessions live in this process, so the sweep cron runs here instead of
	// in a separate worker binary.
	go runSessionSweep(ctx, cfg, logg, redisClient, posService)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(logCtx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			catalogService,
			customersService,
			methodsService,
			cashbookService,
			ordersService,
			posService,
		),
	}

	go func() {
		<-ctx.Done()
		_ = server.Shutdown(context.Background())
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logg.Error(logCtx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(logCtx, "api server shutting down gracefully")
}

func runSessionSweep(ctx context.Context, cfg *config.Config, logg *logger.Logger, redisClient *redis.Client, posService pos.Service) {
	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey(sweepLockName), 0)
	if err != nil {
		logg.Error(ctx, "failed to create sweep lock", err)
		return
	}

	sweepJob, err := cron.NewSessionSweepJob(posService, cfg.Session.IdleTTL(), logg)
	if err != nil {
		logg.Error(ctx, "failed to create session sweep job", err)
		return
	}

	cronService, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(sweepJob),
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(ctx, "failed to create cron service", err)
		return
	}

	if err := cronService.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "session sweep loop stopped unexpectedly", err)
	}
}
