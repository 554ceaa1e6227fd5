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

	"github.com/amicofritto/orders-backend/api/routes"
	"github.com/amicofritto/orders-backend/internal/additions"
	"github.com/amicofritto/orders-backend/internal/cron"
	"github.com/amicofritto/orders-backend/internal/discounts"
	"github.com/amicofritto/orders-backend/internal/orders"
	"github.com/amicofritto/orders-backend/internal/push"
	"github.com/amicofritto/orders-backend/internal/store"
	"github.com/amicofritto/orders-backend/pkg/captcha"
	"github.com/amicofritto/orders-backend/pkg/config"
	"github.com/amicofritto/orders-backend/pkg/db"
	"github.com/amicofritto/orders-backend/pkg/fcm"
	"github.com/amicofritto/orders-backend/pkg/logger"
	"github.com/amicofritto/orders-backend/pkg/metrics"
	"github.com/amicofritto/orders-backend/pkg/migrate"
	"github.com/amicofritto/orders-backend/pkg/ratelimit"
	"github.com/amicofritto/orders-backend/pkg/redis"
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

	// Rate-limit counters live in Redis when one is configured; a
	// process-local store keeps single-instance deployments working
	// without it.
	var limiterStore ratelimit.CounterStore = ratelimit.NewMemoryStore()
	keyFn := func(scope string) string { return "af:rate_limit:" + scope }
	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		limiterStore = redisClient
		keyFn = redisClient.RateLimitKey
	}
	limiter, err := ratelimit.NewLimiter(limiterStore, keyFn)
	if err != nil {
		logg.Error(context.Background(), "failed to create rate limiter", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	orderMetrics := metrics.NewOrderMetrics(registry)

	var fcmClient *fcm.Client
	if cfg.Firebase.Enabled() {
		fcmClient, err = fcm.NewClient(cfg.Firebase, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to create fcm client", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "firebase credentials missing, push notifications disabled")
	}

	storeService, err := store.NewService(store.NewRepository(dbClient.DB()), cfg.Store)
	if err != nil {
		logg.Error(context.Background(), "failed to create store service", err)
		os.Exit(1)
	}
	additionsService, err := additions.NewService(additions.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create additions service", err)
		os.Exit(1)
	}
	discountsService, err := discounts.NewService(discounts.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create discounts service", err)
		os.Exit(1)
	}

	var sender push.Sender
	if fcmClient != nil {
		sender = fcmClient
	}
	pushRepo := push.NewRepository(dbClient.DB())
	pushService, err := push.NewService(pushRepo, sender, logg, orderMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create push service", err)
		os.Exit(1)
	}

	ordersRepo := orders.NewRepository(dbClient.DB())

	var maintLock cron.Lock = cron.LocalLock{}
	if redisClient != nil {
		maintLock, err = cron.NewRedisLock(redisClient, redisClient.MaintenanceLockKey("cycle"), 0)
		if err != nil {
			logg.Error(context.Background(), "failed to create maintenance lock", err)
			os.Exit(1)
		}
	}
	retentionJob, err := cron.NewTokenRetentionJob(logg, pushRepo, orderMetrics, cfg.Maintenance.TokenRetention)
	if err != nil {
		logg.Error(context.Background(), "failed to create token retention job", err)
		os.Exit(1)
	}
	expiryJob, err := cron.NewOrderExpiryJob(logg, ordersRepo, pushService, orderMetrics, cfg.Maintenance.PendingTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create order expiry job", err)
		os.Exit(1)
	}
	maintenance, err := cron.NewService(logg, maintLock, cfg.Maintenance.Interval, expiryJob, retentionJob)
	if err != nil {
		logg.Error(context.Background(), "failed to create maintenance service", err)
		os.Exit(1)
	}
	maintCtx, stopMaintenance := context.WithCancel(context.Background())
	defer stopMaintenance()
	go func() {
		if err := maintenance.Run(maintCtx); err != nil && !errors.Is(err, context.Canceled) {
			logg.Error(maintCtx, "maintenance loop stopped unexpectedly", err)
		}
	}()

	verifier := captcha.NewVerifier(cfg.Captcha)
	ordersService, err := orders.NewService(
		dbClient,
		ordersRepo,
		additionsService,
		discountsService,
		storeService,
		verifier,
		pushService,
		logg,
		orderMetrics,
	)
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

	var redisPinger redis.Pinger
	if redisClient != nil {
		redisPinger = redisClient
	}
	server := &http.Server{
		Addr:              addr,
		ReadHeaderTimeout: 10 * time.Second,
		Handler: routes.NewRouter(routes.Deps{
			Config:    cfg,
			Logger:    logg,
			DB:        dbClient,
			Redis:     redisPinger,
			Limiter:   limiter,
			Registry:  registry,
			Orders:    ordersService,
			Additions: additionsService,
			Discounts: discountsService,
			Store:     storeService,
			Push:      pushService,
		}),
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-shutdown
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
