package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/suyogshakya/rentwheels/internal/application"
	"github.com/suyogshakya/rentwheels/internal/application/services"
	"github.com/suyogshakya/rentwheels/internal/config"
	"github.com/suyogshakya/rentwheels/internal/infrastructure/esewa"
	"github.com/suyogshakya/rentwheels/internal/infrastructure/pending"
	"github.com/suyogshakya/rentwheels/internal/infrastructure/persistence/postgres"
	"github.com/suyogshakya/rentwheels/internal/interfaces/rest/handlers"
	"github.com/suyogshakya/rentwheels/internal/interfaces/rest/middleware"
	"github.com/suyogshakya/rentwheels/internal/metrics"
	"github.com/suyogshakya/rentwheels/internal/notify"
	"github.com/suyogshakya/rentwheels/internal/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := cfg.Logger.NewLogger()
	slog.SetDefault(logger)

	logger.Info("starting rentwheels service",
		"port", cfg.Server.Port,
		"log_level", cfg.Logger.Level,
		"pending_backend", cfg.Pending.Backend,
	)

	ctx := context.Background()
	db, err := postgres.Connect(ctx, &cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	bookingRepo := postgres.NewBookingRepository(db)
	resourceRepo := postgres.NewResourceRepository(db)
	licenseRepo := postgres.NewLicenseRepository(db)

	var pendingStore application.PendingStore
	switch cfg.Pending.Backend {
	case "redis":
		redisClient := pending.NewRedisClient(cfg.Redis)
		redisStore := pending.NewRedisStore(redisClient, cfg.Pending.TTL)
		if err := redisStore.Ping(ctx); err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		pendingStore = redisStore
	default:
		pendingStore = pending.NewMemoryStore()
	}

	signer := esewa.NewSigner(cfg.Esewa.SecretKey)
	gatewayClient := esewa.NewClient(cfg.Esewa)

	var notifier application.Notifier
	if cfg.Notifier.Enabled {
		publisher, err := notify.NewPublisher(cfg.Notifier.URL, cfg.Notifier.Exchange)
		if err != nil {
			logger.Error("failed to connect to message broker", "error", err)
			os.Exit(1)
		}
		defer publisher.Close()
		notifier = publisher
	}

	metrics.Register()

	availabilityService := services.NewAvailabilityService(bookingRepo, resourceRepo, logger)
	initiationService := services.NewInitiationService(
		availabilityService,
		resourceRepo,
		licenseRepo,
		pendingStore,
		signer,
		cfg.Esewa,
		cfg.Booking,
		logger,
	)
	promoter := services.NewPromoter(bookingRepo, pendingStore, notifier, logger)
	callbackService := services.NewCallbackService(
		pendingStore,
		promoter,
		signer,
		cfg.Pages,
		cfg.Esewa.AllowAmountFallback,
		logger,
	)
	reconciliationService := services.NewReconciliationService(
		bookingRepo,
		pendingStore,
		gatewayClient,
		promoter,
		logger,
	)
	queryService := services.NewQueryService(bookingRepo)

	h := handlers.NewHandlers(
		availabilityService,
		initiationService,
		callbackService,
		reconciliationService,
		queryService,
		logger,
	)

	mux := http.NewServeMux()
	h.Register(mux)

	handler := http.Handler(mux)
	handler = middleware.Recovery(logger)(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.Timeout(cfg.Server.ReadTimeout)(handler)

	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	sweeper := worker.NewSweeper(
		pendingStore,
		gatewayClient,
		promoter,
		cfg.Pending.TTL,
		cfg.Pending.SweepInterval,
		logger,
	)

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	go sweeper.Start(workerCtx)

	go func() {
		logger.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	cancelWorkers()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
