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

	"github.com/redis/go-redis/v9"

	"github.com/srgjo27/altair_ticket/internal/adapter/handler"
	"github.com/srgjo27/altair_ticket/internal/adapter/payment"
	"github.com/srgjo27/altair_ticket/internal/adapter/queue"
	"github.com/srgjo27/altair_ticket/internal/adapter/repository/memory"
	"github.com/srgjo27/altair_ticket/internal/adapter/repository/postgres"
	redisrepo "github.com/srgjo27/altair_ticket/internal/adapter/repository/redis"
	"github.com/srgjo27/altair_ticket/internal/config"
	"github.com/srgjo27/altair_ticket/internal/core/ports"
	"github.com/srgjo27/altair_ticket/internal/core/services"
	"github.com/srgjo27/altair_ticket/internal/platform/database"
)

type gateway interface {
	ports.PaymentGateway
	handler.ClientSecretIssuer
}

type repositories struct {
	events  ports.EventRepository
	tickets ports.TicketRepository
	users   ports.UserRepository
	close   func()
}

func newLogger(cfg *config.Config) *slog.Logger {
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func openRepositories(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*repositories, error) {
	if cfg.StoreDriver == "memory" {
		logger.Warn("using in-memory store, data is lost on restart")
		store := memory.NewStore()
		return &repositories{events: store.Events(), tickets: store.Tickets(), users: store.Users(), close: func() {}}, nil
	}

	db, err := database.NewPostgresDB(cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &repositories{
		events:  postgres.NewEventRepository(db),
		tickets: postgres.NewTicketRepository(db),
		users:   postgres.NewUserRepository(db),
		close:   func() { db.Close() },
	}, nil
}

func openRealtime(ctx context.Context, cfg *config.Config, logger *slog.Logger) (ports.SeatCache, ports.ChangeNotifier, func(), error) {
	if cfg.RedisAddr == "" {
		logger.Info("REDIS_ADDR not set, using in-process seat cache and notifier")
		return memory.NewSeatCache(), memory.NewNotifier(), func() {}, nil
	}

	logger.Info("connecting to redis", "addr", cfg.RedisAddr)
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, nil, err
	}
	logger.Info("redis connected")
	return redisrepo.NewSeatCache(client), redisrepo.NewNotifier(client, logger), func() { client.Close() }, nil
}

func openPublisher(cfg *config.Config, logger *slog.Logger) (ports.EventPublisher, func()) {
	if cfg.RabbitMQURL == "" {
		logger.Info("RABBITMQ_URL not set, domain events are not published")
		return queue.NopPublisher{}, func() {}
	}
	pub, err := queue.NewPublisher(cfg.RabbitMQURL)
	if err != nil {
		logger.Error("rabbitmq unavailable, domain events are not published", "error", err)
		return queue.NopPublisher{}, func() {}
	}
	return pub, func() { pub.Close() }
}

func openGateway(cfg *config.Config, logger *slog.Logger) gateway {
	if cfg.StripeSecretKey == "" {
		logger.Warn("STRIPE_SECRET_KEY not set, using sandbox payments")
		return payment.NewSandbox()
	}
	return payment.NewStripeGateway(cfg.StripeSecretKey, cfg.PaymentCurrency)
}

func main() {
	cfg := config.Load()
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	if cfg.JWTSecret == "" {
		logger.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	repos, err := openRepositories(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer repos.close()

	cache, notifier, closeRealtime, err := openRealtime(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer closeRealtime()

	publisher, closePublisher := openPublisher(cfg, logger)
	defer closePublisher()

	gw := openGateway(cfg, logger)

	catalog := services.NewCatalogService(repos.events, cache, notifier, cfg.SeatCacheTTL, logger)
	setup := services.NewSetupService(repos.events, notifier, logger)
	purchase := services.NewPurchaseService(repos.events, repos.tickets, cache, notifier, publisher, gw, logger)
	cancellation := services.NewCancellationService(repos.events, repos.tickets, cache, notifier, publisher,
		services.RetryPolicy{MaxAttempts: cfg.CascadeMaxAttempts, Backoff: cfg.CascadeRetryBackoff}, logger)
	alerts := services.NewAlertService(repos.users)
	reconciler := services.NewReconciler(repos.tickets, cache, notifier, cfg.ReconcileInterval, logger)

	go func() {
		if err := reconciler.RunBackgroundCleanup(ctx); err != nil {
			logger.Error("reconciler stopped", "error", err)
		}
	}()

	e := handler.NewRouter(handler.RouterConfig{
		JWTSecret:     cfg.JWTSecret,
		EnableMetrics: cfg.EnableMetrics,
		Logger:        logger,
		Events:        handler.NewEventHandler(catalog, setup, cancellation),
		Purchase:      handler.NewPurchaseHandler(purchase, cancellation),
		Profile:       handler.NewProfileHandler(alerts),
		Relay:         handler.NewRelayHandler(gw),
	})

	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     e,
		ReadTimeout: 5 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Port, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server startup failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exiting")
}
