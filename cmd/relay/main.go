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

	"github.com/srgjo27/altair_ticket/internal/adapter/handler"
	"github.com/srgjo27/altair_ticket/internal/adapter/payment"
	"github.com/srgjo27/altair_ticket/internal/config"
)

func main() {
	cfg := config.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	var issuer handler.ClientSecretIssuer
	if cfg.StripeSecretKey == "" {
		logger.Warn("STRIPE_SECRET_KEY not set, using sandbox payments")
		issuer = payment.NewSandbox()
	} else {
		issuer = payment.NewStripeGateway(cfg.StripeSecretKey, cfg.PaymentCurrency)
	}

	server := &http.Server{
		Addr:         ":" + cfg.RelayPort,
		Handler:      handler.NewRelayRouter(handler.NewRelayHandler(issuer), logger),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("relay starting", "port", cfg.RelayPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("relay startup failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("relay forced to shutdown", "error", err)
	}
	logger.Info("relay exiting")
}
