package handler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterConfig struct {
	JWTSecret     string
	EnableMetrics bool
	Logger        *slog.Logger

	Events   *EventHandler
	Purchase *PurchaseHandler
	Profile  *ProfileHandler
	Relay    *RelayHandler
}

func newEcho(logger *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = newRequestValidator()
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger(logger))
	e.GET("/healthz", health)
	return e
}

func health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

// NewRouter wires every API route.
func NewRouter(cfg RouterConfig) *echo.Echo {
	e := newEcho(cfg.Logger)

	if cfg.EnableMetrics {
		e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	}
	if cfg.Relay != nil {
		e.POST("/create-payment-intent", cfg.Relay.CreatePaymentIntent)
	}

	v1 := e.Group("/v1")
	auth := JWTAuth(cfg.JWTSecret)

	v1.GET("/events", cfg.Events.List)
	v1.GET("/events/:id", cfg.Events.Get)
	v1.GET("/events/:id/seats", cfg.Events.Seats)
	v1.GET("/events/:id/stream", cfg.Events.Stream)
	v1.POST("/events", cfg.Events.Publish, auth)
	v1.POST("/events/:id/cancel", cfg.Events.Cancel, auth)

	v1.POST("/events/:id/seats/:row/:col/payment", cfg.Purchase.InitiatePayment, auth)
	v1.POST("/events/:id/seats/:row/:col/purchase", cfg.Purchase.Purchase, auth)
	v1.GET("/tickets", cfg.Purchase.ListTickets, auth)
	v1.DELETE("/tickets/:id", cfg.Purchase.CancelTicket, auth)

	v1.PUT("/me", cfg.Profile.Save, auth)
	v1.GET("/me/alerts", cfg.Profile.Alerts, auth)
	v1.DELETE("/me/alerts/:index", cfg.Profile.Dismiss, auth)
	v1.DELETE("/me/alerts", cfg.Profile.Clear, auth)

	return e
}

// NewRelayRouter serves only the payment-intent relay.
func NewRelayRouter(relay *RelayHandler, logger *slog.Logger) *echo.Echo {
	e := newEcho(logger)
	e.POST("/create-payment-intent", relay.CreatePaymentIntent)
	return e
}
