package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

// ClientSecretIssuer opens a processor payment intent for an amount in
// minor units.
type ClientSecretIssuer interface {
	CreateClientSecret(ctx context.Context, amountCents int64) (string, error)
}

// RelayHandler keeps the stateless relay contract: 200 {clientSecret} on
// success, 500 {error} on any failure.
type RelayHandler struct {
	issuer ClientSecretIssuer
}

func NewRelayHandler(issuer ClientSecretIssuer) *RelayHandler {
	return &RelayHandler{issuer: issuer}
}

func (h *RelayHandler) CreatePaymentIntent(c echo.Context) error {
	var req relayRequest
	if err := bind(c, &req); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	secret, err := h.issuer.CreateClientSecret(c.Request().Context(), req.Amount)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"clientSecret": secret})
}
