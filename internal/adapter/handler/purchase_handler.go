package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/srgjo27/altair_ticket/internal/core/domain"
	"github.com/srgjo27/altair_ticket/internal/core/services"
)

type PurchaseHandler struct {
	purchase     *services.PurchaseService
	cancellation *services.CancellationService
}

func NewPurchaseHandler(purchase *services.PurchaseService, cancellation *services.CancellationService) *PurchaseHandler {
	return &PurchaseHandler{purchase: purchase, cancellation: cancellation}
}

func (h *PurchaseHandler) InitiatePayment(c echo.Context) error {
	id, err := eventIDParam(c)
	if err != nil {
		return respondError(c, err)
	}
	row, col, err := seatParams(c)
	if err != nil {
		return respondError(c, err)
	}
	intent, err := h.purchase.InitiatePayment(c.Request().Context(), callerFrom(c), id, row, col)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, intent)
}

func (h *PurchaseHandler) Purchase(c echo.Context) error {
	id, err := eventIDParam(c)
	if err != nil {
		return respondError(c, err)
	}
	row, col, err := seatParams(c)
	if err != nil {
		return respondError(c, err)
	}
	var req purchaseRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}

	ticket, err := h.purchase.PayAndCommit(c.Request().Context(), callerFrom(c), id, row, col, req.IntentID, req.PaymentMethod)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, ticket)
}

func (h *PurchaseHandler) ListTickets(c echo.Context) error {
	tickets, err := h.purchase.ListTickets(c.Request().Context(), callerFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	if tickets == nil {
		tickets = []domain.Ticket{}
	}
	return c.JSON(http.StatusOK, tickets)
}

func (h *PurchaseHandler) CancelTicket(c echo.Context) error {
	if err := h.cancellation.CancelTicket(c.Request().Context(), callerFrom(c), c.Param("id")); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
