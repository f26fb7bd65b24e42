package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/srgjo27/altair_ticket/internal/core/domain"
	"github.com/srgjo27/altair_ticket/internal/core/services"
)

type ProfileHandler struct {
	alerts *services.AlertService
}

func NewProfileHandler(alerts *services.AlertService) *ProfileHandler {
	return &ProfileHandler{alerts: alerts}
}

func (h *ProfileHandler) Save(c echo.Context) error {
	var req profileRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	user, err := h.alerts.SaveProfile(c.Request().Context(), callerFrom(c), req.FullName, req.Email)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *ProfileHandler) Alerts(c echo.Context) error {
	alerts, err := h.alerts.Alerts(c.Request().Context(), callerFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"alerts": alerts})
}

func (h *ProfileHandler) Dismiss(c echo.Context) error {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return respondError(c, fmt.Errorf("%w: alert index %q", domain.ErrInvalidInput, c.Param("index")))
	}
	if err := h.alerts.Dismiss(c.Request().Context(), callerFrom(c), index); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ProfileHandler) Clear(c echo.Context) error {
	if err := h.alerts.Clear(c.Request().Context(), callerFrom(c)); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
