package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/srgjo27/altair_ticket/internal/core/domain"
	"github.com/srgjo27/altair_ticket/internal/core/services"
)

type EventHandler struct {
	catalog      *services.CatalogService
	setup        *services.SetupService
	cancellation *services.CancellationService
	keepAlive    time.Duration
}

func NewEventHandler(catalog *services.CatalogService, setup *services.SetupService, cancellation *services.CancellationService) *EventHandler {
	return &EventHandler{
		catalog:      catalog,
		setup:        setup,
		cancellation: cancellation,
		keepAlive:    15 * time.Second,
	}
}

func eventIDParam(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: event id %q", domain.ErrInvalidInput, c.Param("id"))
	}
	return id, nil
}

func seatParams(c echo.Context) (int, int, error) {
	row, err := strconv.Atoi(c.Param("row"))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: row %q", domain.ErrInvalidInput, c.Param("row"))
	}
	col, err := strconv.Atoi(c.Param("col"))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: col %q", domain.ErrInvalidInput, c.Param("col"))
	}
	return row, col, nil
}

func (h *EventHandler) List(c echo.Context) error {
	onlyAvailable, _ := strconv.ParseBool(c.QueryParam("available"))
	events, err := h.catalog.ListEvents(c.Request().Context(), onlyAvailable)
	if err != nil {
		return respondError(c, err)
	}
	if events == nil {
		events = []domain.Event{}
	}
	return c.JSON(http.StatusOK, events)
}

func (h *EventHandler) Get(c echo.Context) error {
	id, err := eventIDParam(c)
	if err != nil {
		return respondError(c, err)
	}
	event, err := h.catalog.GetEvent(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, event)
}

func (h *EventHandler) Seats(c echo.Context) error {
	id, err := eventIDParam(c)
	if err != nil {
		return respondError(c, err)
	}
	grid, err := h.catalog.Seats(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, grid)
}

func (h *EventHandler) Publish(c echo.Context) error {
	var req publishEventRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	svcReq, err := req.toService()
	if err != nil {
		return respondError(c, err)
	}
	event, err := h.setup.PublishEvent(c.Request().Context(), callerFrom(c), svcReq)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, event)
}

func (h *EventHandler) Cancel(c echo.Context) error {
	id, err := eventIDParam(c)
	if err != nil {
		return respondError(c, err)
	}
	result, err := h.cancellation.CancelEvent(c.Request().Context(), callerFrom(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// Stream pushes change notices for one event as server-sent events until the
// client goes away.
func (h *EventHandler) Stream(c echo.Context) error {
	id, err := eventIDParam(c)
	if err != nil {
		return respondError(c, err)
	}
	ctx := c.Request().Context()
	changes, stop, err := h.catalog.Watch(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	defer stop()

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case change, ok := <-changes:
			if !ok {
				return nil
			}
			data, err := json.Marshal(change)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(res, "event: %s\ndata: %s\n\n", change.Kind, data); err != nil {
				return nil
			}
			res.Flush()
		case <-ticker.C:
			if _, err := fmt.Fprint(res, ": ping\n\n"); err != nil {
				return nil
			}
			res.Flush()
		}
	}
}
