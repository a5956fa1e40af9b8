package handler

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/custodia/internal/domain"
)

// IngestService accepts one raw event per call.
type IngestService interface {
	Ingest(ctx context.Context, raw domain.RawEvent) (*domain.AccessEvent, error)
}

// EventLister feeds the operator log view.
type EventLister interface {
	ListRecent(ctx context.Context, userID *int64, deviceID *string, limit int) ([]domain.AccessEvent, error)
}

type EventsHandler struct {
	service IngestService
	lister  EventLister
	logger  *slog.Logger
}

func NewEventsHandler(service IngestService, lister EventLister, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{
		service: service,
		lister:  lister,
		logger:  logger,
	}
}

type IngestResponse struct {
	Accepted bool   `json:"accepted"`
	EventID  string `json:"event_id"`
}

// Ingest POST /v1/events - record one access event
func (h *EventsHandler) Ingest(c *fiber.Ctx) error {
	var raw domain.RawEvent
	if err := c.BodyParser(&raw); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	event, err := h.service.Ingest(c.Context(), raw)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(IngestResponse{
		Accepted: true,
		EventID:  event.ID,
	})
}

// List GET /v1/events - recent events with optional user/device filters
func (h *EventsHandler) List(c *fiber.Ctx) error {
	var userID *int64
	if v := c.Query("user_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return domain.ErrBadRequest.WithError(errors.New("user_id must be an integer"))
		}
		userID = &id
	}

	var deviceID *string
	if v := c.Query("device_id"); v != "" {
		deviceID = &v
	}

	limit := c.QueryInt("limit", 100)

	events, err := h.lister.ListRecent(c.Context(), userID, deviceID, limit)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"events": events, "count": len(events)})
}
