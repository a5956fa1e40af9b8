package handler

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/custodia/internal/domain"
	"github.com/saturnino-fabrica-de-software/custodia/internal/settings"
)

type SettingsService interface {
	Parameters(ctx context.Context, deviceID *string) (settings.AlertParameters, error)
	UpdateParameters(ctx context.Context, maxDenied, windowSeconds int, deviceID *string) error
}

type AlertParamsHandler struct {
	service SettingsService
	logger  *slog.Logger
}

func NewAlertParamsHandler(service SettingsService, logger *slog.Logger) *AlertParamsHandler {
	return &AlertParamsHandler{
		service: service,
		logger:  logger,
	}
}

// Get GET /v1/alert-parameters?device_id= - current threshold and window
func (h *AlertParamsHandler) Get(c *fiber.Ctx) error {
	deviceID := deviceScope(c)

	params, err := h.service.Parameters(c.Context(), deviceID)
	if err != nil {
		return err
	}

	return c.JSON(params)
}

type UpdateAlertParamsRequest struct {
	MaxDeniedAttempts *int `json:"max_denied_attempts"`
	WindowSeconds     *int `json:"window_seconds"`
}

// Update PUT /v1/alert-parameters?device_id= - set threshold and window
func (h *AlertParamsHandler) Update(c *fiber.Ctx) error {
	var req UpdateAlertParamsRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	if req.MaxDeniedAttempts == nil || req.WindowSeconds == nil {
		return domain.ErrBadRequest.WithError(
			errors.New("both max_denied_attempts and window_seconds are required"))
	}

	deviceID := deviceScope(c)

	if err := h.service.UpdateParameters(c.Context(), *req.MaxDeniedAttempts, *req.WindowSeconds, deviceID); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": "Alert parameters updated successfully",
		"updated": fiber.Map{
			"max_denied_attempts": *req.MaxDeniedAttempts,
			"window_seconds":      *req.WindowSeconds,
		},
	})
}

func deviceScope(c *fiber.Ctx) *string {
	if v := c.Query("device_id"); v != "" {
		return &v
	}
	return nil
}
