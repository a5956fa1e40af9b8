package handler

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/custodia/internal/domain"
	"github.com/saturnino-fabrica-de-software/custodia/internal/enrollment"
)

type EnrollmentService interface {
	UpdateDeviceAccess(ctx context.Context, userID int64, addLocations, removeLocations []string) (*enrollment.Result, error)
	RemoveUserEverywhere(ctx context.Context, userID int64) (*enrollment.Result, error)
}

type EnrollmentHandler struct {
	service EnrollmentService
	logger  *slog.Logger
}

func NewEnrollmentHandler(service EnrollmentService, logger *slog.Logger) *EnrollmentHandler {
	return &EnrollmentHandler{
		service: service,
		logger:  logger,
	}
}

type UpdateDevicesRequest struct {
	AddDevices    []string `json:"addDevices"`
	RemoveDevices []string `json:"removeDevices"`
}

// UpdateDevices PUT /v1/users/:id/devices - grant/revoke device access
func (h *EnrollmentHandler) UpdateDevices(c *fiber.Ctx) error {
	userID, err := parseUserID(c)
	if err != nil {
		return err
	}

	var req UpdateDevicesRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	if req.AddDevices == nil && req.RemoveDevices == nil {
		return domain.ErrBadRequest.WithError(errors.New("addDevices or removeDevices is required"))
	}

	result, err := h.service.UpdateDeviceAccess(c.Context(), userID, req.AddDevices, req.RemoveDevices)
	if err != nil {
		return err
	}

	return c.JSON(result)
}

// DeleteUser DELETE /v1/users/:id - remove a user and notify their devices
func (h *EnrollmentHandler) DeleteUser(c *fiber.Ctx) error {
	userID, err := parseUserID(c)
	if err != nil {
		return err
	}

	result, err := h.service.RemoveUserEverywhere(c.Context(), userID)
	if err != nil {
		return err
	}

	return c.JSON(result)
}

func parseUserID(c *fiber.Ctx) (int64, error) {
	userID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return 0, domain.ErrBadRequest.WithError(errors.New("user id must be an integer"))
	}
	return userID, nil
}
