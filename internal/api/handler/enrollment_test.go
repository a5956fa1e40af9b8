package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/custodia/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/custodia/internal/domain"
	"github.com/saturnino-fabrica-de-software/custodia/internal/enrollment"
)

type MockEnrollmentService struct {
	mock.Mock
}

func (m *MockEnrollmentService) UpdateDeviceAccess(ctx context.Context, userID int64, addLocations, removeLocations []string) (*enrollment.Result, error) {
	args := m.Called(ctx, userID, addLocations, removeLocations)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*enrollment.Result), args.Error(1)
}

func (m *MockEnrollmentService) RemoveUserEverywhere(ctx context.Context, userID int64) (*enrollment.Result, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*enrollment.Result), args.Error(1)
}

func newEnrollmentApp(service *MockEnrollmentService) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(testLogger()),
	})

	h := NewEnrollmentHandler(service, testLogger())
	app.Put("/v1/users/:id/devices", h.UpdateDevices)
	app.Delete("/v1/users/:id", h.DeleteUser)

	return app
}

func TestEnrollmentHandler_UpdateDevices(t *testing.T) {
	service := &MockEnrollmentService{}
	service.On("UpdateDeviceAccess", mock.Anything, int64(7), []string{"Door-A"}, []string{"Door-B"}).
		Return(&enrollment.Result{Added: []string{"Door-A"}, Removed: []string{"Door-B"}}, nil)

	app := newEnrollmentApp(service)

	body := `{"addDevices":["Door-A"],"removeDevices":["Door-B"]}`
	req := httptest.NewRequest(fiber.MethodPut, "/v1/users/7/devices", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result enrollment.Result
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, []string{"Door-A"}, result.Added)
	assert.Equal(t, []string{"Door-B"}, result.Removed)
}

func TestEnrollmentHandler_UpdateDevices_EmptyRequest(t *testing.T) {
	app := newEnrollmentApp(&MockEnrollmentService{})

	req := httptest.NewRequest(fiber.MethodPut, "/v1/users/7/devices", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestEnrollmentHandler_UpdateDevices_BadUserID(t *testing.T) {
	app := newEnrollmentApp(&MockEnrollmentService{})

	req := httptest.NewRequest(fiber.MethodPut, "/v1/users/abc/devices", bytes.NewBufferString(`{"addDevices":["Door-A"]}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestEnrollmentHandler_DeleteUser(t *testing.T) {
	tests := []struct {
		name           string
		setupMock      func(*MockEnrollmentService)
		expectedStatus int
	}{
		{
			name: "existing user",
			setupMock: func(m *MockEnrollmentService) {
				m.On("RemoveUserEverywhere", mock.Anything, int64(7)).
					Return(&enrollment.Result{Removed: []string{"Door-A"}}, nil)
			},
			expectedStatus: fiber.StatusOK,
		},
		{
			name: "unknown user",
			setupMock: func(m *MockEnrollmentService) {
				m.On("RemoveUserEverywhere", mock.Anything, int64(7)).
					Return(nil, domain.ErrUserNotFound)
			},
			expectedStatus: fiber.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &MockEnrollmentService{}
			tt.setupMock(service)

			app := newEnrollmentApp(service)

			resp, err := app.Test(httptest.NewRequest(fiber.MethodDelete, "/v1/users/7", nil))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}
