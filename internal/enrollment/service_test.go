package enrollment

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/custodia/internal/domain"
	"github.com/saturnino-fabrica-de-software/custodia/internal/repository"
)

type MockUsers struct {
	mock.Mock
}

func (m *MockUsers) GetByID(ctx context.Context, id int64) (*domain.AccessUser, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccessUser), args.Error(1)
}

func (m *MockUsers) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockDevices struct {
	mock.Mock
}

func (m *MockDevices) GetByLocation(ctx context.Context, location string) (*domain.Device, error) {
	args := m.Called(ctx, location)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Device), args.Error(1)
}

type MockMappings struct {
	mock.Mock
}

func (m *MockMappings) BulkUpdate(ctx context.Context, userID int64, add, remove []repository.DeviceRef) ([]string, []string, error) {
	args := m.Called(ctx, userID, add, remove)
	return args.Get(0).([]string), args.Get(1).([]string), args.Error(2)
}

func (m *MockMappings) LocationsForUser(ctx context.Context, userID int64) ([]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockFanout struct {
	mock.Mock
}

func (m *MockFanout) PublishMany(ctx context.Context, channels []string, payload any) ([]string, []string) {
	args := m.Called(ctx, channels, payload)
	return args.Get(0).([]string), args.Get(1).([]string)
}

func newTestService(users *MockUsers, devices *MockDevices, mappings *MockMappings, fanout *MockFanout) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(users, devices, mappings, fanout, logger)
}

func testUser() *domain.AccessUser {
	return &domain.AccessUser{
		ID:        7,
		FirstName: "Ana",
		LastName:  "Souza",
		Document:  "12345678",
		RFID:      "rfid-7",
	}
}

func TestService_UpdateDeviceAccess(t *testing.T) {
	users := &MockUsers{}
	devices := &MockDevices{}
	mappings := &MockMappings{}
	fanout := &MockFanout{}

	users.On("GetByID", mock.Anything, int64(7)).Return(testUser(), nil)
	devices.On("GetByLocation", mock.Anything, "Door-A").Return(&domain.Device{ID: "dev-a", Location: "Door-A"}, nil)
	devices.On("GetByLocation", mock.Anything, "Door-B").Return(&domain.Device{ID: "dev-b", Location: "Door-B"}, nil)

	addRefs := []repository.DeviceRef{{ID: "dev-a", Location: "Door-A"}}
	removeRefs := []repository.DeviceRef{{ID: "dev-b", Location: "Door-B"}}
	mappings.On("BulkUpdate", mock.Anything, int64(7), addRefs, removeRefs).
		Return([]string{"Door-A"}, []string{"Door-B"}, nil)

	fanout.On("PublishMany", mock.Anything, []string{"access/users/delete/Door-B"}, removalPayload{Document: "12345678"}).
		Return([]string{"access/users/delete/Door-B"}, []string{})
	fanout.On("PublishMany", mock.Anything, []string{"access/users/new/Door-A"}, mock.AnythingOfType("enrollment.userPayload")).
		Return([]string{"access/users/new/Door-A"}, []string{})

	svc := newTestService(users, devices, mappings, fanout)
	result, err := svc.UpdateDeviceAccess(context.Background(), 7, []string{"Door-A"}, []string{"Door-B"})

	require.NoError(t, err)
	assert.Equal(t, []string{"Door-A"}, result.Added)
	assert.Equal(t, []string{"Door-B"}, result.Removed)
	assert.Empty(t, result.NotifyFailed)
	fanout.AssertExpectations(t)
}

func TestService_UpdateDeviceAccess_SkipsUnknownLocation(t *testing.T) {
	users := &MockUsers{}
	devices := &MockDevices{}
	mappings := &MockMappings{}
	fanout := &MockFanout{}

	users.On("GetByID", mock.Anything, int64(7)).Return(testUser(), nil)
	devices.On("GetByLocation", mock.Anything, "Door-A").Return(&domain.Device{ID: "dev-a", Location: "Door-A"}, nil)
	devices.On("GetByLocation", mock.Anything, "Basement").Return(nil, domain.ErrDeviceNotFound)

	addRefs := []repository.DeviceRef{{ID: "dev-a", Location: "Door-A"}}
	mappings.On("BulkUpdate", mock.Anything, int64(7), addRefs, []repository.DeviceRef(nil)).
		Return([]string{"Door-A"}, []string{}, nil)
	fanout.On("PublishMany", mock.Anything, []string{"access/users/new/Door-A"}, mock.Anything).
		Return([]string{"access/users/new/Door-A"}, []string{})

	svc := newTestService(users, devices, mappings, fanout)
	result, err := svc.UpdateDeviceAccess(context.Background(), 7, []string{"Door-A", "Basement"}, nil)

	require.NoError(t, err)
	assert.Equal(t, []string{"Door-A"}, result.Added)
}

func TestService_UpdateDeviceAccess_ReportsNotifyFailures(t *testing.T) {
	users := &MockUsers{}
	devices := &MockDevices{}
	mappings := &MockMappings{}
	fanout := &MockFanout{}

	users.On("GetByID", mock.Anything, int64(7)).Return(testUser(), nil)
	devices.On("GetByLocation", mock.Anything, "Door-A").Return(&domain.Device{ID: "dev-a", Location: "Door-A"}, nil)

	addRefs := []repository.DeviceRef{{ID: "dev-a", Location: "Door-A"}}
	mappings.On("BulkUpdate", mock.Anything, int64(7), addRefs, []repository.DeviceRef(nil)).
		Return([]string{"Door-A"}, []string{}, nil)
	fanout.On("PublishMany", mock.Anything, []string{"access/users/new/Door-A"}, mock.Anything).
		Return([]string{}, []string{"access/users/new/Door-A"})

	svc := newTestService(users, devices, mappings, fanout)
	result, err := svc.UpdateDeviceAccess(context.Background(), 7, []string{"Door-A"}, nil)

	// Mapping changes are durable even when no device could be told.
	require.NoError(t, err)
	assert.Equal(t, []string{"Door-A"}, result.Added)
	assert.Equal(t, []string{"access/users/new/Door-A"}, result.NotifyFailed)
}

func TestService_UpdateDeviceAccess_UserNotFound(t *testing.T) {
	users := &MockUsers{}
	users.On("GetByID", mock.Anything, int64(99)).Return(nil, domain.ErrUserNotFound)

	svc := newTestService(users, &MockDevices{}, &MockMappings{}, &MockFanout{})
	_, err := svc.UpdateDeviceAccess(context.Background(), 99, []string{"Door-A"}, nil)

	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestService_RemoveUserEverywhere(t *testing.T) {
	users := &MockUsers{}
	devices := &MockDevices{}
	mappings := &MockMappings{}
	fanout := &MockFanout{}

	users.On("GetByID", mock.Anything, int64(7)).Return(testUser(), nil)
	mappings.On("LocationsForUser", mock.Anything, int64(7)).Return([]string{"Door-A", "Door-B"}, nil)
	users.On("Delete", mock.Anything, int64(7)).Return(nil)
	fanout.On("PublishMany", mock.Anything,
		[]string{"access/users/delete/Door-A", "access/users/delete/Door-B"},
		removalPayload{Document: "12345678"},
	).Return([]string{"access/users/delete/Door-A", "access/users/delete/Door-B"}, []string{})

	svc := newTestService(users, devices, mappings, fanout)
	result, err := svc.RemoveUserEverywhere(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, []string{"Door-A", "Door-B"}, result.Removed)
	assert.Empty(t, result.NotifyFailed)
	users.AssertExpectations(t)
	fanout.AssertExpectations(t)
}

func TestService_RemoveUserEverywhere_NoMappings(t *testing.T) {
	users := &MockUsers{}
	mappings := &MockMappings{}
	fanout := &MockFanout{}

	users.On("GetByID", mock.Anything, int64(7)).Return(testUser(), nil)
	mappings.On("LocationsForUser", mock.Anything, int64(7)).Return([]string{}, nil)
	users.On("Delete", mock.Anything, int64(7)).Return(nil)

	svc := newTestService(users, &MockDevices{}, mappings, fanout)
	result, err := svc.RemoveUserEverywhere(context.Background(), 7)

	require.NoError(t, err)
	assert.Empty(t, result.Removed)
	fanout.AssertNotCalled(t, "PublishMany", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_RemoveUserEverywhere_DeleteFails(t *testing.T) {
	users := &MockUsers{}
	mappings := &MockMappings{}
	fanout := &MockFanout{}

	users.On("GetByID", mock.Anything, int64(7)).Return(testUser(), nil)
	mappings.On("LocationsForUser", mock.Anything, int64(7)).Return([]string{"Door-A"}, nil)
	users.On("Delete", mock.Anything, int64(7)).Return(domain.ErrPersistence)

	svc := newTestService(users, &MockDevices{}, mappings, fanout)
	_, err := svc.RemoveUserEverywhere(context.Background(), 7)

	assert.ErrorIs(t, err, domain.ErrPersistence)
	fanout.AssertNotCalled(t, "PublishMany", mock.Anything, mock.Anything, mock.Anything)
}
