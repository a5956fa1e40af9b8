package enrollment

import (
	"context"
	"log/slog"

	"github.com/saturnino-fabrica-de-software/custodia/internal/domain"
	"github.com/saturnino-fabrica-de-software/custodia/internal/notify"
	"github.com/saturnino-fabrica-de-software/custodia/internal/repository"
)

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.AccessUser, error)
	Delete(ctx context.Context, id int64) error
}

type DeviceRepository interface {
	GetByLocation(ctx context.Context, location string) (*domain.Device, error)
}

type MappingRepository interface {
	BulkUpdate(ctx context.Context, userID int64, add, remove []repository.DeviceRef) (added, removed []string, err error)
	LocationsForUser(ctx context.Context, userID int64) ([]string, error)
}

type ChannelFanout interface {
	PublishMany(ctx context.Context, channels []string, payload any) (published, failed []string)
}

// Service keeps edge devices in sync with user enrollment changes. Mapping
// updates are durable first; device notifications are fired afterwards and
// reported as a partition so callers see partial completion.
type Service struct {
	users    UserRepository
	devices  DeviceRepository
	mappings MappingRepository
	fanout   ChannelFanout
	logger   *slog.Logger
}

func NewService(
	users UserRepository,
	devices DeviceRepository,
	mappings MappingRepository,
	fanout ChannelFanout,
	logger *slog.Logger,
) *Service {
	return &Service{
		users:    users,
		devices:  devices,
		mappings: mappings,
		fanout:   fanout,
		logger:   logger,
	}
}

// userPayload is what edge devices need to enroll a user locally.
type userPayload struct {
	ID            int64  `json:"id"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Document      string `json:"document"`
	RFID          string `json:"rfid"`
	ImageRef      string `json:"image_ref"`
	FaceEmbedding string `json:"face_embedding"`
}

type removalPayload struct {
	Document string `json:"document"`
}

// Result reports which device locations were updated and which notifications
// could not be delivered.
type Result struct {
	Added        []string `json:"added"`
	Removed      []string `json:"removed"`
	NotifyFailed []string `json:"notify_failed,omitempty"`
}

// UpdateDeviceAccess grants and revokes a user's access on the named device
// locations. Unknown locations are skipped with a warning, matching operator
// expectations: a typo should not abort the rest of the batch.
func (s *Service) UpdateDeviceAccess(ctx context.Context, userID int64, addLocations, removeLocations []string) (*Result, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	add := s.resolveRefs(ctx, addLocations)
	remove := s.resolveRefs(ctx, removeLocations)

	added, removed, err := s.mappings.BulkUpdate(ctx, userID, add, remove)
	if err != nil {
		return nil, domain.ErrPersistence.WithError(err)
	}

	result := &Result{Added: added, Removed: removed}

	if len(removed) > 0 {
		channels := make([]string, 0, len(removed))
		for _, loc := range removed {
			channels = append(channels, notify.UserRemovedChannel(loc))
		}
		_, failed := s.fanout.PublishMany(ctx, channels, removalPayload{Document: user.Document})
		result.NotifyFailed = append(result.NotifyFailed, failed...)
	}

	if len(added) > 0 {
		channels := make([]string, 0, len(added))
		for _, loc := range added {
			channels = append(channels, notify.UserAddedChannel(loc))
		}
		_, failed := s.fanout.PublishMany(ctx, channels, userInfo(user))
		result.NotifyFailed = append(result.NotifyFailed, failed...)
	}

	return result, nil
}

// RemoveUserEverywhere deletes the user and tells every device that knew
// them to drop their enrollment. The delete is durable before any device
// hears about it.
func (s *Service) RemoveUserEverywhere(ctx context.Context, userID int64) (*Result, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	locations, err := s.mappings.LocationsForUser(ctx, userID)
	if err != nil {
		return nil, domain.ErrPersistence.WithError(err)
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		return nil, err
	}

	result := &Result{Removed: locations}

	if len(locations) > 0 {
		channels := make([]string, 0, len(locations))
		for _, loc := range locations {
			channels = append(channels, notify.UserRemovedChannel(loc))
		}
		_, failed := s.fanout.PublishMany(ctx, channels, removalPayload{Document: user.Document})
		result.NotifyFailed = failed
	}

	return result, nil
}

func (s *Service) resolveRefs(ctx context.Context, locations []string) []repository.DeviceRef {
	var refs []repository.DeviceRef
	for _, loc := range locations {
		device, err := s.devices.GetByLocation(ctx, loc)
		if err != nil {
			s.logger.Warn("device location not found, skipping",
				slog.String("location", loc),
				slog.Any("error", err),
			)
			continue
		}
		refs = append(refs, repository.DeviceRef{ID: device.ID, Location: device.Location})
	}
	return refs
}

func userInfo(user *domain.AccessUser) userPayload {
	return userPayload{
		ID:            user.ID,
		FirstName:     user.FirstName,
		LastName:      user.LastName,
		Document:      user.Document,
		RFID:          user.RFID,
		ImageRef:      user.ImageRef,
		FaceEmbedding: user.FaceEmbedding,
	}
}
