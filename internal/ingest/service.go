package ingest

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/saturnino-fabrica-de-software/custodia/internal/domain"
)

type LedgerRepository interface {
	Exists(ctx context.Context, id string) (bool, error)
	Insert(ctx context.Context, event *domain.AccessEvent) error
}

type DeviceResolver interface {
	GetIDByLocation(ctx context.Context, location string) (string, error)
}

type UserResolver interface {
	GetIDByDocument(ctx context.Context, document string) (int64, error)
}

type EventForwarder interface {
	Forward(ctx context.Context, event domain.RawEvent) error
}

type AlertEvaluator interface {
	Evaluate(ctx context.Context, deviceID, deviceLocation string, occurredAt time.Time) (bool, error)
}

// Service orchestrates one ingest: validate, dedupe, resolve identities,
// persist, then signal downstream consumers. Each call is independent; every
// guarantee lives in the database.
type Service struct {
	validator *Validator
	ledger    LedgerRepository
	devices   DeviceResolver
	users     UserResolver
	forwarder EventForwarder
	alerts    AlertEvaluator
	logger    *slog.Logger
}

func NewService(
	ledger LedgerRepository,
	devices DeviceResolver,
	users UserResolver,
	forwarder EventForwarder,
	alerts AlertEvaluator,
	logger *slog.Logger,
) *Service {
	return &Service{
		validator: NewValidator(),
		ledger:    ledger,
		devices:   devices,
		users:     users,
		forwarder: forwarder,
		alerts:    alerts,
		logger:    logger,
	}
}

// Ingest validates and durably records one access event. The returned error
// tells the caller whether the record was accepted; bridge and alert
// outcomes after a successful persist never surface here.
func (s *Service) Ingest(ctx context.Context, raw domain.RawEvent) (*domain.AccessEvent, error) {
	validated, err := s.validator.Validate(raw)
	if err != nil {
		return nil, err
	}

	exists, err := s.ledger.Exists(ctx, validated.ID)
	if err != nil {
		return nil, domain.ErrPersistence.WithError(err)
	}
	if exists {
		return nil, domain.ErrDuplicateEvent
	}

	deviceID, err := s.devices.GetIDByLocation(ctx, raw.DeviceName)
	if err != nil {
		return nil, err
	}

	userID, err := s.resolveUser(ctx, validated.Kind, raw.ExternalIdentity)
	if err != nil {
		return nil, err
	}

	event := &domain.AccessEvent{
		ID:         validated.ID,
		DeviceID:   deviceID,
		UserID:     userID,
		Kind:       validated.Kind,
		OccurredAt: validated.OccurredAt,
	}

	if err := s.ledger.Insert(ctx, event); err != nil {
		if errors.Is(err, domain.ErrDuplicateEvent) {
			return nil, err
		}
		return nil, domain.ErrPersistence.WithError(err)
	}

	// The record is durable from here on. Bridge and alert failures are
	// logged, never rolled back.
	if err := s.forwarder.Forward(ctx, raw); err != nil {
		s.logger.Error("event bridge forward failed",
			slog.String("event_id", raw.ID),
			slog.Any("error", err),
		)
	}

	if validated.Kind == domain.EventDenied {
		if _, err := s.alerts.Evaluate(ctx, deviceID, raw.DeviceName, validated.OccurredAt); err != nil {
			s.logger.Error("alert evaluation failed",
				slog.String("device", raw.DeviceName),
				slog.Any("error", err),
			)
		}
	}

	return event, nil
}

// resolveUser maps the external identity to a user id for accepted events.
// Denied events are never attributed to a person, and an empty or UNKNOWN
// identity means "no identity", not an error.
func (s *Service) resolveUser(ctx context.Context, kind domain.EventKind, externalIdentity string) (*int64, error) {
	if kind != domain.EventAccepted {
		return nil, nil
	}

	identity := strings.TrimSpace(externalIdentity)
	if identity == "" || strings.EqualFold(identity, domain.UnknownIdentity) {
		return nil, nil
	}

	userID, err := s.users.GetIDByDocument(ctx, identity)
	if err != nil {
		return nil, err
	}

	return &userID, nil
}
