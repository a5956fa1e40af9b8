package alert

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/saturnino-fabrica-de-software/custodia/internal/domain"
	"github.com/saturnino-fabrica-de-software/custodia/internal/settings"
)

type DeniedCounter interface {
	CountDenied(ctx context.Context, deviceID string, from, to time.Time) (int, error)
}

type SettingsResolver interface {
	Int(ctx context.Context, name string, deviceID *string) (int, bool, error)
}

type NoticePublisher interface {
	Publish(ctx context.Context, channel string, payload any) error
}

type StateStore interface {
	LastRaisedAt(ctx context.Context, deviceID string) (*time.Time, error)
	MarkRaised(ctx context.Context, deviceID string, raisedAt time.Time) error
}

// Engine decides whether a denied event pushes its device over the
// configured threshold. Counting always goes to the ledger, never process
// memory, so evaluations agree across restarts and concurrent ingests.
type Engine struct {
	counter  DeniedCounter
	settings SettingsResolver
	notices  NoticePublisher
	state    StateStore
	channel  string
	logger   *slog.Logger
	now      func() time.Time
}

func NewEngine(counter DeniedCounter, resolver SettingsResolver, notices NoticePublisher, state StateStore, channel string, logger *slog.Logger) *Engine {
	return &Engine{
		counter:  counter,
		settings: resolver,
		notices:  notices,
		state:    state,
		channel:  channel,
		logger:   logger,
		now:      time.Now,
	}
}

// Evaluate counts denied events for the device in the trailing window ending
// at occurredAt and raises an alert when count >= threshold. The threshold
// is inclusive. A device with no threshold or window configured in any scope
// silently opts out.
func (e *Engine) Evaluate(ctx context.Context, deviceID, deviceLocation string, occurredAt time.Time) (bool, error) {
	threshold, ok, err := e.settings.Int(ctx, settings.KeyMaxDeniedAttempts, &deviceID)
	if err != nil {
		return false, fmt.Errorf("resolve threshold: %w", err)
	}
	if !ok {
		return false, nil
	}

	windowSeconds, ok, err := e.settings.Int(ctx, settings.KeyWindowSeconds, &deviceID)
	if err != nil {
		return false, fmt.Errorf("resolve window: %w", err)
	}
	if !ok {
		return false, nil
	}

	windowStart := occurredAt.Add(-time.Duration(windowSeconds) * time.Second)

	count, err := e.counter.CountDenied(ctx, deviceID, windowStart, occurredAt)
	if err != nil {
		return false, fmt.Errorf("count denied events: %w", err)
	}

	if count < threshold {
		return false, nil
	}

	raisedAt := e.now().UTC()

	suppressed, err := e.inCooldown(ctx, deviceID, raisedAt)
	if err != nil {
		e.logger.Warn("cooldown check failed, raising anyway",
			slog.String("device_id", deviceID),
			slog.Any("error", err),
		)
	}
	if suppressed {
		return false, nil
	}

	notice := domain.AlertNotice{
		AlertType:      domain.AlertTypeDeniedThreshold,
		DeviceLocation: deviceLocation,
		DeniedCount:    count,
		Threshold:      threshold,
		WindowSeconds:  windowSeconds,
		PeriodStart:    windowStart,
		PeriodEnd:      occurredAt,
		RaisedAt:       raisedAt,
	}

	if err := e.notices.Publish(ctx, e.channel, notice); err != nil {
		// The notice was raised; delivery is best-effort.
		e.logger.Error("alert publish failed",
			slog.String("device", deviceLocation),
			slog.Any("error", err),
		)
	}

	if err := e.state.MarkRaised(ctx, deviceID, raisedAt); err != nil {
		e.logger.Warn("mark alert raised failed",
			slog.String("device_id", deviceID),
			slog.Any("error", err),
		)
	}

	e.logger.Info("alert raised",
		slog.String("device", deviceLocation),
		slog.Int("denied_count", count),
		slog.Int("threshold", threshold),
		slog.Int("window_seconds", windowSeconds),
	)

	return true, nil
}

// inCooldown reports whether a previous alert for the device is still inside
// the optional cooldown window. No cooldown configured means every breach
// re-raises, matching the stateless behavior operators already rely on.
func (e *Engine) inCooldown(ctx context.Context, deviceID string, now time.Time) (bool, error) {
	cooldown, ok, err := e.settings.Int(ctx, settings.KeyAlertCooldown, &deviceID)
	if err != nil {
		return false, err
	}
	if !ok || cooldown <= 0 {
		return false, nil
	}

	last, err := e.state.LastRaisedAt(ctx, deviceID)
	if err != nil {
		return false, err
	}
	if last == nil {
		return false, nil
	}

	return now.Before(last.Add(time.Duration(cooldown) * time.Second)), nil
}
