package settings

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/saturnino-fabrica-de-software/custodia/internal/domain"
)

// Setting names the alert engine reads.
const (
	KeyMaxDeniedAttempts = "max_denied_attempts"
	KeyWindowSeconds     = "window_seconds"
	KeyAlertCooldown     = "alert_cooldown_seconds"
)

// Parameter bounds carried over from the administrative API.
const (
	minThreshold = 1
	maxThreshold = 1000
	minWindow    = 30
	maxWindow    = 86400
)

type ConfigurationGetter interface {
	Get(ctx context.Context, name string, deviceID *string) (string, bool, error)
	UpdateValue(ctx context.Context, name, value string, deviceID *string) (bool, error)
}

// Resolver looks up named settings with device-then-global fallback. It
// never caches; the alert engine wants the freshest value every evaluation.
type Resolver struct {
	configs ConfigurationGetter
}

func NewResolver(configs ConfigurationGetter) *Resolver {
	return &Resolver{configs: configs}
}

// Int resolves a setting and coerces it to an integer. A setting absent in
// both scopes is reported as ok=false, not an error; a present but
// non-numeric value is an error.
func (r *Resolver) Int(ctx context.Context, name string, deviceID *string) (int, bool, error) {
	raw, ok, err := r.configs.Get(ctx, name, deviceID)
	if err != nil {
		return 0, false, err
	}
	if !ok {
		return 0, false, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("setting %s is not numeric: %q", name, raw)
	}

	return value, true, nil
}

// AlertParameters holds the pair of settings the alert engine reads. Nil
// means the setting is absent in every scope.
type AlertParameters struct {
	MaxDeniedAttempts *int `json:"max_denied_attempts"`
	WindowSeconds     *int `json:"window_seconds"`
}

func (r *Resolver) Parameters(ctx context.Context, deviceID *string) (AlertParameters, error) {
	var params AlertParameters

	if v, ok, err := r.Int(ctx, KeyMaxDeniedAttempts, deviceID); err != nil {
		return params, err
	} else if ok {
		params.MaxDeniedAttempts = &v
	}

	if v, ok, err := r.Int(ctx, KeyWindowSeconds, deviceID); err != nil {
		return params, err
	} else if ok {
		params.WindowSeconds = &v
	}

	return params, nil
}

// UpdateParameters validates and writes both alert settings in the given
// scope.
func (r *Resolver) UpdateParameters(ctx context.Context, maxDenied, windowSeconds int, deviceID *string) error {
	if maxDenied < minThreshold || maxDenied > maxThreshold {
		return domain.ErrInvalidParameters.WithError(
			fmt.Errorf("max_denied_attempts must be between %d and %d", minThreshold, maxThreshold))
	}
	if windowSeconds < minWindow || windowSeconds > maxWindow {
		return domain.ErrInvalidParameters.WithError(
			fmt.Errorf("window_seconds must be between %d and %d", minWindow, maxWindow))
	}

	updatedThreshold, err := r.configs.UpdateValue(ctx, KeyMaxDeniedAttempts, strconv.Itoa(maxDenied), deviceID)
	if err != nil {
		return err
	}

	updatedWindow, err := r.configs.UpdateValue(ctx, KeyWindowSeconds, strconv.Itoa(windowSeconds), deviceID)
	if err != nil {
		return err
	}

	if !updatedThreshold && !updatedWindow {
		return domain.ErrSettingNotFound
	}
	if updatedThreshold != updatedWindow {
		return domain.ErrInternal.WithError(errors.New("alert parameters partially updated"))
	}

	return nil
}
