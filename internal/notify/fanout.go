package notify

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/saturnino-fabrica-de-software/custodia/internal/domain"
)

// Fanout publishes a payload to one or many named channels. Targets fail
// independently; one bad channel never blocks the rest, and nothing here
// retries.
type Fanout struct {
	publisher Publisher
	logger    *slog.Logger
}

func NewFanout(publisher Publisher, logger *slog.Logger) *Fanout {
	return &Fanout{
		publisher: publisher,
		logger:    logger,
	}
}

// Publish marshals the payload and publishes it to a single channel.
func (f *Fanout) Publish(ctx context.Context, channel string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return domain.ErrNotifyFailed.WithError(err)
	}

	if err := f.publisher.Publish(ctx, channel, body); err != nil {
		return domain.ErrNotifyFailed.WithError(err)
	}

	return nil
}

// PublishMany publishes the same payload to every channel and returns the
// partition of successes and failures, preserving input order within each
// slice. Failures are logged, never raised.
func (f *Fanout) PublishMany(ctx context.Context, channels []string, payload any) (published, failed []string) {
	body, err := json.Marshal(payload)
	if err != nil {
		f.logger.Error("fanout payload not serializable", slog.Any("error", err))
		return nil, append(failed, channels...)
	}

	for _, channel := range channels {
		if err := f.publisher.Publish(ctx, channel, body); err != nil {
			f.logger.Error("fanout target failed",
				slog.String("channel", channel),
				slog.Any("error", err),
			)
			failed = append(failed, channel)
			continue
		}
		published = append(published, channel)
	}

	return published, failed
}
