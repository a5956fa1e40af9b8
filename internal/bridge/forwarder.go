package bridge

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/saturnino-fabrica-de-software/custodia/internal/domain"
)

// KafkaWriter is the subset of *kafka.Writer the forwarder uses.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Envelope wraps a forwarded event with its source and type tag for
// downstream subscribers.
type Envelope struct {
	Source     string          `json:"source"`
	DetailType string          `json:"detail_type"`
	Detail     domain.RawEvent `json:"detail"`
}

const detailTypeAccessLog = "AccessLog"

// Forwarder republishes successfully ingested events on the general event
// stream. Duplicates are possible on retry; subscribers are expected to be
// idempotent.
type Forwarder struct {
	writer KafkaWriter
	source string
}

func NewForwarder(writer KafkaWriter, source string) *Forwarder {
	return &Forwarder{
		writer: writer,
		source: source,
	}
}

// NewWriter builds the kafka writer the forwarder publishes through.
func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}
}

func (f *Forwarder) Forward(ctx context.Context, event domain.RawEvent) error {
	body, err := json.Marshal(Envelope{
		Source:     f.source,
		DetailType: detailTypeAccessLog,
		Detail:     event,
	})
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.ID),
		Value: body,
	}

	if err := f.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("forward event %s: %w", event.ID, err)
	}

	return nil
}
