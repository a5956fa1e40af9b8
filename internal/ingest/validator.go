package ingest

import (
	"fmt"
	"strings"
	"time"

	"github.com/saturnino-fabrica-de-software/custodia/internal/domain"
)

// timestampLayouts the validator accepts: RFC 3339 (trailing Z or numeric
// offset) and the bare ISO form some devices send, taken as UTC.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// Validator checks the shape of a raw event before anything touches the
// database. No side effects.
type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// ValidatedEvent carries the parsed fields the orchestrator needs.
type ValidatedEvent struct {
	ID         string
	Kind       domain.EventKind
	OccurredAt time.Time
}

func (v *Validator) Validate(raw domain.RawEvent) (ValidatedEvent, error) {
	var out ValidatedEvent

	// The id is an opaque caller-supplied token; only presence is checked.
	// Uniqueness is the ledger's job.
	if strings.TrimSpace(raw.ID) == "" {
		return out, domain.ErrInvalidEvent.WithError(fmt.Errorf("missing field 'id'"))
	}

	if strings.TrimSpace(raw.DeviceName) == "" {
		return out, domain.ErrInvalidEvent.WithError(fmt.Errorf("missing field 'deviceName'"))
	}

	if strings.TrimSpace(raw.Kind) == "" {
		return out, domain.ErrInvalidEvent.WithError(fmt.Errorf("missing field 'kind'"))
	}

	kind, ok := domain.ParseEventKind(raw.Kind)
	if !ok {
		return out, domain.ErrInvalidEvent.WithError(fmt.Errorf("unknown event kind: %q", raw.Kind))
	}

	if strings.TrimSpace(raw.Timestamp) == "" {
		return out, domain.ErrInvalidEvent.WithError(fmt.Errorf("missing field 'timestamp'"))
	}

	occurredAt, err := parseTimestamp(raw.Timestamp)
	if err != nil {
		return out, domain.ErrInvalidEvent.WithError(err)
	}

	out.ID = raw.ID
	out.Kind = kind
	out.OccurredAt = occurredAt
	return out, nil
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp: %q", s)
}
