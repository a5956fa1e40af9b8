package domain

import (
	"strings"
	"time"
)

// EventKind is the outcome reported by an edge device.
type EventKind string

const (
	EventAccepted EventKind = "accepted"
	EventDenied   EventKind = "denied"
)

// ParseEventKind maps the wire value to an EventKind.
func ParseEventKind(s string) (EventKind, bool) {
	switch EventKind(strings.ToLower(s)) {
	case EventAccepted:
		return EventAccepted, true
	case EventDenied:
		return EventDenied, true
	default:
		return "", false
	}
}

// UnknownIdentity is the sentinel edge devices send when a badge or face
// was read but could not be attributed to anyone.
const UnknownIdentity = "UNKNOWN"

// RawEvent is the wire shape devices submit. DeviceName carries the device
// location, not an internal id; ExternalIdentity is the person's document
// number when the device recognized one.
type RawEvent struct {
	ID               string `json:"id"`
	DeviceName       string `json:"deviceName"`
	Kind             string `json:"kind"`
	Timestamp        string `json:"timestamp"`
	ExternalIdentity string `json:"externalIdentity,omitempty"`
}

// AccessEvent is the persisted ledger record. ID is the caller-supplied
// token, kept opaque; the ledger's unique constraint on it carries dedup.
// UserID is nil for every denied event and for accepted events with no
// resolvable identity.
type AccessEvent struct {
	ID         string    `json:"id"`
	DeviceID   string    `json:"device_id"`
	UserID     *int64    `json:"user_id,omitempty"`
	Kind       EventKind `json:"kind"`
	OccurredAt time.Time `json:"occurred_at"`
}
