package domain

import "time"

// Device is owned by the device registry; the core only reads it to resolve
// a location to its id.
type Device struct {
	ID       string     `json:"id"`
	Location string     `json:"location"`
	Status   string     `json:"status,omitempty"`
	LastSync *time.Time `json:"last_sync,omitempty"`
}
