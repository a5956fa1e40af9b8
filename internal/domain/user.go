package domain

import "time"

// AccessUser is a person enrolled on one or more edge devices. Document is
// the external identity devices report (a national id string); FaceEmbedding
// is opaque to the core and only relayed to devices during enrollment.
type AccessUser struct {
	ID            int64      `json:"id"`
	FirstName     string     `json:"first_name,omitempty"`
	LastName      string     `json:"last_name,omitempty"`
	Document      string     `json:"document"`
	RFID          string     `json:"rfid,omitempty"`
	ImageRef      string     `json:"image_ref,omitempty"`
	FaceEmbedding string     `json:"face_embedding,omitempty"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
}
