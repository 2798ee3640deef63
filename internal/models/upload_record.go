package models

import (
	"time"

	"github.com/google/uuid"
)

// UploadRecord is the journal row for one pipeline run. It never holds the transcript.
type UploadRecord struct {
	ID        uuid.UUID `db:"id"        json:"id"`
	Mode      Mode      `db:"mode"      json:"mode"`
	WebMPath  string    `db:"webm_path" json:"-"`
	WAVPath   *string   `db:"wav_path"  json:"-"` // nullable until transcoded
	Stage     Stage     `db:"stage"     json:"stage"`
	ErrorKind *string   `db:"error_kind" json:"errorKind,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}
