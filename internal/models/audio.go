package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	FormatWebM = "webm"
	FormatWAV  = "wav"
)

// UploadedAudio is the raw browser recording as stored by the ingestion station.
type UploadedAudio struct {
	ID        uuid.UUID
	Format    string // always FormatWebM
	Path      string
	CreatedAt time.Time
}

// CanonicalAudio is the 16 kHz mono linear-PCM WAV produced from an UploadedAudio.
type CanonicalAudio struct {
	ID            uuid.UUID
	Path          string
	SampleRate    int
	Channels      int
	BitsPerSample int
}
