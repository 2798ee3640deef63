package ports

import (
	"context"
	"io"

	"github.com/Vovarama1992/voice-relay/internal/models"
	"github.com/google/uuid"
)

type StageEvent struct {
	RoomID    string
	UploadID  uuid.UUID
	Mode      models.Mode
	Stage     models.Stage
	ErrorKind string
}

// VoiceRequest is one upload. Audio is nil when the client sent no file.
type VoiceRequest struct {
	Mode   models.Mode
	Audio  io.Reader
	RoomID string
}

type VoiceProcessor interface {
	Process(ctx context.Context, req VoiceRequest) (string, error)
	Events() <-chan StageEvent
}
