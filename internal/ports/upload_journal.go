package ports

import (
	"context"

	"github.com/Vovarama1992/voice-relay/internal/models"
	"github.com/google/uuid"
)

type UploadJournal interface {
	InsertUpload(ctx context.Context, rec *models.UploadRecord) error
	UpdateStage(ctx context.Context, id uuid.UUID, stage models.Stage, wavPath, errorKind string) error
	GetUpload(ctx context.Context, id uuid.UUID) (*models.UploadRecord, error)
}
