package stations

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/voice-relay/internal/models"
	"github.com/google/uuid"
)

// S1StoreUpload persists the raw browser recording before anything else touches it.
type S1StoreUpload struct {
	dir string
	log *logger.ZapLogger
	now func() time.Time
}

func NewS1StoreUpload(dir string, log *logger.ZapLogger) (*S1StoreUpload, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("[S1] create upload dir: %w", err)
	}
	return &S1StoreUpload{dir: dir, log: log, now: time.Now}, nil
}

func (s *S1StoreUpload) Run(ctx context.Context, src io.Reader) (*models.UploadedAudio, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id := uuid.New()
	created := s.now()

	// client filename is ignored on purpose: the extension is always .webm
	name := fmt.Sprintf("file-%d-%s.%s", created.UnixMilli(), id, models.FormatWebM)
	path := filepath.Join(s.dir, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o640)
	if err != nil {
		return nil, fmt.Errorf("[S1] create file: %w", err)
	}

	n, err := io.Copy(f, src)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("[S1] write file: %w", err)
	}

	s.log.Log(logger.LogEntry{
		Level:   "info",
		Message: "[S1][OK] upload stored",
		Fields: map[string]any{
			"uploadID": id.String(),
			"path":     path,
			"bytes":    n,
		},
	})

	return &models.UploadedAudio{
		ID:        id,
		Format:    models.FormatWebM,
		Path:      path,
		CreatedAt: created,
	}, nil
}
