package infra

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Vovarama1992/voice-relay/internal/models"
	"github.com/Vovarama1992/voice-relay/internal/ports"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uploadJournalSchema = `
	CREATE TABLE IF NOT EXISTS voice_upload (
		id         uuid PRIMARY KEY,
		mode       text        NOT NULL,
		webm_path  text        NOT NULL,
		wav_path   text,
		stage      text        NOT NULL,
		error_kind text,
		created_at timestamptz NOT NULL DEFAULT now(),
		updated_at timestamptz NOT NULL DEFAULT now()
	)
`

type PostgresUploadJournal struct {
	pool *pgxpool.Pool
}

func NewPostgresUploadJournal(pool *pgxpool.Pool) ports.UploadJournal {
	return &PostgresUploadJournal{pool: pool}
}

// EnsureUploadJournalSchema creates the journal table when missing.
func EnsureUploadJournalSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, uploadJournalSchema); err != nil {
		return fmt.Errorf("create voice_upload: %w", err)
	}
	return nil
}

func (r *PostgresUploadJournal) InsertUpload(ctx context.Context, rec *models.UploadRecord) error {
	query := `
		INSERT INTO voice_upload (id, mode, webm_path, stage, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
	`
	_, err := r.pool.Exec(ctx, query,
		rec.ID.String(),
		string(rec.Mode),
		rec.WebMPath,
		string(rec.Stage),
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert upload: %w", err)
	}
	return nil
}

func (r *PostgresUploadJournal) UpdateStage(
	ctx context.Context,
	id uuid.UUID,
	stage models.Stage,
	wavPath string,
	errorKind string,
) error {

	query := `
		UPDATE voice_upload
		SET stage      = $2,
		    wav_path   = COALESCE(NULLIF($3, ''), wav_path),
		    error_kind = COALESCE(NULLIF($4, ''), error_kind),
		    updated_at = $5
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, id.String(), string(stage), wavPath, errorKind, time.Now())
	if err != nil {
		return fmt.Errorf("update upload stage: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update upload stage: no upload %s", id)
	}
	return nil
}

func (r *PostgresUploadJournal) GetUpload(ctx context.Context, id uuid.UUID) (*models.UploadRecord, error) {
	query := `
		SELECT id, mode, webm_path, wav_path, stage, error_kind, created_at, updated_at
		FROM voice_upload
		WHERE id = $1
	`

	var (
		rec   models.UploadRecord
		rawID string
		mode  string
		stage string
	)
	err := r.pool.QueryRow(ctx, query, id.String()).Scan(
		&rawID,
		&mode,
		&rec.WebMPath,
		&rec.WAVPath,
		&stage,
		&rec.ErrorKind,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get upload: %w", err)
	}

	rec.ID, err = uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("get upload: bad id %q: %w", rawID, err)
	}
	rec.Mode = models.Mode(mode)
	rec.Stage = models.Stage(stage)
	return &rec, nil
}
