package domain

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/voice-relay/internal/config"
	"github.com/Vovarama1992/voice-relay/internal/domain/stations"
	"github.com/Vovarama1992/voice-relay/internal/models"
	"github.com/Vovarama1992/voice-relay/internal/ports"
	"github.com/google/uuid"
	"go.uber.org/multierr"
)

// VoiceService runs store -> transcode -> recognize for one upload per call.
// Pipelines share nothing but the upload directory.
type VoiceService struct {
	cfg     *config.Config
	journal ports.UploadJournal // nil when disabled

	s1 *stations.S1StoreUpload
	s2 *stations.S2WebMtoWAV
	s3 *stations.S3Recognize

	log    *logger.ZapLogger
	events chan ports.StageEvent
}

func NewVoiceService(
	cfg *config.Config,
	journal ports.UploadJournal,
	s1 *stations.S1StoreUpload,
	s2 *stations.S2WebMtoWAV,
	s3 *stations.S3Recognize,
	log *logger.ZapLogger,
) *VoiceService {
	return &VoiceService{
		cfg:     cfg,
		journal: journal,
		s1:      s1,
		s2:      s2,
		s3:      s3,
		log:     log,
		events:  make(chan ports.StageEvent, 100),
	}
}

func (s *VoiceService) Events() <-chan ports.StageEvent { return s.events }

// SessionConfig is the fixed speech configuration for a mode.
func (s *VoiceService) SessionConfig(mode models.Mode) models.SessionConfig {
	cfg := models.SessionConfig{
		SubscriptionKey: s.cfg.SpeechKey,
		Region:          s.cfg.SpeechRegion,
		SourceLanguage:  s.cfg.RecognitionLanguage,
	}
	if mode == models.ModeTranslate {
		cfg.SourceLanguage = s.cfg.TranslateFrom
		cfg.TargetLanguages = []string{s.cfg.TranslateTo}
	}
	return cfg
}

// Process returns the display text, or a *Error describing the one failure
// that ended the pipeline.
func (s *VoiceService) Process(ctx context.Context, req ports.VoiceRequest) (text string, err error) {
	start := time.Now()
	run := &pipelineRun{
		svc:   s,
		mode:  req.Mode,
		room:  req.RoomID,
		stage: models.StageReceived,
	}

	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = run.fail(ctx, KindProcessing, MsgProcessingAudio, fmt.Errorf("panic: %v", r))
		}
		run.cleanup()
		s.log.Log(logger.LogEntry{
			Level:   "info",
			Message: "[DONE] pipeline finished",
			Fields: map[string]any{
				"uploadID": run.id.String(),
				"mode":     string(run.mode),
				"stage":    string(run.stage),
				"dur":      time.Since(start).String(),
			},
		})
	}()

	if req.Audio == nil {
		return "", run.fail(ctx, KindClientInput, MsgNoFile, nil)
	}

	up, err := s.s1.Run(ctx, req.Audio)
	if err != nil {
		return "", run.fail(ctx, KindProcessing, MsgProcessingAudio, err)
	}
	run.id = up.ID
	run.webmPath = up.Path
	s.journalInsert(ctx, run)
	run.move(ctx, models.StageStored)

	run.move(ctx, models.StageTranscoding)
	wav, err := s.s2.Run(ctx, up)
	if err != nil {
		return "", run.fail(ctx, KindTranscoding, MsgProcessingAudio, err)
	}
	run.wavPath = wav.Path
	run.move(ctx, models.StageTranscoded)

	run.move(ctx, models.StageRecognizing)
	text, err = s.s3.Run(ctx, wav, req.Mode, s.SessionConfig(req.Mode))
	if err != nil {
		if errors.Is(err, stations.ErrRecognitionFailed) {
			return "", run.fail(ctx, KindRecognition, MsgRecognition, err)
		}
		return "", run.fail(ctx, KindProcessing, MsgProcessingAudio, err)
	}
	run.move(ctx, models.StageSucceeded)

	return text, nil
}

func (s *VoiceService) journalInsert(ctx context.Context, run *pipelineRun) {
	if s.journal == nil {
		return
	}
	now := time.Now()
	err := s.journal.InsertUpload(ctx, &models.UploadRecord{
		ID:        run.id,
		Mode:      run.mode,
		WebMPath:  run.webmPath,
		Stage:     models.StageReceived,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		s.log.Log(logger.LogEntry{
			Level:   "warn",
			Message: "[JOURNAL] insert failed",
			Fields:  map[string]any{"uploadID": run.id.String()},
			Error:   err,
		})
	}
}

func (s *VoiceService) publish(ev ports.StageEvent) {
	if ev.RoomID == "" {
		return
	}
	select {
	case s.events <- ev:
	default:
		s.log.Log(logger.LogEntry{
			Level:   "warn",
			Message: "[EVENTS] buffer full, stage event dropped",
			Fields:  map[string]any{"room": ev.RoomID, "stage": string(ev.Stage)},
		})
	}
}

// pipelineRun is the state of one request's pipeline.
type pipelineRun struct {
	svc  *VoiceService
	id   uuid.UUID
	mode models.Mode
	room string

	stage     models.Stage
	errorKind Kind

	webmPath string
	wavPath  string
}

// move panics on an illegal transition; Process turns that into a processing error.
func (r *pipelineRun) move(ctx context.Context, next models.Stage) {
	if !r.stage.CanMove(next) {
		panic(fmt.Sprintf("illegal stage transition %s -> %s", r.stage, next))
	}
	r.stage = next

	r.svc.log.Log(logger.LogEntry{
		Level:   "info",
		Message: "[STAGE] " + string(next),
		Fields: map[string]any{
			"uploadID":  r.id.String(),
			"mode":      string(r.mode),
			"errorKind": string(r.errorKind),
		},
	})

	if r.svc.journal != nil && r.id != uuid.Nil {
		// wavPath stays empty until the transcoder produced a valid file
		if err := r.svc.journal.UpdateStage(ctx, r.id, next, r.wavPath, string(r.errorKind)); err != nil {
			r.svc.log.Log(logger.LogEntry{
				Level:   "warn",
				Message: "[JOURNAL] stage update failed",
				Fields:  map[string]any{"uploadID": r.id.String(), "stage": string(next)},
				Error:   err,
			})
		}
	}

	r.svc.publish(ports.StageEvent{
		RoomID:    r.room,
		UploadID:  r.id,
		Mode:      r.mode,
		Stage:     next,
		ErrorKind: string(r.errorKind),
	})
}

func (r *pipelineRun) fail(ctx context.Context, kind Kind, msg string, cause error) *Error {
	e := newError(kind, msg, cause)

	r.svc.log.Log(logger.LogEntry{
		Level:   "error",
		Message: "[FAIL] " + msg,
		Fields: map[string]any{
			"uploadID": r.id.String(),
			"stage":    string(r.stage),
			"kind":     string(kind),
		},
		Error: cause,
	})

	if !r.stage.Terminal() {
		r.errorKind = kind
		r.move(ctx, models.StageFailed)
	}
	return e
}

// cleanup drops both files once the run is over, unless uploads are kept.
func (r *pipelineRun) cleanup() {
	if r.svc.cfg.KeepUploads {
		return
	}

	var err error
	paths := []string{r.webmPath}
	if r.webmPath != "" {
		// a rejected transcoder output never reaches r.wavPath
		paths = append(paths, stations.WAVPath(r.webmPath))
	}
	for _, p := range paths {
		if p == "" {
			continue
		}
		if rerr := os.Remove(p); rerr != nil && !os.IsNotExist(rerr) {
			err = multierr.Append(err, rerr)
		}
	}
	if err != nil {
		r.svc.log.Log(logger.LogEntry{
			Level:   "warn",
			Message: "[CLEANUP] could not remove upload files",
			Fields:  map[string]any{"uploadID": r.id.String()},
			Error:   err,
		})
	}
}
