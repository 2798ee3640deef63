package stations

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/voice-relay/internal/models"
	"github.com/Vovarama1992/voice-relay/internal/ports"
	"github.com/Vovarama1992/voice-relay/internal/preview"
)

// ErrRecognitionFailed means the engine answered, but not with usable speech.
var ErrRecognitionFailed = errors.New("recognition failed")

type S3Recognize struct {
	engine  ports.SpeechEngine
	timeout time.Duration
	log     *logger.ZapLogger
}

func NewS3Recognize(engine ports.SpeechEngine, timeout time.Duration, log *logger.ZapLogger) *S3Recognize {
	return &S3Recognize{engine: engine, timeout: timeout, log: log}
}

// Run performs exactly one recognize-once pass. The session is closed on every
// path once it has been created, including panics raised by the engine.
func (s *S3Recognize) Run(
	ctx context.Context,
	in *models.CanonicalAudio,
	mode models.Mode,
	cfg models.SessionConfig,
) (string, error) {

	wav, err := os.ReadFile(in.Path)
	if err != nil {
		return "", fmt.Errorf("[S3] read wav: %w", err)
	}

	var rec ports.Recognizer
	switch mode {
	case models.ModeTranslate:
		if len(cfg.TargetLanguages) != 1 {
			return "", fmt.Errorf("[S3] translation needs exactly one target language, got %d", len(cfg.TargetLanguages))
		}
		rec, err = s.engine.NewTranslationRecognizer(cfg, wav)
	default:
		rec, err = s.engine.NewSpeechRecognizer(cfg, wav)
	}
	if err != nil {
		return "", fmt.Errorf("[S3] build recognizer: %w", err)
	}

	defer func() {
		if cerr := rec.Close(); cerr != nil {
			s.log.Log(logger.LogEntry{
				Level:   "warn",
				Message: "[S3] recognizer close failed",
				Error:   cerr,
			})
		}
	}()

	rctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var res models.RecognitionResult
	select {
	case r, ok := <-rec.RecognizeOnce(rctx):
		if !ok {
			return "", fmt.Errorf("%w: engine closed without a result", ErrRecognitionFailed)
		}
		res = r
	case <-rctx.Done():
		return "", fmt.Errorf("%w: no result after %s", ErrRecognitionFailed, s.timeout)
	}

	s.log.Log(logger.LogEntry{
		Level:   "info",
		Message: "[S3] result",
		Fields: map[string]any{
			"uploadID": in.ID.String(),
			"mode":     string(mode),
			"reason":   res.Reason.String(),
			"text":     preview.Text(res.Text, 120),
		},
	})

	switch {
	case mode == models.ModeTranslate && res.Reason == models.ReasonTranslatedSpeech:
		target := cfg.TargetLanguages[0]
		text, ok := res.Translations[target]
		if !ok {
			return "", fmt.Errorf("%w: no translation for %q", ErrRecognitionFailed, target)
		}
		return text, nil
	case mode != models.ModeTranslate && res.Reason == models.ReasonRecognizedSpeech:
		return res.Text, nil
	}

	return "", fmt.Errorf("%w: reason=%s details=%q", ErrRecognitionFailed, res.Reason, res.ErrorDetails)
}
