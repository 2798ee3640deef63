package ports

import (
	"context"

	"github.com/Vovarama1992/voice-relay/internal/models"
)

// SpeechEngine builds recognition sessions over an in-memory WAV buffer.
type SpeechEngine interface {
	NewSpeechRecognizer(cfg models.SessionConfig, wav []byte) (Recognizer, error)
	NewTranslationRecognizer(cfg models.SessionConfig, wav []byte) (Recognizer, error)
}

// Recognizer is one live session. RecognizeOnce yields exactly one result;
// Close releases the session and may be called more than once.
type Recognizer interface {
	RecognizeOnce(ctx context.Context) <-chan models.RecognitionResult
	Close() error
}
