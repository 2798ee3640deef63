// Package testutil holds fakes for the external engines the pipeline talks to.
package testutil

import (
	"context"
	"os"
	"sync"
	"sync/atomic"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/voice-relay/internal/audio"
	"github.com/Vovarama1992/voice-relay/internal/models"
	"github.com/Vovarama1992/voice-relay/internal/ports"
	"go.uber.org/zap"
)

// NopLogger discards everything.
func NopLogger() *logger.ZapLogger {
	return logger.NewZapLogger(zap.NewNop().Sugar())
}

// SilenceWAV is one second of canonical silence.
func SilenceWAV() []byte {
	return audio.EncodePCM16(make([]byte, 2*audio.CanonicalSampleRate), audio.CanonicalSampleRate, audio.CanonicalChannels)
}

// FakeConverter writes WAV to dst, or fails with Err.
type FakeConverter struct {
	Err   error
	WAV   []byte
	calls atomic.Int32
}

func (c *FakeConverter) Convert(_ context.Context, _, dst string) <-chan error {
	c.calls.Add(1)
	done := make(chan error, 1)
	go func() {
		defer close(done)
		if c.Err != nil {
			done <- c.Err
			return
		}
		wav := c.WAV
		if wav == nil {
			wav = SilenceWAV()
		}
		done <- os.WriteFile(dst, wav, 0o640)
	}()
	return done
}

func (c *FakeConverter) Calls() int { return int(c.calls.Load()) }

// FakeEngine hands out recognizers that answer with Result and counts
// how many sessions were created and released.
type FakeEngine struct {
	Result   models.RecognitionResult
	BuildErr error
	Hang     bool
	Panic    bool

	created atomic.Int32
	closed  atomic.Int32

	mu      sync.Mutex
	configs []models.SessionConfig
	kinds   []string
}

func (e *FakeEngine) NewSpeechRecognizer(cfg models.SessionConfig, wav []byte) (ports.Recognizer, error) {
	return e.build("speech", cfg)
}

func (e *FakeEngine) NewTranslationRecognizer(cfg models.SessionConfig, wav []byte) (ports.Recognizer, error) {
	return e.build("translation", cfg)
}

func (e *FakeEngine) build(kind string, cfg models.SessionConfig) (ports.Recognizer, error) {
	e.mu.Lock()
	e.configs = append(e.configs, cfg)
	e.kinds = append(e.kinds, kind)
	e.mu.Unlock()

	if e.BuildErr != nil {
		return nil, e.BuildErr
	}
	e.created.Add(1)
	return &fakeRecognizer{engine: e}, nil
}

func (e *FakeEngine) Created() int { return int(e.created.Load()) }
func (e *FakeEngine) Closed() int  { return int(e.closed.Load()) }

// Attempts counts constructor calls, including failed ones.
func (e *FakeEngine) Attempts() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.configs)
}

// Last returns the kind ("speech" or "translation") and config of the latest session.
func (e *FakeEngine) Last() (string, models.SessionConfig) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.configs) == 0 {
		return "", models.SessionConfig{}
	}
	return e.kinds[len(e.kinds)-1], e.configs[len(e.configs)-1]
}

type fakeRecognizer struct {
	engine *FakeEngine
}

func (r *fakeRecognizer) RecognizeOnce(ctx context.Context) <-chan models.RecognitionResult {
	if r.engine.Panic {
		panic("fake engine exploded")
	}
	out := make(chan models.RecognitionResult, 1)
	if r.engine.Hang {
		go func() {
			<-ctx.Done()
			close(out)
		}()
		return out
	}
	out <- r.engine.Result
	close(out)
	return out
}

func (r *fakeRecognizer) Close() error {
	r.engine.closed.Add(1)
	return nil
}
