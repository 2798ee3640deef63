package stations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/voice-relay/internal/audio"
	"github.com/Vovarama1992/voice-relay/internal/models"
	"github.com/Vovarama1992/voice-relay/internal/ports"
)

var ErrTranscodeTimeout = errors.New("transcoding timed out")

type S2WebMtoWAV struct {
	conv    ports.AudioConverter
	timeout time.Duration
	log     *logger.ZapLogger
}

func NewS2WebMtoWAV(conv ports.AudioConverter, timeout time.Duration, log *logger.ZapLogger) *S2WebMtoWAV {
	return &S2WebMtoWAV{conv: conv, timeout: timeout, log: log}
}

// WAVPath derives the canonical sibling of a stored upload.
func WAVPath(webmPath string) string {
	return strings.TrimSuffix(webmPath, "."+models.FormatWebM) + "." + models.FormatWAV
}

// Run blocks until the converter signals completion. Nothing downstream may
// start unless it returns a nil error.
func (s *S2WebMtoWAV) Run(ctx context.Context, in *models.UploadedAudio) (*models.CanonicalAudio, error) {
	start := time.Now()
	dst := WAVPath(in.Path)

	tctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	select {
	case err, ok := <-s.conv.Convert(tctx, in.Path, dst):
		if !ok {
			return nil, fmt.Errorf("[S2] converter closed without a result")
		}
		if err != nil {
			return nil, fmt.Errorf("[S2] convert: %w", err)
		}
	case <-tctx.Done():
		return nil, fmt.Errorf("[S2] %w after %s", ErrTranscodeTimeout, s.timeout)
	}

	h, err := audio.ReadHeaderFile(dst)
	if err != nil {
		return nil, fmt.Errorf("[S2] check output: %w", err)
	}
	if !h.LinearPCM() {
		return nil, fmt.Errorf("[S2] output is not linear PCM (format=%d)", h.AudioFormat)
	}

	s.log.Log(logger.LogEntry{
		Level:   "info",
		Message: "[S2][OK] converted to wav",
		Fields: map[string]any{
			"uploadID":   in.ID.String(),
			"path":       dst,
			"sampleRate": h.SampleRate,
			"channels":   h.Channels,
			"approxSec":  fmt.Sprintf("%.1f", h.Duration()),
			"dur":        time.Since(start).String(),
		},
	})

	return &models.CanonicalAudio{
		ID:            in.ID,
		Path:          dst,
		SampleRate:    int(h.SampleRate),
		Channels:      int(h.Channels),
		BitsPerSample: int(h.BitsPerSample),
	}, nil
}
