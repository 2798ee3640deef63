package infra

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/voice-relay/internal/audio"
	"github.com/Vovarama1992/voice-relay/internal/ports"
	"github.com/Vovarama1992/voice-relay/internal/preview"
)

const maxStderrPreview = 300

// FFmpegConverter shells out to ffmpeg; the codec work stays in ffmpeg.
type FFmpegConverter struct {
	bin string
	log *logger.ZapLogger
}

func NewFFmpegConverter(bin string, log *logger.ZapLogger) ports.AudioConverter {
	return &FFmpegConverter{bin: bin, log: log}
}

func ffmpegArgs(src, dst string) []string {
	return []string{
		"-loglevel", "error",
		"-y",
		"-i", src,
		"-vn",
		"-ac", fmt.Sprint(audio.CanonicalChannels),
		"-ar", fmt.Sprint(audio.CanonicalSampleRate),
		"-c:a", "pcm_s16le",
		"-f", "wav",
		dst,
	}
}

func (c *FFmpegConverter) Convert(ctx context.Context, src, dst string) <-chan error {
	done := make(chan error, 1)

	go func() {
		defer close(done)
		start := time.Now()

		cmd := exec.CommandContext(ctx, c.bin, ffmpegArgs(src, dst)...)
		var stderr bytes.Buffer
		cmd.Stderr = &stderr

		if err := cmd.Run(); err != nil {
			_ = os.Remove(dst)
			msg := strings.TrimSpace(stderr.String())
			c.log.Log(logger.LogEntry{
				Level:   "error",
				Message: "[FFMPEG][ERR]",
				Fields: map[string]any{
					"src":    src,
					"stderr": preview.Text(msg, maxStderrPreview),
				},
				Error: err,
			})
			if msg != "" {
				done <- fmt.Errorf("ffmpeg: %w: %s", err, preview.Text(msg, maxStderrPreview))
				return
			}
			done <- fmt.Errorf("ffmpeg: %w", err)
			return
		}

		c.log.Log(logger.LogEntry{
			Level:   "info",
			Message: "[FFMPEG][OK]",
			Fields:  map[string]any{"dst": dst, "dur": time.Since(start).String()},
		})
		done <- nil
	}()

	return done
}
