package domain

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/voice-relay/internal/models"
)

// Sweeper removes recordings left in the upload directory longer than ttl:
// kept uploads and anything orphaned by a crash mid-pipeline.
type Sweeper struct {
	dir      string
	ttl      time.Duration
	interval time.Duration
	log      *logger.ZapLogger
	now      func() time.Time
}

func NewSweeper(dir string, ttl, interval time.Duration, log *logger.ZapLogger) *Sweeper {
	return &Sweeper{dir: dir, ttl: ttl, interval: interval, log: log, now: time.Now}
}

func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Log(logger.LogEntry{Level: "info", Message: "[SWEEP][STOP]"})
			return nil
		case <-ticker.C:
			if _, err := s.SweepOnce(); err != nil {
				s.log.Log(logger.LogEntry{
					Level:   "warn",
					Message: "[SWEEP] failed",
					Error:   err,
				})
			}
		}
	}
}

// SweepOnce deletes expired .webm/.wav files and reports how many went.
func (s *Sweeper) SweepOnce() (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	cutoff := s.now().Add(-s.ttl)
	removed := 0

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext != "."+models.FormatWebM && ext != "."+models.FormatWAV {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue // raced with pipeline cleanup
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil && !os.IsNotExist(err) {
			return removed, err
		}
		removed++
	}

	if removed > 0 {
		s.log.Log(logger.LogEntry{
			Level:   "info",
			Message: "[SWEEP] removed expired uploads",
			Fields:  map[string]any{"count": removed, "dir": s.dir},
		})
	}
	return removed, nil
}
