package domain

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Vovarama1992/voice-relay/internal/testutil"
)

func touch(t *testing.T, path string, mod time.Time) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0o640); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, mod, mod); err != nil {
		t.Fatal(err)
	}
}

func TestSweepOnceRemovesOnlyExpiredAudio(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	touch(t, filepath.Join(dir, "old.webm"), now.Add(-2*time.Hour))
	touch(t, filepath.Join(dir, "old.wav"), now.Add(-2*time.Hour))
	touch(t, filepath.Join(dir, "fresh.webm"), now.Add(-time.Minute))
	touch(t, filepath.Join(dir, "notes.txt"), now.Add(-48*time.Hour))

	s := NewSweeper(dir, time.Hour, time.Minute, testutil.NopLogger())
	s.now = func() time.Time { return now }

	n, err := s.SweepOnce()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 removed, got %d", n)
	}
	for name, want := range map[string]bool{"old.webm": false, "old.wav": false, "fresh.webm": true, "notes.txt": true} {
		_, err := os.Stat(filepath.Join(dir, name))
		if exists := err == nil; exists != want {
			t.Errorf("%s: expected exists=%v", name, want)
		}
	}
}

func TestSweepOnceMissingDir(t *testing.T) {
	s := NewSweeper(filepath.Join(t.TempDir(), "nope"), time.Hour, time.Minute, testutil.NopLogger())
	if n, err := s.SweepOnce(); err != nil || n != 0 {
		t.Fatalf("expected (0, nil), got (%d, %v)", n, err)
	}
}

func TestSweeperRunStopsWithContext(t *testing.T) {
	s := NewSweeper(t.TempDir(), time.Hour, 5*time.Millisecond, testutil.NopLogger())
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	if err := s.Run(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
