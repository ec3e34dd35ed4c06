package jobs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/keithcsxyz/yt2mp3/internal/logger"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(filepath.Join(t.TempDir(), "test.log"), logger.LevelError, false)
	if err != nil {
		t.Fatal(err)
	}
	return log
}

func TestSweepRemovesOnlyExpired(t *testing.T) {
	dir := t.TempDir()
	log := newTestLogger(t)

	oldFile := filepath.Join(dir, "old.mp3")
	freshFile := filepath.Join(dir, "fresh.mp3")
	for _, f := range []string{oldFile, freshFile} {
		if err := os.WriteFile(f, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	twoHoursAgo := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(oldFile, twoHoursAgo, twoHoursAgo); err != nil {
		t.Fatal(err)
	}
	tenMinutesAgo := time.Now().Add(-10 * time.Minute)
	if err := os.Chtimes(freshFile, tenMinutesAgo, tenMinutesAgo); err != nil {
		t.Fatal(err)
	}

	removed, err := Sweep(dir, time.Hour, log)
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, expected 1", removed)
	}

	if _, err := os.Stat(oldFile); !os.IsNotExist(err) {
		t.Error("expired file should be gone")
	}
	if _, err := os.Stat(freshFile); err != nil {
		t.Error("fresh file should survive the sweep")
	}
}

func TestSweepSkipsDirectories(t *testing.T) {
	dir := t.TempDir()
	log := newTestLogger(t)

	sub := filepath.Join(dir, "subdir")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatal(err)
	}
	long := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(sub, long, long); err != nil {
		t.Fatal(err)
	}

	removed, err := Sweep(dir, time.Hour, log)
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if removed != 0 {
		t.Errorf("removed = %d, expected 0", removed)
	}
	if _, err := os.Stat(sub); err != nil {
		t.Error("directories must not be reaped")
	}
}

func TestSweepMissingDir(t *testing.T) {
	log := newTestLogger(t)
	if _, err := Sweep(filepath.Join(t.TempDir(), "missing"), time.Hour, log); err == nil {
		t.Fatal("expected an error for a missing directory")
	}
}
