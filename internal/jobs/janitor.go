package jobs

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/keithcsxyz/yt2mp3/internal/config"
	"github.com/keithcsxyz/yt2mp3/internal/logger"
)

// StartJanitor sweeps the artifact directory once immediately and then on
// every tick until ctx is cancelled. Artifacts older than the retention age
// are deleted; without the recurring sweep the directory grows without
// bound over the life of the process.
func StartJanitor(ctx context.Context, cfg *config.Config, log *logger.Logger) {
	go func() {
		sweepAndLog(cfg, log)

		ticker := time.NewTicker(cfg.SweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sweepAndLog(cfg, log)
			}
		}
	}()
}

func sweepAndLog(cfg *config.Config, log *logger.Logger) {
	removed, err := Sweep(cfg.DownloadDir, cfg.RetentionAge, log)
	if err != nil {
		log.Error("janitor: sweep failed: %v", err)
		return
	}
	if removed > 0 {
		log.Info("janitor: removed %d expired artifact(s)", removed)
	}
}

// Sweep deletes regular files in dir whose modification time is older than
// maxAge. A failure on one file is logged and does not stop the sweep.
func Sweep(dir string, maxAge time.Duration, log *logger.Logger) (int, error) {
	cutoff := time.Now().Add(-maxAge)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		if err := os.Remove(path); err != nil {
			log.Error("janitor: could not remove %s: %v", entry.Name(), err)
			continue
		}
		removed++
		log.Debug("janitor: removed %s", entry.Name())
	}

	return removed, nil
}
