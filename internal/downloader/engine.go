package downloader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/segmentio/ksuid"

	"github.com/keithcsxyz/yt2mp3/internal/config"
	"github.com/keithcsxyz/yt2mp3/internal/logger"
	"github.com/keithcsxyz/yt2mp3/internal/models"
)

// ProgressFunc receives the coarse stage milestones of a running job. The
// values are caller-side announcements, not measured byte progress.
type ProgressFunc func(progress int, message string)

// Runner drives one URL through resolve, download, locate and promote.
type Runner struct {
	cfg      *config.Config
	ex       Extractor
	resolver *Resolver
	log      *logger.Logger

	// Serializes final-name reservation so two jobs with the same
	// sanitized title cannot claim the same path.
	renameMu sync.Mutex
}

func NewRunner(cfg *config.Config, ex Extractor, log *logger.Logger) *Runner {
	return &Runner{
		cfg:      cfg,
		ex:       ex,
		resolver: NewResolver(ex, log),
		log:      log,
	}
}

// Resolver exposes the metadata resolver for the getInfo path.
func (r *Runner) Resolver() *Resolver {
	return r.resolver
}

// Run converts url to an MP3 artifact at the requested bitrate. onProgress
// may be nil. On failure any temp file is left in place for the janitor;
// the final name only ever appears once the artifact is complete.
func (r *Runner) Run(ctx context.Context, url, bitrate string, onProgress ProgressFunc) (*models.ConversionJob, error) {
	emit := onProgress
	if emit == nil {
		emit = func(int, string) {}
	}

	job := &models.ConversionJob{
		ID:        ksuid.New().String(),
		URL:       url,
		Quality:   bitrate,
		CreatedAt: time.Now(),
	}
	job.TempPrefix = "tmp_" + job.ID

	emit(10, "Getting video information...")
	job.Metadata = r.resolver.Resolve(ctx, url)

	emit(25, "Starting download: "+job.Metadata.Title)
	emit(40, "Downloading audio stream...")

	template := filepath.Join(r.cfg.DownloadDir, job.TempPrefix) + ".%(ext)s"
	if err := r.downloadWithRetry(ctx, url, bitrate, template); err != nil {
		r.log.Error("job %s: download failed: %v", job.ID, err)
		return nil, err
	}

	emit(80, "Converting to MP3...")

	artifact, err := LocateArtifact(r.cfg.DownloadDir, job.TempPrefix)
	if err != nil {
		r.log.Error("job %s: no artifact under prefix %s", job.ID, job.TempPrefix)
		return nil, err
	}

	emit(90, "Processing filename...")

	info, err := os.Stat(artifact)
	if err != nil {
		return nil, ErrArtifactNotFound
	}
	job.FileSize = info.Size()

	emit(95, "Finalizing...")

	if err := r.promote(job, artifact); err != nil {
		r.log.Error("job %s: promote failed: %v", job.ID, err)
		return nil, err
	}

	r.log.Info("job %s: completed %s (%d bytes)", job.ID, job.Filename, job.FileSize)
	return job, nil
}

// downloadWithRetry invokes the extractor with a short backoff between
// attempts. Transient upstream hiccups are common enough to warrant one or
// two extra tries before giving up.
func (r *Runner) downloadWithRetry(ctx context.Context, url, bitrate, template string) error {
	var lastErr error
	for attempt := 0; attempt <= r.cfg.DownloadRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(2 * time.Second):
			case <-ctx.Done():
				return ctx.Err()
			}
			r.log.Warn("retrying download of %s, attempt %d", url, attempt+1)
		}

		err := r.ex.Download(ctx, url, bitrate, template)
		if err == nil {
			return nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return lastErr
}

// promote renames the temp artifact to its sanitized final name. The name
// reservation is serialized across jobs; an occupied name gets a numeric
// suffix instead of being overwritten.
func (r *Runner) promote(job *models.ConversionJob, artifact string) error {
	base := SanitizeFilename(job.Metadata.Title)

	r.renameMu.Lock()
	defer r.renameMu.Unlock()

	name := base + ".mp3"
	path := filepath.Join(r.cfg.DownloadDir, name)
	for i := 1; ; i++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			break
		}
		name = fmt.Sprintf("%s (%d).mp3", base, i)
		path = filepath.Join(r.cfg.DownloadDir, name)
	}

	if err := os.Rename(artifact, path); err != nil {
		return fmt.Errorf("%w: %v", ErrRenameCollision, err)
	}

	job.Filename = name
	job.FinalPath = path
	return nil
}
