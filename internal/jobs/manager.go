package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/keithcsxyz/yt2mp3/internal/config"
	"github.com/keithcsxyz/yt2mp3/internal/downloader"
	"github.com/keithcsxyz/yt2mp3/internal/logger"
	"github.com/keithcsxyz/yt2mp3/internal/models"
)

// ErrBusy means every conversion slot stayed occupied for the whole
// admission wait.
var ErrBusy = errors.New("server busy, try again shortly")

const defaultAdmissionWait = 10 * time.Second

// Manager gates conversions through a fixed pool of slots so one slow job
// cannot starve the process of file handles and bandwidth.
type Manager struct {
	queue  chan struct{}
	wait   time.Duration
	runner *downloader.Runner
	log    *logger.Logger
}

func NewManager(cfg *config.Config, runner *downloader.Runner, log *logger.Logger) *Manager {
	wait := cfg.AdmissionWait
	if wait <= 0 {
		wait = defaultAdmissionWait
	}
	return &Manager{
		queue:  make(chan struct{}, cfg.MaxConcurrentJobs),
		wait:   wait,
		runner: runner,
		log:    log,
	}
}

// Convert runs one conversion job under the concurrency gate. onProgress
// may be nil for the synchronous path.
func (m *Manager) Convert(ctx context.Context, url, bitrate string, onProgress downloader.ProgressFunc) (*models.ConversionJob, error) {
	select {
	case m.queue <- struct{}{}:
		defer func() { <-m.queue }()
	case <-time.After(m.wait):
		m.log.Warn("all conversion slots busy, rejecting %s", url)
		return nil, ErrBusy
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	return m.runner.Run(ctx, url, bitrate, onProgress)
}

// GetInfo resolves metadata without producing an artifact. Never fails;
// see the resolver's fallback policy.
func (m *Manager) GetInfo(ctx context.Context, url string) *models.VideoMetadata {
	return m.runner.Resolver().Resolve(ctx, url)
}
