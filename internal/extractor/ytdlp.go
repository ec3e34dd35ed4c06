package extractor

import (
	"context"
	"fmt"
	"time"

	"github.com/lrstanley/go-ytdlp"

	"github.com/keithcsxyz/yt2mp3/internal/config"
	"github.com/keithcsxyz/yt2mp3/internal/logger"
	"github.com/keithcsxyz/yt2mp3/internal/models"
)

// A desktop browser UA keeps the upstream service from flagging the tool's
// default identity.
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// YTDLP is the production extraction capability, backed by the yt-dlp tool.
// Each call builds its own command, so a single instance is safe to share
// across concurrent jobs.
type YTDLP struct {
	cfg *config.Config
	log *logger.Logger
}

func New(cfg *config.Config, log *logger.Logger) *YTDLP {
	return &YTDLP{cfg: cfg, log: log}
}

// Install makes sure a yt-dlp binary is available, downloading a pinned
// release when the system has none.
func Install(ctx context.Context) error {
	_, err := ytdlp.Install(ctx, nil)
	return err
}

func (y *YTDLP) base() *ytdlp.Command {
	dl := ytdlp.New().
		NoWarnings().
		SocketTimeout(y.cfg.SocketTimeout.Seconds()).
		UserAgent(browserUserAgent)
	if y.cfg.Proxy != "" {
		dl = dl.Proxy(y.cfg.Proxy)
	}
	return dl
}

// Probe fetches title, duration, thumbnail and uploader without
// downloading any media.
func (y *YTDLP) Probe(ctx context.Context, url string) (*models.VideoMetadata, error) {
	res, err := y.base().SkipDownload().Run(ctx, url)
	if err != nil {
		return nil, err
	}

	info, err := res.GetExtractedInfo()
	if err != nil {
		return nil, err
	}
	if len(info) == 0 {
		return nil, fmt.Errorf("no metadata returned for %s", url)
	}

	first := info[0]
	meta := &models.VideoMetadata{}
	if first.Title != nil {
		meta.Title = *first.Title
	}
	if first.Duration != nil {
		meta.Duration = *first.Duration
	}
	if first.Thumbnail != nil {
		meta.Thumbnail = *first.Thumbnail
	}
	if first.Uploader != nil {
		meta.Uploader = *first.Uploader
	}
	return meta, nil
}

// Download grabs the best audio stream and transcodes it to MP3 at the
// requested bitrate, writing under outputTemplate. Blocks until the tool
// finishes; real transfer progress is logged at debug level only.
func (y *YTDLP) Download(ctx context.Context, url, bitrate, outputTemplate string) error {
	dl := y.base().
		Format("bestaudio/best").
		ExtractAudio().
		AudioFormat("mp3").
		AudioQuality(bitrate + "K").
		Output(outputTemplate)

	dl.ProgressFunc(500*time.Millisecond, func(u ytdlp.ProgressUpdate) {
		y.log.Debug("yt-dlp %s: %d/%d bytes", url, u.DownloadedBytes, u.TotalBytes)
	})

	_, err := dl.Run(ctx, url)
	return err
}
