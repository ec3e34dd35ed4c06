package downloader

import (
	"context"

	"github.com/keithcsxyz/yt2mp3/internal/models"
)

// Extractor is the external extraction and transcoding capability. The real
// implementation shells out to yt-dlp; tests substitute a fake.
type Extractor interface {
	// Probe fetches metadata for url without downloading any media.
	Probe(ctx context.Context, url string) (*models.VideoMetadata, error)

	// Download fetches the best audio stream for url and transcodes it to
	// MP3 at the given bitrate, writing output under outputTemplate
	// (a yt-dlp output template, extension chosen by the tool).
	Download(ctx context.Context, url, bitrate, outputTemplate string) error
}
