package downloader

import (
	"context"
	"regexp"

	"github.com/keithcsxyz/yt2mp3/internal/logger"
	"github.com/keithcsxyz/yt2mp3/internal/models"
)

var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[?&]v=([\w-]+)`),
	regexp.MustCompile(`youtu\.be/([\w-]+)`),
	regexp.MustCompile(`/(?:embed|v)/([\w-]+)`),
}

// Resolver wraps the extractor's metadata probe so that resolution never
// fails: any probe error degrades to synthesized metadata built from the
// video identifier in the URL. Failures that matter (the download itself)
// are surfaced later by the runner, not here.
type Resolver struct {
	ex  Extractor
	log *logger.Logger
}

func NewResolver(ex Extractor, log *logger.Logger) *Resolver {
	return &Resolver{ex: ex, log: log}
}

// Resolve returns metadata for url, degrading to a fallback value on any
// extractor error. Safe for concurrent use.
func (r *Resolver) Resolve(ctx context.Context, url string) *models.VideoMetadata {
	meta, err := r.ex.Probe(ctx, url)
	if err != nil || meta == nil {
		if err != nil {
			r.log.Warn("metadata probe failed for %s: %v", url, err)
		}
		return fallbackMetadata(url)
	}
	if meta.Title == "" {
		meta.Title = fallbackMetadata(url).Title
	}
	return meta
}

func fallbackMetadata(url string) *models.VideoMetadata {
	id := "unknown"
	for _, p := range videoIDPatterns {
		if m := p.FindStringSubmatch(url); m != nil {
			id = m[1]
			break
		}
	}
	return &models.VideoMetadata{Title: "YouTube Video " + id}
}
