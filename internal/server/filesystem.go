package server

import (
	"os"

	"github.com/keithcsxyz/yt2mp3/internal/config"
)

// PrepareFilesystem ensures the artifact directory exists before any job
// or the janitor touches it.
func PrepareFilesystem(cfg *config.Config) error {
	return os.MkdirAll(cfg.DownloadDir, 0755)
}
