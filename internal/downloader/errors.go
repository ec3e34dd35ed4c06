package downloader

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrArtifactNotFound means the extraction tool finished without a
	// locatable output file.
	ErrArtifactNotFound = errors.New("download failed: file not found")

	// ErrRenameCollision means the temp artifact could not be promoted to
	// its final name.
	ErrRenameCollision = errors.New("could not finalize downloaded file")
)

// Classify maps a job failure to a user-facing message. Raw tool output and
// filesystem paths never reach the client.
func Classify(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrArtifactNotFound) {
		return "Download failed: file not found"
	}
	if errors.Is(err, ErrRenameCollision) {
		return "Download failed: could not finalize file"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "The video service took too long to respond. Please try again."
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "unavailable"),
		strings.Contains(msg, "removed"),
		strings.Contains(msg, "does not exist"),
		strings.Contains(msg, "404"):
		return "This video is unavailable or has been removed."
	case strings.Contains(msg, "private"),
		strings.Contains(msg, "sign in"),
		strings.Contains(msg, "age"),
		strings.Contains(msg, "restricted"),
		strings.Contains(msg, "403"):
		return "Access to this video is restricted."
	case strings.Contains(msg, "timed out"),
		strings.Contains(msg, "timeout"),
		strings.Contains(msg, "deadline"):
		return "The video service took too long to respond. Please try again."
	default:
		return "An unexpected error occurred during processing. Please try again."
	}
}
