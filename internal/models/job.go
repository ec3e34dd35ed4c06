package models

import (
	"time"
)

// Action values accepted by the download endpoint.
const (
	ActionGetInfo  = "getInfo"
	ActionDownload = "download"
)

// DownloadRequest is the immutable input parsed from the request parameters.
type DownloadRequest struct {
	URL     string
	Quality string
	Action  string
}

// VideoMetadata is what the resolver learned about a video without
// downloading it. Title always has a value; the rest is best-effort.
type VideoMetadata struct {
	Title     string  `json:"title"`
	Duration  float64 `json:"duration,omitempty"`
	Thumbnail string  `json:"thumbnail,omitempty"`
	Uploader  string  `json:"uploader,omitempty"`
}

// ConversionJob tracks one URL-to-MP3 conversion from job start to the
// promoted artifact. Only the runner mutates it.
type ConversionJob struct {
	ID        string    `json:"id"`
	URL       string    `json:"-"`
	Quality   string    `json:"quality"`
	CreatedAt time.Time `json:"-"`

	TempPrefix string         `json:"-"`
	FinalPath  string         `json:"-"`
	Filename   string         `json:"filename"`
	FileSize   int64          `json:"filesize"`
	Metadata   *VideoMetadata `json:"metadata,omitempty"`
}

// DownloadResult is the payload returned by the synchronous endpoint and
// attached to the terminal progress event.
type DownloadResult struct {
	Success     bool   `json:"success"`
	DownloadURL string `json:"downloadUrl"`
	Filename    string `json:"filename"`
	Title       string `json:"title"`
	Filesize    int64  `json:"filesize"`
}

// ProgressEvent is one frame of the SSE progress stream. Progress is a
// coarse stage milestone (0-100), or -1 for a terminal error.
type ProgressEvent struct {
	DownloadID string          `json:"downloadId"`
	Progress   int             `json:"progress"`
	Message    string          `json:"message,omitempty"`
	Error      string          `json:"error,omitempty"`
	Data       *DownloadResult `json:"data,omitempty"`
}

// Result builds the success payload for a completed job.
func (j *ConversionJob) Result() *DownloadResult {
	title := j.Filename
	if j.Metadata != nil {
		title = j.Metadata.Title
	}
	return &DownloadResult{
		Success:     true,
		DownloadURL: "downloads/" + j.Filename,
		Filename:    j.Filename,
		Title:       title,
		Filesize:    j.FileSize,
	}
}
