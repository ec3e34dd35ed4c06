package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/keithcsxyz/yt2mp3/internal/models"
)

// eventStream writes line-delimited JSON progress events to a live SSE
// connection, flushing after every frame. Fire-and-forget: there is no
// acknowledgment and no re-delivery.
type eventStream struct {
	w          http.ResponseWriter
	rc         *http.ResponseController
	downloadID string
}

func newEventStream(w http.ResponseWriter, downloadID string) *eventStream {
	return &eventStream{
		w:          w,
		rc:         http.NewResponseController(w),
		downloadID: downloadID,
	}
}

func (s *eventStream) emit(ev models.ProgressEvent) {
	ev.DownloadID = s.downloadID
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	fmt.Fprintf(s.w, "data: %s\n\n", data)
	_ = s.rc.Flush()
}

// Send announces a stage milestone.
func (s *eventStream) Send(progress int, message string) {
	s.emit(models.ProgressEvent{Progress: progress, Message: message})
}

// Fail emits the single terminal error event. Nothing may follow it.
func (s *eventStream) Fail(errMsg string) {
	s.emit(models.ProgressEvent{Progress: -1, Error: errMsg})
}

// Complete emits the terminal success event with the result inline so the
// client learns the outcome without a second request.
func (s *eventStream) Complete(result *models.DownloadResult) {
	s.emit(models.ProgressEvent{Progress: 100, Message: "Download completed!", Data: result})
}
