package api

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v5"

	"github.com/keithcsxyz/yt2mp3/internal/config"
	"github.com/keithcsxyz/yt2mp3/internal/downloader"
	"github.com/keithcsxyz/yt2mp3/internal/jobs"
	"github.com/keithcsxyz/yt2mp3/internal/logger"
	"github.com/keithcsxyz/yt2mp3/internal/models"
	"github.com/keithcsxyz/yt2mp3/internal/quota"
)

const connectivityProbeURL = "https://www.youtube.com"

type Handler struct {
	Cfg      *config.Config
	Manager  *jobs.Manager
	Quota    quota.Tracker
	Sessions *SessionStore
	Log      *logger.Logger
}

func NewHandler(cfg *config.Config, m *jobs.Manager, q quota.Tracker, s *SessionStore, log *logger.Logger) *Handler {
	return &Handler{Cfg: cfg, Manager: m, Quota: q, Sessions: s, Log: log}
}

func errorJSON(msg string) map[string]interface{} {
	return map[string]interface{}{"success": false, "error": msg}
}

// Download is the synchronous entry point. Validation failures and failed
// jobs answer 400; only genuinely unexpected conditions become a 500 (via
// the recover middleware).
func (h *Handler) Download(c *echo.Context) error {
	r := c.Request()
	req := models.DownloadRequest{
		URL:     r.FormValue("url"),
		Quality: r.FormValue("quality"),
		Action:  r.FormValue("action"),
	}
	if req.Quality == "" {
		req.Quality = h.Cfg.DefaultBitrate
	}
	if req.Action == "" {
		req.Action = models.ActionDownload
	}

	if req.URL == "" {
		return c.JSON(http.StatusBadRequest, errorJSON("URL is required"))
	}
	if !h.Cfg.BitrateAllowed(req.Quality) {
		return c.JSON(http.StatusBadRequest, errorJSON("Invalid quality selection"))
	}
	if !downloader.IsValidVideoURL(req.URL) {
		return c.JSON(http.StatusBadRequest, errorJSON("Invalid YouTube URL"))
	}

	ctx := r.Context()
	session := h.Sessions.ID(c)

	if req.Action == models.ActionGetInfo {
		if !h.Quota.Allowed(ctx, session) {
			return c.JSON(http.StatusBadRequest, errorJSON("Download limit reached for this session"))
		}
		meta := h.Manager.GetInfo(ctx, req.URL)
		return c.JSON(http.StatusOK, map[string]interface{}{
			"success":   true,
			"title":     meta.Title,
			"duration":  meta.Duration,
			"thumbnail": meta.Thumbnail,
		})
	}

	// The slot is taken before any external work starts. A failed
	// conversion keeps it (attempts count); a full pool gives it back,
	// since no job was ever attempted.
	if !h.Quota.Reserve(ctx, session) {
		return c.JSON(http.StatusBadRequest, errorJSON("Download limit reached for this session"))
	}

	job, err := h.Manager.Convert(ctx, req.URL, req.Quality, nil)
	if err != nil {
		if errors.Is(err, jobs.ErrBusy) {
			h.Quota.Release(ctx, session)
			return c.JSON(http.StatusServiceUnavailable, errorJSON(err.Error()))
		}
		return c.JSON(http.StatusBadRequest, errorJSON(downloader.Classify(err)))
	}

	return c.JSON(http.StatusOK, job.Result())
}

// DownloadProgress runs a conversion while streaming milestone events over
// SSE. Every failure path ends the stream with a single terminal error
// event; the connection is never dropped silently.
func (h *Handler) DownloadProgress(c *echo.Context) error {
	url := c.QueryParam("url")
	quality := c.QueryParam("quality")
	downloadID := c.QueryParam("downloadId")
	if quality == "" {
		quality = h.Cfg.DefaultBitrate
	}
	if downloadID == "" {
		downloadID = uuid.New().String()
	}

	ctx := c.Request().Context()
	// Resolve the session before the stream starts so the cookie header
	// can still be written.
	session := h.Sessions.ID(c)

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.WriteHeader(http.StatusOK)

	stream := newEventStream(res, downloadID)

	if url == "" {
		stream.Fail("URL is required")
		return nil
	}
	if !h.Cfg.BitrateAllowed(quality) {
		stream.Fail("Invalid quality selection")
		return nil
	}
	if !downloader.IsValidVideoURL(url) {
		stream.Fail("Invalid YouTube URL")
		return nil
	}
	if !h.Quota.Reserve(ctx, session) {
		stream.Fail("Download limit reached for this session")
		return nil
	}

	stream.Send(0, "Starting download...")

	job, err := h.Manager.Convert(ctx, url, quality, stream.Send)
	if err != nil {
		if errors.Is(err, jobs.ErrBusy) {
			h.Quota.Release(ctx, session)
			stream.Fail(err.Error())
		} else {
			stream.Fail(downloader.Classify(err))
		}
		return nil
	}

	stream.Complete(job.Result())
	return nil
}

// ServeArtifact serves a produced MP3 as a downloadable attachment.
func (h *Handler) ServeArtifact(c *echo.Context) error {
	name := c.Param("filename")
	if name == "" || name != filepath.Base(name) {
		return c.JSON(http.StatusBadRequest, errorJSON("Invalid filename"))
	}

	path := filepath.Join(h.Cfg.DownloadDir, name)
	if _, err := os.Stat(path); err != nil {
		return c.JSON(http.StatusNotFound, errorJSON("File not found"))
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	c.Response().Header().Set(echo.HeaderContentType, "audio/mpeg")
	http.ServeFile(c.Response(), c.Request(), path)
	return nil
}

// TestConnectivity reports whether the upstream host answers through the
// configured proxy. Diagnostic only.
func (h *Handler) TestConnectivity(c *echo.Context) error {
	client := &http.Client{
		Timeout:   5 * time.Second,
		Transport: &http.Transport{Proxy: http.ProxyFromEnvironment},
	}

	req, err := http.NewRequestWithContext(c.Request().Context(), http.MethodHead, connectivityProbeURL, nil)
	if err != nil {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"success": true, "accessible": false, "message": "could not build probe request",
		})
	}

	resp, err := client.Do(req)
	accessible := err == nil && resp.StatusCode < http.StatusInternalServerError
	message := "upstream reachable"
	if err != nil {
		message = "upstream unreachable"
		h.Log.Warn("connectivity probe failed: %v", err)
	}
	if resp != nil {
		resp.Body.Close()
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":    true,
		"accessible": accessible,
		"message":    message,
	})
}

// Healthz is a liveness probe.
func (h *Handler) Healthz(c *echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
