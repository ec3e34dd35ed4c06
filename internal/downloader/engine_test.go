package downloader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/keithcsxyz/yt2mp3/internal/config"
	"github.com/keithcsxyz/yt2mp3/internal/logger"
	"github.com/keithcsxyz/yt2mp3/internal/models"
)

// fakeExtractor stands in for yt-dlp. Download writes content under the
// given output template unless told to fail or stay silent.
type fakeExtractor struct {
	mu        sync.Mutex
	meta      *models.VideoMetadata
	probeErr  error
	dlErr     error
	skipWrite bool
	content   []byte
	ext       string
	dlCalls   int
}

func (f *fakeExtractor) Probe(_ context.Context, _ string) (*models.VideoMetadata, error) {
	if f.probeErr != nil {
		return nil, f.probeErr
	}
	m := *f.meta
	return &m, nil
}

func (f *fakeExtractor) Download(_ context.Context, _, _, template string) error {
	f.mu.Lock()
	f.dlCalls++
	f.mu.Unlock()

	if f.dlErr != nil {
		return f.dlErr
	}
	if f.skipWrite {
		return nil
	}

	ext := f.ext
	if ext == "" {
		ext = "mp3"
	}
	path := strings.Replace(template, "%(ext)s", ext, 1)
	return os.WriteFile(path, f.content, 0644)
}

func (f *fakeExtractor) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dlCalls
}

func newTestRunner(t *testing.T, ex Extractor) (*Runner, *config.Config) {
	t.Helper()
	cfg := &config.Config{
		DownloadDir:     t.TempDir(),
		DownloadRetries: 0,
	}
	log, err := logger.New(filepath.Join(t.TempDir(), "test.log"), logger.LevelError, false)
	if err != nil {
		t.Fatal(err)
	}
	return NewRunner(cfg, ex, log), cfg
}

func TestRunnerSuccess(t *testing.T) {
	ex := &fakeExtractor{
		meta:    &models.VideoMetadata{Title: "Test Song", Duration: 180},
		content: []byte("fake mp3 bytes"),
	}
	runner, cfg := newTestRunner(t, ex)

	var progress []int
	job, err := runner.Run(context.Background(), "https://youtu.be/abc123", "320", func(p int, _ string) {
		progress = append(progress, p)
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if job.Filename != "Test Song.mp3" {
		t.Errorf("filename = %q, expected %q", job.Filename, "Test Song.mp3")
	}
	if job.FileSize != int64(len(ex.content)) {
		t.Errorf("filesize = %d, expected %d", job.FileSize, len(ex.content))
	}
	if _, err := os.Stat(job.FinalPath); err != nil {
		t.Errorf("final artifact missing: %v", err)
	}

	// Success must not leave a temp file behind.
	entries, _ := os.ReadDir(cfg.DownloadDir)
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "tmp_") {
			t.Errorf("orphaned temp file on success path: %s", e.Name())
		}
	}

	for i := 1; i < len(progress); i++ {
		if progress[i] < progress[i-1] {
			t.Errorf("progress went backwards: %v", progress)
		}
	}
	if len(progress) == 0 || progress[len(progress)-1] != 95 {
		t.Errorf("runner milestones should end at 95, got %v", progress)
	}
}

func TestRunnerMetadataFallback(t *testing.T) {
	ex := &fakeExtractor{
		probeErr: errors.New("probe exploded"),
		content:  []byte("audio"),
	}
	runner, _ := newTestRunner(t, ex)

	job, err := runner.Run(context.Background(), "https://youtu.be/abc123", "192", nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if job.Metadata.Title != "YouTube Video abc123" {
		t.Errorf("fallback title = %q", job.Metadata.Title)
	}
	if job.Filename != "YouTube Video abc123.mp3" {
		t.Errorf("fallback filename = %q", job.Filename)
	}
}

func TestRunnerArtifactNotFound(t *testing.T) {
	ex := &fakeExtractor{
		meta:      &models.VideoMetadata{Title: "Ghost"},
		skipWrite: true,
	}
	runner, _ := newTestRunner(t, ex)

	_, err := runner.Run(context.Background(), "https://youtu.be/abc123", "320", nil)
	if !errors.Is(err, ErrArtifactNotFound) {
		t.Fatalf("expected ErrArtifactNotFound, got %v", err)
	}
}

func TestRunnerDownloadErrorRetries(t *testing.T) {
	ex := &fakeExtractor{
		meta:  &models.VideoMetadata{Title: "Broken"},
		dlErr: errors.New("network reset"),
	}
	runner, cfg := newTestRunner(t, ex)
	cfg.DownloadRetries = 2

	_, err := runner.Run(context.Background(), "https://youtu.be/abc123", "320", nil)
	if err == nil {
		t.Fatal("expected download failure")
	}
	if got := ex.calls(); got != 3 {
		t.Errorf("expected 3 attempts, got %d", got)
	}
}

func TestRunnerTitleCollisionSuffix(t *testing.T) {
	ex := &fakeExtractor{
		meta:    &models.VideoMetadata{Title: "Same Title"},
		content: []byte("first"),
	}
	runner, cfg := newTestRunner(t, ex)

	first, err := runner.Run(context.Background(), "https://youtu.be/aaa111", "320", nil)
	if err != nil {
		t.Fatal(err)
	}
	second, err := runner.Run(context.Background(), "https://youtu.be/bbb222", "320", nil)
	if err != nil {
		t.Fatal(err)
	}

	if first.Filename != "Same Title.mp3" {
		t.Errorf("first filename = %q", first.Filename)
	}
	if second.Filename != "Same Title (1).mp3" {
		t.Errorf("second filename = %q", second.Filename)
	}

	entries, _ := os.ReadDir(cfg.DownloadDir)
	if len(entries) != 2 {
		t.Errorf("expected 2 artifacts, found %d", len(entries))
	}
}

func TestRunnerConcurrentSameTitle(t *testing.T) {
	ex := &fakeExtractor{
		meta:    &models.VideoMetadata{Title: "Popular Song"},
		content: []byte("payload"),
	}
	runner, cfg := newTestRunner(t, ex)

	var wg sync.WaitGroup
	results := make([]*models.ConversionJob, 2)
	errs := make([]error, 2)
	urls := []string{"https://youtu.be/one11111111", "https://youtu.be/two22222222"}

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = runner.Run(context.Background(), urls[i], "320", nil)
		}(i)
	}
	wg.Wait()

	for i := 0; i < 2; i++ {
		if errs[i] != nil {
			t.Fatalf("job %d failed: %v", i, errs[i])
		}
	}
	if results[0].Filename == results[1].Filename {
		t.Fatalf("concurrent jobs share a final filename: %q", results[0].Filename)
	}
	for i := 0; i < 2; i++ {
		info, err := os.Stat(results[i].FinalPath)
		if err != nil {
			t.Errorf("artifact %d missing: %v", i, err)
			continue
		}
		if info.Size() != int64(len(ex.content)) {
			t.Errorf("artifact %d truncated or overwritten", i)
		}
	}

	entries, _ := os.ReadDir(cfg.DownloadDir)
	if len(entries) != 2 {
		t.Errorf("expected 2 artifacts, found %d", len(entries))
	}
}
