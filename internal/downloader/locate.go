package downloader

import (
	"os"
	"path/filepath"
	"strings"
)

// LocateArtifact scans dir and returns the first regular file whose name
// starts with prefix. The extraction tool picks the final extension on its
// own, so the produced name is only known by this scan.
func LocateArtifact(dir, prefix string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasPrefix(entry.Name(), prefix) {
			return filepath.Join(dir, entry.Name()), nil
		}
	}

	return "", ErrArtifactNotFound
}
