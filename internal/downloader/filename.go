package downloader

import (
	"regexp"
	"strings"
)

const (
	maxFilenameLen   = 100
	fallbackFilename = "download"
)

var (
	unsafeChars    = regexp.MustCompile(`[<>:"/\\|?*]`)
	whitespaceRuns = regexp.MustCompile(`\s+`)
)

// SanitizeFilename maps an arbitrary title to a safe filesystem name.
// Unsafe characters are stripped, whitespace runs collapse to single
// spaces, the result is trimmed and capped at 100 characters. An empty
// result falls back to "download". Total and idempotent.
func SanitizeFilename(name string) string {
	s := unsafeChars.ReplaceAllString(name, "")
	s = whitespaceRuns.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)

	if r := []rune(s); len(r) > maxFilenameLen {
		// Trim again so a cut mid-word never leaves a trailing space.
		s = strings.TrimSpace(string(r[:maxFilenameLen]))
	}

	if s == "" {
		return fallbackFilename
	}
	return s
}
