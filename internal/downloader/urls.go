package downloader

import (
	"regexp"
)

// videoURLPattern matches the watch/embed/short URL shapes of the supported
// host, with an optional scheme, followed by a video identifier.
var videoURLPattern = regexp.MustCompile(`^(https?://)?(www\.)?(youtube\.com/(watch\?v=|embed/|v/)|youtu\.be/)[\w-]+`)

// IsValidVideoURL reports whether url looks like a supported video URL.
// It is a pure check; no network access happens here.
func IsValidVideoURL(url string) bool {
	return videoURLPattern.MatchString(url)
}
