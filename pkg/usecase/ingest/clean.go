package ingest

import (
	"regexp"
	"strings"
)

var (
	spaceRun = regexp.MustCompile(`\s+`)
	urlRef   = regexp.MustCompile(`https?://\S+`)
)

// CleanText collapses whitespace runs into single spaces, strips URLs, and
// trims the result. Applied to every chunk before embedding and storage.
func CleanText(text string) string {
	text = urlRef.ReplaceAllString(text, "")
	text = spaceRun.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
