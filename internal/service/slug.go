package service

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	slugStrip   = regexp.MustCompile(`[^\w\s-]`)
	slugHyphens = regexp.MustCompile(`[\s_]+`)
)

// Slugify derives a URL slug from a title: lowercase, punctuation stripped,
// whitespace and underscores collapsed to single hyphens, leading and trailing
// hyphens trimmed. A title that reduces to nothing falls back to a
// timestamp-based placeholder.
func Slugify(title string, now time.Time) string {
	slug := strings.ToLower(title)
	slug = slugStrip.ReplaceAllString(slug, "")
	slug = slugHyphens.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")

	if slug == "" {
		return fmt.Sprintf("untitled-%d", now.UnixMilli())
	}

	return slug
}
