package record

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	slugStrip   = regexp.MustCompile(`[^\w\s-]`)
	slugSpaces  = regexp.MustCompile(`[\s_]+`)
	slugHyphens = regexp.MustCompile(`^-+|-+$`)
)

// SanitizeSlug lowercases s, drops characters other than letters, digits,
// spaces, underscores and hyphens, joins words with hyphens and trims
// leading and trailing hyphens. Party slugs are derived from English names
// with it.
func SanitizeSlug(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	s = slugStrip.ReplaceAllString(s, "")
	s = slugSpaces.ReplaceAllString(s, "-")
	return slugHyphens.ReplaceAllString(s, "")
}

// NewID returns a time-ordered UUIDv7 string for a new row.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}
