package utils

import (
	"regexp"
	"strings"
)

// --- Label / Slug Sanitization ---
var nonAlphanumericRuns = regexp.MustCompile(`[^a-z0-9]+`) // Runs of anything outside [a-z0-9] collapse to one hyphen
const maxLabelLength = 60                                  // Max length for saved-document labels

// SanitizeLabel cleans a link label (or URL fragment) into a safe lowercase
// filename stem: alphanumerics and hyphens only, at most 60 chars, never empty.
func SanitizeLabel(s string) string {
	sanitized := strings.ToLower(strings.TrimSpace(s))
	sanitized = nonAlphanumericRuns.ReplaceAllString(sanitized, "-")
	sanitized = strings.Trim(sanitized, "-")

	if len(sanitized) > maxLabelLength {
		// Only ASCII remains after the replace above, so byte slicing is safe
		sanitized = sanitized[:maxLabelLength]
		sanitized = strings.Trim(sanitized, "-")
	}

	if sanitized == "" {
		sanitized = "menu" // Default stem when nothing survives sanitization
	}
	return sanitized
}

// Slugify derives a URL-safe directory slug from a restaurant name. Same
// character policy as SanitizeLabel but uncapped and with its own fallback;
// uniqueness suffixes are the caller's concern.
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = nonAlphanumericRuns.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")

	if slug == "" {
		slug = "restaurant"
	}
	return slug
}
