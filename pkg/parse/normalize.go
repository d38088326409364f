package parse

import (
	"net"
	"net/url"
	"regexp"
	"strings"
)

var schemePrefix = regexp.MustCompile(`(?i)^https?://`)

// NormalizeWebsiteURL cleans a seed website URL: trims whitespace and
// prefixes "https://" when no scheme is present. Returns "" for blank input.
func NormalizeWebsiteURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if !schemePrefix.MatchString(trimmed) {
		trimmed = "https://" + trimmed
	}
	return trimmed
}

// CanonicalKey standardizes a URL for candidate de-duplication.
// It lowercases the scheme and host, removes default ports (80 for http, 443
// for https), removes trailing slashes from paths (unless root "/"), ensures
// an empty path becomes "/", and removes fragments. Query strings are kept:
// distinct queries are distinct fetches.
// Does not modify the input *url.URL
func CanonicalKey(u *url.URL) string {
	if u == nil {
		return ""
	}
	// Work on a copy
	normalized := *u

	normalized.Scheme = strings.ToLower(normalized.Scheme)
	normalized.Host = strings.ToLower(normalized.Host)

	// Remove default ports
	host, port, err := net.SplitHostPort(normalized.Host)
	if err == nil { // Host included a port
		if (normalized.Scheme == "http" && port == "80") ||
			(normalized.Scheme == "https" && port == "443") {
			normalized.Host = host // Use hostname without default port
		}
	} // If no port or error, Host remains unchanged

	// Handle path normalization
	if normalized.Path == "" {
		normalized.Path = "/" // Ensure empty path becomes "/"
	} else if len(normalized.Path) > 1 && strings.HasSuffix(normalized.Path, "/") {
		normalized.Path = normalized.Path[:len(normalized.Path)-1] // Remove trailing slash
	}

	normalized.Fragment = "" // Remove fragment

	return normalized.String()
}

// ParseAndCanonicalize parses a URL string using the stricter
// url.ParseRequestURI (requiring a scheme) and then derives its CanonicalKey.
// Returns the key, the parsed URL object, and any parse error
func ParseAndCanonicalize(urlStr string) (string, *url.URL, error) {
	parsed, err := url.ParseRequestURI(urlStr) // Stricter parsing
	if err != nil {
		return "", nil, err
	}
	return CanonicalKey(parsed), parsed, nil
}
