// Package urlparts derives comparison tokens from request URLs. Browsers
// often assign opaque names to downloaded files, so matching works off the
// pieces of the URL that have a chance of surviving into a filename or the
// file body: the bare domain label, the full host and the path segments.
package urlparts

import (
	"net/url"
	"strings"
)

// Parts returns the searchable tokens of raw in a fixed order: the
// second-level domain label (when the host has at least two labels), the
// full host, then every non-empty path segment. A URL that cannot be parsed
// yields the raw string itself, so the result is never empty for that case.
func Parts(raw string) []string {
	u, err := url.Parse(raw)
	if err != nil {
		return []string{raw}
	}

	var parts []string
	if labels := strings.Split(u.Host, "."); len(labels) > 1 {
		parts = append(parts, labels[len(labels)-2])
	}
	if u.Host != "" {
		parts = append(parts, u.Host)
	}
	for _, seg := range strings.Split(u.Path, "/") {
		if seg != "" {
			parts = append(parts, seg)
		}
	}
	return parts
}

// Domain returns the host of raw, or "" when raw cannot be parsed.
func Domain(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Host
}
