// Package scraper holds the pure parts of website analysis: URL
// normalisation, platform detection, the selector table, product extraction
// and the demo fallback. Nothing here performs I/O.
package scraper

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/shopclip/backend/internal/domain"
)

// CleanAndValidateURL prepends https:// when the input has no scheme and
// returns the serialized absolute URL.
func CleanAndValidateURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if !hasHTTPScheme(candidate) {
		candidate = "https://" + candidate
	}

	u, err := url.Parse(candidate)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" ||
		strings.ContainsAny(u.Host, " \t\r\n") {
		return "", fmt.Errorf("%w: %s", domain.ErrInvalidURL, candidate)
	}

	return u.String(), nil
}

// hasHTTPScheme reports whether s starts with http:// or https://, in any case.
// Hosts such as httpbin.org carry no scheme.
func hasHTTPScheme(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Origin returns scheme://host of an absolute URL, or the input trimmed of a
// trailing slash when it cannot be parsed.
func Origin(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return strings.TrimRight(rawURL, "/")
	}
	return u.Scheme + "://" + u.Host
}

// MakeAbsoluteURL resolves ref against base using the same simple rules a
// browser-less scraper can apply: protocol-relative refs become https,
// rooted and bare refs are prefixed with base.
func MakeAbsoluteURL(ref, base string) string {
	ref = strings.TrimSpace(ref)
	base = strings.TrimRight(base, "/")

	switch {
	case ref == "":
		return ""
	case strings.HasPrefix(ref, "http"):
		return ref
	case strings.HasPrefix(ref, "//"):
		return "https:" + ref
	case strings.HasPrefix(ref, "/"):
		return base + ref
	default:
		return base + "/" + ref
	}
}
