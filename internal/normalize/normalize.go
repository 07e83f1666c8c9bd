// Package normalize canonicalizes user supplied URLs before they are hashed
// and stored. The canonical string is the identity of a mapping, so every
// function here is pure.
package normalize

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/idna"

	"github.com/joshdurbin/hashlink/internal/domain"
)

// MaxLength is the longest accepted input, in characters, after trimming.
const MaxLength = 2048

// DefaultScheme is applied to inputs that carry no scheme.
const DefaultScheme = "https"

var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
}

var domainPattern = regexp.MustCompile(`^[a-zA-Z0-9-\.]+\.([a-zA-Z]{2,}|[a-zA-Z]{2,}\.[a-zA-Z]{2,})$`)

// Normalize trims, parses and canonicalizes input. Failures are returned as
// *domain.ValidationError.
func Normalize(input string) (string, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return "", domain.NewValidationError("URL cannot be empty")
	}
	if utf8.RuneCountInString(raw) > MaxLength {
		return "", domain.NewValidationError("URL too long (max %d characters)", MaxLength)
	}

	if !hasScheme(raw) {
		raw = DefaultScheme + "://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", domain.NewValidationError("Failed to normalize URL: %v", err)
	}

	host, err := idna.Lookup.ToASCII(strings.ToLower(u.Hostname()))
	if err != nil || !ValidDomain(host) {
		return "", domain.NewValidationError("Invalid domain format")
	}
	u.Host = host
	if port := u.Port(); port != "" && port != defaultPorts[u.Scheme] {
		u.Host += ":" + port
	}

	if hasDotSegment(u.EscapedPath()) {
		u = resolveDotSegments(u)
	}

	// A bare root path is dropped so that "https://example.com/" and
	// "https://example.com" share one identity.
	if u.Path == "/" && u.RawQuery == "" && !u.ForceQuery && u.Fragment == "" {
		u.Path = ""
		u.RawPath = ""
	}

	return u.String(), nil
}

// ValidDomain reports whether host is a dotted name ending in an alphabetic
// top level label. IP literals and single label hosts are rejected.
func ValidDomain(host string) bool {
	if host == "" {
		return false
	}
	return domainPattern.MatchString(host)
}

// hasScheme reports whether s starts with "<scheme>://".
func hasScheme(s string) bool {
	i := strings.Index(s, "://")
	if i <= 0 {
		return false
	}
	for j, c := range s[:i] {
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case j > 0 && ('0' <= c && c <= '9' || c == '+' || c == '-' || c == '.'):
		default:
			return false
		}
	}
	return true
}

func hasDotSegment(p string) bool {
	for _, seg := range strings.Split(p, "/") {
		if seg == "." || seg == ".." {
			return true
		}
	}
	return false
}

// resolveDotSegments removes "." and ".." segments. A path ending in a dot
// segment names a directory and keeps its trailing slash.
func resolveDotSegments(u *url.URL) *url.URL {
	p := u.EscapedPath()
	dir := strings.HasSuffix(p, "/.") || strings.HasSuffix(p, "/..")
	u = u.JoinPath()
	if dir && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
		if u.RawPath != "" {
			u.RawPath += "/"
		}
	}
	return u
}
