package fetcher

import (
	"net/url"
	"regexp"

	"github.com/uni-regulations/rag-core/internal/ragerr"
)

var shareLinkPatterns = []*regexp.Regexp{
	regexp.MustCompile(`drive\.google\.com/file/d/([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`drive\.google\.com/open\?id=([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`docs\.google\.com/forms/d/([a-zA-Z0-9_-]+)`),
}

// resolveShareLink rewrites a recognized Google share-host URL to its
// direct-download form. Unknown shapes are reported, never guessed, per
// spec.md §4.1 and the Design Notes in §9.
func resolveShareLink(rawURL string) (string, error) {
	for _, re := range shareLinkPatterns {
		m := re.FindStringSubmatch(rawURL)
		if m == nil {
			continue
		}
		id := m[1]
		return "https://drive.google.com/uc?export=download&id=" + id, nil
	}
	return "", ragerr.ErrUnknownShareLink
}

// isShareHost reports whether rawURL's host matches one of the recognized
// indirect-download hosts, regardless of whether the id pattern matches
// (used to decide whether a failed resolveShareLink should be reported as
// UnknownShareLink rather than silently skipped as "not a document link").
func isShareHost(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	switch u.Host {
	case "drive.google.com", "docs.google.com":
		return true
	default:
		return false
	}
}
