package sites

import (
	"net/url"
	"regexp"
	"strings"
)

// Site aliases used in fingerprints, cookie file names, and TTL lookup.
const (
	YouTube = "youtube"
	TikTok  = "tiktok"
	Default = "default"
)

var (
	youtubeIDPattern = regexp.MustCompile(`(?:v=|/shorts/|youtu\.be/)([A-Za-z0-9_-]{11})`)
	tiktokIDPattern  = regexp.MustCompile(`/@[^/]+/video/(\d+)`)
)

// Detect maps a URL to its site alias. URLs that belong to no known
// site fall back to the default alias.
func Detect(rawURL string) string {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || parsed.Host == "" {
		return Default
	}
	host := strings.ToLower(strings.TrimPrefix(parsed.Hostname(), "www."))
	switch {
	case host == "youtu.be" || strings.HasSuffix(host, "youtube.com"):
		return YouTube
	case strings.HasSuffix(host, "tiktok.com"):
		return TikTok
	default:
		return Default
	}
}

// ExtractID pulls the canonical item identifier out of a URL for the
// given site. When no identifier can be derived the second return is
// false and callers should fingerprint the raw URL instead.
func ExtractID(site, rawURL string) (string, bool) {
	rawURL = strings.TrimSpace(rawURL)
	switch site {
	case YouTube:
		if match := youtubeIDPattern.FindStringSubmatch(rawURL); match != nil {
			return match[1], true
		}
	case TikTok:
		if match := tiktokIDPattern.FindStringSubmatch(rawURL); match != nil {
			return match[1], true
		}
	}
	return "", false
}
