package feed

import (
	"net/url"
	"strings"

	"github.com/samvad-hq/samvad-newsdesk/internal/domain"
)

var trackingParams = map[string]struct{}{
	"fbclid": {},
	"gclid":  {},
	"yclid":  {},
}

func isTrackingParam(key string) bool {
	k := strings.ToLower(key)
	if strings.HasPrefix(k, "utm_") {
		return true
	}
	_, ok := trackingParams[k]
	return ok
}

// parseAbsolute returns u only when raw is an absolute URL with a host.
func parseAbsolute(raw string) (*url.URL, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, false
	}
	return u, true
}

// NormalizeURL strips tracking parameters from an absolute URL. Anything that
// does not parse as an absolute URL is returned unchanged.
func NormalizeURL(raw string) string {
	u, ok := parseAbsolute(raw)
	if !ok {
		return raw
	}

	q := u.Query()
	for key := range q {
		if isTrackingParam(key) {
			q.Del(key)
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// CanonicalKey is the dedup identity of an article: lowercased host+path of its
// URL, or source:title when the URL is not usable.
func CanonicalKey(a domain.Article) string {
	if u, ok := parseAbsolute(a.URL); ok {
		return strings.ToLower(u.Hostname() + u.EscapedPath())
	}
	return a.Source + ":" + strings.ToLower(strings.TrimSpace(a.Title))
}
