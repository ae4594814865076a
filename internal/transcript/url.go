package transcript

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/Harshitk-cp/fitcheck/internal/domain"
)

// DefaultPlatforms are the video hosts accepted when none are configured.
var DefaultPlatforms = []string{"tiktok.com", "instagram.com", "youtube.com", "youtu.be"}

// ValidateURL checks that raw is an absolute http(s) URL on an allow-listed
// platform. A host matches a platform when it equals it or is a subdomain of it.
func ValidateURL(raw string, platforms []string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, domain.NewError(domain.KindInvalidURL, fmt.Sprintf("%q is not a valid http(s) URL", raw), err)
	}

	host := normalizeHost(u.Hostname())
	if host == "" {
		return nil, domain.NewError(domain.KindInvalidURL, fmt.Sprintf("%q has no host", raw), nil)
	}
	if len(platforms) == 0 {
		platforms = DefaultPlatforms
	}
	for _, p := range platforms {
		p = normalizeHost(p)
		if p != "" && (host == p || strings.HasSuffix(host, "."+p)) {
			return u, nil
		}
	}
	return nil, domain.NewError(domain.KindUnsupportedPlatform,
		fmt.Sprintf("platform %q is not supported (supported: %s)", host, strings.Join(platforms, ", ")), nil)
}

func normalizeHost(host string) string {
	host = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(host)), ".")
	for _, prefix := range []string{"www.", "m."} {
		host = strings.TrimPrefix(host, prefix)
	}
	return host
}
