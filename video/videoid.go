package video

import (
	"net/url"
	"regexp"
	"strings"
)

var videoIDRE = regexp.MustCompile(`^[A-Za-z0-9_-]{6,20}$`)

// ExtractID pulls the canonical video ID out of a YouTube URL without any
// network access. Returns "" when no ID can be derived; the caller then
// falls back to full resolution.
func ExtractID(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	host := u.Hostname()
	switch {
	case strings.HasSuffix(host, "youtu.be"):
		return validateID(strings.TrimPrefix(u.Path, "/"))
	case strings.Contains(host, "youtube.com"):
		if id := u.Query().Get("v"); id != "" {
			return validateID(id)
		}
		// /shorts/{id}, /embed/{id}, /live/{id}
		for _, prefix := range []string{"/shorts/", "/embed/", "/live/"} {
			if strings.HasPrefix(u.Path, prefix) {
				id := strings.TrimPrefix(u.Path, prefix)
				if i := strings.IndexByte(id, '/'); i >= 0 {
					id = id[:i]
				}
				return validateID(id)
			}
		}
	}
	return ""
}

func validateID(id string) string {
	if videoIDRE.MatchString(id) {
		return id
	}
	return ""
}
