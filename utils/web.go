package utils

import (
	"net/url"
	"path"
	"strings"
)

// ExtFromURL sniffs a lowercase extension (without the dot) from the
// URL path. Returns "" when the path carries none; callers supply
// their own fallback.
func ExtFromURL(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	ext := path.Ext(u.Path)
	if ext == "" {
		return ""
	}
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, r := range ext {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
