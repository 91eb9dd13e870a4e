package utils

import (
	"regexp"
	"strings"
)

var imageSizeRe = regexp.MustCompile(`t_\w+`)

// CatalogImageURL rewrites a catalog CDN image URL to the requested
// size derivative (t_cover_big, t_screenshot_big, ...) and forces a
// protocol on protocol-relative URLs.
func CatalogImageURL(url, size string) string {
	if strings.HasPrefix(url, "//") {
		url = "https:" + url
	}
	return imageSizeRe.ReplaceAllString(url, size)
}
