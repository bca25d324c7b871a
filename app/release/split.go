package release

import (
	"regexp"
	"strings"
)

// Separators are tried in order; the first one present in the title wins.
var Separators = []string{" / ", " – ", " - ", " // "}

var yearTagRe = regexp.MustCompile(`\s*\[\d{4}\]\s*$`)

// SplitTitle splits a raw listing title into artist and album. A title
// without any known separator is treated as artist only.
func SplitTitle(title string) (artist, album string) {
	title = strings.TrimSpace(title)

	for _, sep := range Separators {
		if idx := strings.Index(title, sep); idx >= 0 {
			artist = strings.TrimSpace(title[:idx])
			album = yearTagRe.ReplaceAllString(title[idx+len(sep):], "")
			return artist, strings.TrimSpace(album)
		}
	}

	return title, ""
}
