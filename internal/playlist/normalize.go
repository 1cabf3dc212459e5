package playlist

import (
	"regexp"
	"strings"
)

var numberingRE = regexp.MustCompile(`^[0-9]+[.)]?\s*`)

// StripNumbering removes a leading list number such as "1." or "2)".
func StripNumbering(line string) string {
	return numberingRE.ReplaceAllString(line, "")
}

// NormalizeLine turns a candidate line into "Title - Artist". Separators are
// tried strictest first: " - ", then a bare "-", then the last word as the
// artist. Only the first of several comma separated artists is kept.
// ok is false when no title and artist can be recovered.
func NormalizeLine(line string) (string, bool) {
	var title, artist string
	switch {
	case strings.Contains(line, " - "):
		title, artist, _ = strings.Cut(line, " - ")
	case strings.Contains(line, "-"):
		title, artist, _ = strings.Cut(line, "-")
	default:
		words := strings.Fields(line)
		if len(words) < 2 {
			return "", false
		}
		title = strings.Join(words[:len(words)-1], " ")
		artist = words[len(words)-1]
	}

	if first, _, found := strings.Cut(artist, ","); found {
		artist = first
	}
	title = strings.TrimSpace(title)
	artist = strings.TrimSpace(artist)
	if title == "" || artist == "" {
		return "", false
	}
	return title + " - " + artist, true
}
