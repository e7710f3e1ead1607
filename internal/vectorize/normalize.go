// Package vectorize embeds short skill strings as TF-IDF weighted character
// n-gram vectors so they can be compared by cosine similarity.
package vectorize

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/job-recommender/internal/skills"
	"golang.org/x/text/encoding/charmap"
)

var (
	removedChars  = strings.NewReplacer(")", "", "(", "", ".", "", "|", "", "[", "", "]", "", "{", "", "}", "", "'", "")
	spaceRun      = regexp.MustCompile(` +`)
	finalStripped = regexp.MustCompile(`[,\-./]|\sBD`)
)

// mojibakeMarkers are the lead characters left behind when UTF-8 text is
// decoded as Windows-1252 ("Ã©" for "é", "â€™" for "’").
var mojibakeMarkers = []string{"Ã", "Â", "â€"}

// Normalize prepares a string for n-gram extraction. The steps run in a fixed
// order: repair mojibake, drop non-ASCII, lowercase, remove brackets, dots,
// pipes and quotes, spell out "&", turn commas and hyphens into spaces, title
// case, collapse spaces, pad with one space on each side, and finally strip
// ",-./" and any whitespace followed by "BD".
func Normalize(s string) string {
	s = repairMojibake(s)
	s = asciiOnly(s)
	s = strings.ToLower(s)
	s = removedChars.Replace(s)
	s = strings.ReplaceAll(s, "&", "and")
	s = strings.ReplaceAll(s, ",", " ")
	s = strings.ReplaceAll(s, "-", " ")
	s = skills.TitleCase(s)
	s = strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
	s = " " + s + " "
	return finalStripped.ReplaceAllString(s, "")
}

// repairMojibake reverses a single UTF-8 → Windows-1252 misdecode when the
// round trip yields valid UTF-8. Text that does not look garbled is returned unchanged.
func repairMojibake(s string) string {
	if !containsAny(s, mojibakeMarkers) {
		return s
	}
	raw, err := charmap.Windows1252.NewEncoder().String(s)
	if err != nil || !utf8.ValidString(raw) || raw == s {
		return s
	}
	return raw
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func asciiOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] < utf8.RuneSelf {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

