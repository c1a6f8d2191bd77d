package messaging

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// maxStripPasses bounds re-stripping of markup that was hidden behind
// entities, e.g. "&lt;b&gt;"
const maxStripPasses = 4

var stripPolicy = bluemonday.StrictPolicy()

// StripTags removes every HTML tag from s and returns plain text. Entities are
// decoded so the result is stored as the user typed it, minus markup. The
// result never contains a "<" that decoding produced from an entity.
func StripTags(s string) string {
	for i := 0; i < maxStripPasses; i++ {
		next := html.UnescapeString(stripPolicy.Sanitize(s))
		if next == s {
			return next
		}
		s = next
	}

	// Still changing: s was decoded but not sanitized since
	clean := stripPolicy.Sanitize(s)
	if plain := html.UnescapeString(clean); !strings.Contains(plain, "<") {
		return plain
	}
	return clean
}
