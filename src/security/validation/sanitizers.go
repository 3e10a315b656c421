package validation

import (
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// Strict policy: removes all HTML tags and attributes.
	strictHTMLPolicy *bluemonday.Policy
)

func init() {
	strictHTMLPolicy = bluemonday.StrictPolicy()
}

// SanitizeText removes all HTML tags and attributes from an input string.
// Upstream-supplied display strings pass through here before they can reach
// any output surface.
func SanitizeText(s string) string {
	return strictHTMLPolicy.Sanitize(s)
}

// StripUnprintable removes non-printable characters, allowing common
// whitespace like space, tab, newline, and carriage return.
func StripUnprintable(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || r == '\t' || r == '\n' || r == '\r' {
			return r
		}
		return -1
	}, s)
}

// DisplayText is the combined cleanup applied to every display string that
// arrives from the network: HTML stripped, unprintables dropped, whitespace
// trimmed.
func DisplayText(s string) string {
	return strings.TrimSpace(StripUnprintable(SanitizeText(s)))
}
