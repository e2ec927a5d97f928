// Package sanitize cleans user-supplied text before it is stored.
package sanitize

import (
	"html"
	"regexp"
	"strings"
	"unicode"
)

var (
	tagPattern   = regexp.MustCompile(`<[^>]*>`)
	spacePattern = regexp.MustCompile(`\s+`)
)

// stripTags removes markup, decodes entities, and strips again so encoded
// tags ("&lt;b&gt;") cannot survive. Control characters other than line
// breaks and tabs are dropped.
func stripTags(s string) string {
	s = tagPattern.ReplaceAllString(s, "")
	s = tagPattern.ReplaceAllString(html.UnescapeString(s), "")
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			return -1
		}
		return r
	}, s)
}

// Text is for multi-line notes. Line breaks are kept.
func Text(s string) string {
	return strings.TrimSpace(stripTags(s))
}

// Field is for single-line values such as names and CSV cells.
func Field(s string) string {
	return strings.TrimSpace(spacePattern.ReplaceAllString(stripTags(s), " "))
}

// TextPtr applies Text to an optional value; blank results become nil.
func TextPtr(s *string) *string {
	if s == nil {
		return nil
	}
	if out := Text(*s); out != "" {
		return &out
	}
	return nil
}
