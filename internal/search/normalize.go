package search

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
	multipleHyphens = regexp.MustCompile(`-+`)
)

// Slugify converts a vocabulary entry to a stable filter slug.
// "Home Décor" -> "home-decor", "Sofas & Chairs" -> "sofas-chairs".
// Vocabulary entries are case-sensitive as stored; slugs exist only
// for exact-match filtering in the index.
func Slugify(s string) string {
	// Decompose accented characters, then drop the combining marks
	// along with everything else outside ASCII.
	s = norm.NFKD.String(s)
	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)

	s = strings.ToLower(s)
	s = nonAlphanumeric.ReplaceAllString(s, "-")
	s = multipleHyphens.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
