// Package slugify normalizes titles into URL path segments
package slugify

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes accented characters and drops the combining marks,
// so "café" folds to "cafe" before the ASCII pass
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify lowercases, folds accents, and reduces every run of non-alphanumeric
// characters to a single hyphen with no leading or trailing hyphens. The
// result may be empty when the input holds nothing slug-worthy
func Slugify(s string) string {
	if folded, _, err := transform.String(stripMarks, s); err == nil {
		s = folded
	}

	var b strings.Builder
	b.Grow(len(s))
	pendingHyphen := false
	for _, r := range strings.ToLower(s) {
		alnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !alnum {
			pendingHyphen = b.Len() > 0
			continue
		}
		if pendingHyphen {
			b.WriteByte('-')
			pendingHyphen = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// WithNumber appends a stable numeric disambiguator, or stands in for the
// whole slug when the title produced nothing usable
func WithNumber(slug string, number int) string {
	if slug == "" {
		return strconv.Itoa(number)
	}
	return slug + "-" + strconv.Itoa(number)
}
