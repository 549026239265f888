// Package anchor turns arbitrary text into safe anchor identifiers and
// related tokens (cache key segments, CSS classes).
package anchor

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fallback is the slug used when a title has no usable characters.
const Fallback = "section"

var (
	tagPattern     = regexp.MustCompile(`<[^>]*>`)
	unsafeIDChars  = regexp.MustCompile(`[^A-Za-z0-9_:.\-]`)
	slugSeparators = regexp.MustCompile(`[^a-z0-9]+`)
	unsafeKeyChars = regexp.MustCompile(`[^a-z0-9_\-]`)
	unsafeClass    = regexp.MustCompile(`[^A-Za-z0-9_\-]`)
)

// Sanitize strips tags and control characters from raw, trims it, and
// removes everything outside [A-Za-z0-9_:.-].
func Sanitize(raw string) string {
	s := tagPattern.ReplaceAllString(raw, "")
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	s = strings.TrimSpace(s)
	return unsafeIDChars.ReplaceAllString(s, "")
}

// Slugify derives a base anchor id from a heading title.
// Accented letters are transliterated to their ASCII base.
func Slugify(title string) string {
	s := strings.ToLower(transliterate(title))
	s = slugSeparators.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return Fallback
	}
	return s
}

// transliterate decomposes s and drops combining marks ("Crème" -> "Creme").
func transliterate(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// SanitizeKey lower-cases s and keeps only [a-z0-9_-].
func SanitizeKey(s string) string {
	return unsafeKeyChars.ReplaceAllString(strings.ToLower(s), "")
}

// SanitizeClass keeps only characters valid in a single CSS class token.
func SanitizeClass(s string) string {
	return unsafeClass.ReplaceAllString(s, "")
}

// SanitizeClassList cleans a whitespace-separated class list, dropping empty
// and repeated entries while keeping the original order.
func SanitizeClassList(s string) string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range strings.Fields(s) {
		c = SanitizeClass(c)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return strings.Join(out, " ")
}
