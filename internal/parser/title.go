package parser

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// footnotePattern matches inline footnote references such as <sup><a>1</a></sup>.
var footnotePattern = regexp.MustCompile(`(?is)<sup\b[^>]*>.*?</sup>`)

// NormalizeTitle turns heading or marker inner markup into plain label text:
// footnote superscripts are removed, remaining tags stripped (script and style
// content included), entities decoded and whitespace collapsed.
func NormalizeTitle(inner string) string {
	clean := footnotePattern.ReplaceAllString(inner, " ")
	return collapseSpace(stripTags(clean))
}

// stripTags returns the text content of a markup fragment.
func stripTags(fragment string) string {
	var buf strings.Builder
	z := html.NewTokenizer(strings.NewReader(fragment))
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF or a tokenizer failure; either way keep what we have.
			return buf.String()
		case html.StartTagToken:
			if isRawTextTag(z) {
				skip++
			}
		case html.EndTagToken:
			if isRawTextTag(z) && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip == 0 {
				buf.Write(z.Text())
			}
		}
	}
}

func isRawTextTag(z *html.Tokenizer) bool {
	name, _ := z.TagName()
	switch string(name) {
	case "script", "style":
		return true
	}
	return false
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
