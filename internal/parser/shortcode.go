package parser

import (
	"regexp"
	"strings"
)

// Shortcode is a parsed [outline] shortcode: its attributes and, for the
// enclosing form, the content between the open and close tags.
type Shortcode struct {
	Attributes map[string]string
	Content    string
}

var (
	enclosingOutline   = regexp.MustCompile(`(?is)\[outline\b([^\]]*)\](.*?)\[/outline\]`)
	selfClosingOutline = regexp.MustCompile(`(?i)\[outline\b([^\]]*?)/?\]`)
	outlineModeAttr    = regexp.MustCompile(`\[outline\s+[^\]]*mode\s*=\s*["']?([a-zA-Z]+)["']?[^\]]*\]`)

	// Captures: 1/2=double-quoted, 3/4=single-quoted, 5/6=bare, 7=positional quoted, 8=positional bare
	shortcodeAttrPattern = regexp.MustCompile(`([\w-]+)\s*=\s*"([^"]*)"(?:\s|$)|([\w-]+)\s*=\s*'([^']*)'(?:\s|$)|([\w-]+)\s*=\s*([^\s'"]+)(?:\s|$)|"([^"]*)"(?:\s|$)|(\S+)(?:\s|$)`)
)

// HasOutlineShortcode reports whether content contains an [outline] shortcode.
func HasOutlineShortcode(content string) bool {
	return selfClosingOutline.MatchString(content)
}

// FindOutlineShortcode returns the first [outline] shortcode in content,
// preferring the enclosing form [outline ...]...[/outline].
func FindOutlineShortcode(content string) (Shortcode, bool) {
	if m := enclosingOutline.FindStringSubmatch(content); m != nil {
		return Shortcode{
			Attributes: ParseShortcodeAttributes(strings.TrimSpace(m[1])),
			Content:    m[2],
		}, true
	}
	if m := selfClosingOutline.FindStringSubmatch(content); m != nil {
		return Shortcode{
			Attributes: ParseShortcodeAttributes(strings.TrimSpace(m[1])),
		}, true
	}
	return Shortcode{}, false
}

// RemoveOutlineShortcodes strips every [outline] shortcode, enclosing and
// self-closing, from content.
func RemoveOutlineShortcodes(content string) string {
	content = enclosingOutline.ReplaceAllString(content, "")
	return selfClosingOutline.ReplaceAllString(content, "")
}

// DetectOutlineMode returns the lower-cased mode attribute of the first
// [outline] shortcode that declares one, or "" if none does.
func DetectOutlineMode(content string) string {
	if m := outlineModeAttr.FindStringSubmatch(content); m != nil {
		return strings.ToLower(m[1])
	}
	return ""
}

// ParseShortcodeAttributes parses shortcode attributes the way WordPress
// does: name="v", name='v' and name=v pairs, names lower-cased. Positional
// values are ignored.
func ParseShortcodeAttributes(text string) map[string]string {
	attrs := make(map[string]string)
	text = strings.NewReplacer("\u00a0", " ", "\u200b", " ").Replace(text)
	for _, m := range shortcodeAttrPattern.FindAllStringSubmatch(text, -1) {
		switch {
		case m[1] != "":
			attrs[strings.ToLower(m[1])] = m[2]
		case m[3] != "":
			attrs[strings.ToLower(m[3])] = m[4]
		case m[5] != "":
			attrs[strings.ToLower(m[5])] = m[6]
		}
	}
	return attrs
}
