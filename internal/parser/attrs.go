package parser

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// attrPattern matches name=value pairs with double-quoted, single-quoted or bare values.
// Captures: 1=name, 2=double-quoted, 3=single-quoted, 4=bare
var attrPattern = regexp.MustCompile(`([a-zA-Z_:][a-zA-Z0-9:._-]*)\s*=\s*(?:"([^"]*)"|'([^']*)'|([^\s"'>]+))`)

// ParseAttributes parses a raw tag attribute block into a map.
// Names are lower-cased and values are entity-decoded; later duplicates win.
// Valueless attributes (e.g. "hidden") are ignored.
func ParseAttributes(block string) map[string]string {
	attrs := make(map[string]string)
	for _, m := range attrPattern.FindAllStringSubmatch(block, -1) {
		var val string
		switch {
		case m[2] != "":
			val = m[2]
		case m[3] != "":
			val = m[3]
		default:
			val = m[4]
		}
		attrs[strings.ToLower(m[1])] = html.UnescapeString(val)
	}
	return attrs
}

// emptyIDAttr matches an id attribute whose value is blank.
var emptyIDAttr = regexp.MustCompile(`(?i)(^|\s)id\s*=\s*(?:"\s*"|'\s*')`)

// withInjectedID appends id="..." to an attribute block, replacing a blank id
// attribute if one exists so the tag never carries two ids.
func withInjectedID(block, id string) string {
	block = strings.TrimSpace(emptyIDAttr.ReplaceAllString(block, "$1"))
	attr := `id="` + html.EscapeString(id) + `"`
	if block == "" {
		return " " + attr
	}
	return " " + block + " " + attr
}
