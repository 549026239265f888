package outline

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/dgallion1/docoutline/internal/anchor"
	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/parser"
)

// itemMarker matches [item ...], [item .../] and [/item].
var itemMarker = regexp.MustCompile(`(?i)\[(/?)item\b([^\]]*?)(/?)\]`)

// rawItem is a marker as written, before target validation.
type rawItem struct {
	attrs    map[string]string
	text     []string
	children []*rawItem
}

// BuildManualTree parses explicit [item target="id"]label[/item] markers into
// an outline forest. Markers nest; a marker left open is closed at the end
// of its enclosing content, and a stray [/item] is ignored.
//
// Targets must exist in existing, the map of author-written ids. A marker
// whose target is empty or unknown is dropped together with its nested
// markers, and the drop is logged.
func BuildManualTree(content string, existing doctree.PageMap, log *slog.Logger) []*doctree.Node {
	if log == nil {
		log = slog.Default()
	}
	return resolveItems(parseItems(content), existing, log)
}

func parseItems(content string) []*rawItem {
	root := &rawItem{}
	stack := []*rawItem{root}
	last := 0

	addText := func(s string) {
		top := stack[len(stack)-1]
		if top != root && strings.TrimSpace(s) != "" {
			top.text = append(top.text, s)
		}
	}

	for _, m := range itemMarker.FindAllStringSubmatchIndex(content, -1) {
		addText(content[last:m[0]])
		last = m[1]

		closing := m[3] > m[2]
		selfClosing := m[7] > m[6]

		if closing {
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
			continue
		}

		item := &rawItem{attrs: parser.ParseShortcodeAttributes(content[m[4]:m[5]])}
		top := stack[len(stack)-1]
		top.children = append(top.children, item)
		if !selfClosing {
			stack = append(stack, item)
		}
	}
	addText(content[last:])

	return root.children
}

func resolveItems(items []*rawItem, existing doctree.PageMap, log *slog.Logger) []*doctree.Node {
	var nodes []*doctree.Node
	for _, it := range items {
		raw := it.attrs["target"]
		target := anchor.Sanitize(raw)
		if target == "" {
			log.Warn("manual outline item without target", "target", raw)
			continue
		}
		if !existing.Has(target) {
			log.Warn("manual outline target not found", "target", target)
			continue
		}

		title := parser.NormalizeTitle(strings.Join(it.text, " "))
		if title == "" {
			title = target
		}
		nodes = append(nodes, &doctree.Node{
			ID:       target,
			Title:    title,
			Children: resolveItems(it.children, existing, log),
		})
	}
	return nodes
}
