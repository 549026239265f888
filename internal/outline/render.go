package outline

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/dgallion1/docoutline/internal/anchor"
	"github.com/dgallion1/docoutline/internal/doctree"
)

const (
	DefaultHeading    = "Contents"
	DefaultCloseLabel = "Close contents"
)

// RenderOptions control the navigation wrapper.
type RenderOptions struct {
	Sticky     bool
	Class      string // extra classes for the <nav>
	Heading    string
	CloseLabel string
}

// Render produces the outline navigation markup. It returns "" when there is
// nothing to link to.
func Render(nodes []*doctree.Node, r Resolver, opts RenderOptions) string {
	var list strings.Builder
	if !renderList(&list, nodes, r) {
		return ""
	}

	classes := []string{"outline"}
	if opts.Sticky {
		classes = append(classes, "outline--sticky")
	}
	if extra := anchor.SanitizeClassList(opts.Class); extra != "" {
		classes = append(classes, extra)
	}
	heading := opts.Heading
	if heading == "" {
		heading = DefaultHeading
	}
	closeLabel := opts.CloseLabel
	if closeLabel == "" {
		closeLabel = DefaultCloseLabel
	}

	var b strings.Builder
	b.WriteString(`<nav class="`)
	b.WriteString(html.EscapeString(strings.Join(classes, " ")))
	b.WriteString(`"><div class="outline-inner"><div class="outline-header"><h2 class="outline-heading">`)
	b.WriteString(html.EscapeString(heading))
	b.WriteString(`</h2><button type="button" class="outline-close" aria-label="`)
	b.WriteString(html.EscapeString(closeLabel))
	b.WriteString(`">&times;</button></div>`)
	b.WriteString(list.String())
	b.WriteString(`</div></nav>`)
	return b.String()
}

// renderList writes a <ul> for nodes and reports whether any item was written.
func renderList(b *strings.Builder, nodes []*doctree.Node, r Resolver) bool {
	var items strings.Builder
	for _, n := range nodes {
		id := anchor.Sanitize(n.ID)
		title := strings.TrimSpace(n.Title)
		if id == "" || title == "" {
			continue
		}

		items.WriteString(`<li><a class="outline-link" href="`)
		items.WriteString(html.EscapeString(r.Href(id)))
		items.WriteString(`">`)
		if n.Number != "" {
			items.WriteString(`<span class="outline-number">`)
			items.WriteString(html.EscapeString(n.Number))
			items.WriteString(`</span> `)
		}
		items.WriteString(`<span class="outline-title">`)
		items.WriteString(html.EscapeString(title))
		items.WriteString(`</span></a>`)
		renderList(&items, n.Children, r)
		items.WriteString(`</li>`)
	}
	if items.Len() == 0 {
		return false
	}
	b.WriteString("<ul>")
	b.WriteString(items.String())
	b.WriteString("</ul>")
	return true
}
