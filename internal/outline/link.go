package outline

import (
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// Permalinker produces the URL of one page of a paginated document.
type Permalinker interface {
	PageURL(documentID string, page int) string
}

// PermalinkFunc adapts an ordinary function to Permalinker.
type PermalinkFunc func(documentID string, page int) string

// PageURL calls f(documentID, page).
func (f PermalinkFunc) PageURL(documentID string, page int) string {
	return f(documentID, page)
}

// Resolver turns outline ids into hrefs relative to the page being viewed.
type Resolver struct {
	DocumentID  string
	CurrentPage int
	PageMap     doctree.PageMap
	Permalinks  Permalinker
}

// Href returns "#id" when id lives on the current page and
// PageURL(doc, page)+"#id" otherwise. Ids missing from the page map are
// treated as living on page 1.
func (r Resolver) Href(id string) string {
	fragment := "#" + encodeFragment(id)

	target := r.PageMap[id]
	if target < 1 {
		target = 1
	}
	current := r.CurrentPage
	if current < 1 {
		current = 1
	}
	if target == current || r.Permalinks == nil {
		return fragment
	}
	return r.Permalinks.PageURL(r.DocumentID, target) + fragment
}

// encodeFragment percent-encodes every byte outside [A-Za-z0-9-_.~].
// url.PathEscape leaves ':' and other sub-delims alone, which is not what
// anchor fragments need here.
func encodeFragment(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case 'A' <= c && c <= 'Z', 'a' <= c && c <= 'z', '0' <= c && c <= '9',
			c == '-', c == '_', c == '.', c == '~':
			b.WriteByte(c)
		default:
			b.WriteByte('%')
			b.WriteByte(hex[c>>4])
			b.WriteByte(hex[c&0x0f])
		}
	}
	return b.String()
}
