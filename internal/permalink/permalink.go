// Package permalink builds page URLs for paginated documents.
package permalink

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/dgallion1/docoutline/internal/outline"
)

// Pretty links pages as <base>/<doc>/<n>/. Page 1 is <base>/<doc>/.
type Pretty struct {
	Base string
}

func (p Pretty) PageURL(documentID string, page int) string {
	u := strings.TrimRight(p.Base, "/") + "/" + url.PathEscape(documentID) + "/"
	if page > 1 {
		u += strconv.Itoa(page) + "/"
	}
	return u
}

// Query links pages as <base>/<doc>?page=n. Page 1 is <base>/<doc>.
type Query struct {
	Base string
}

func (q Query) PageURL(documentID string, page int) string {
	u := strings.TrimRight(q.Base, "/") + "/" + url.PathEscape(documentID)
	if page > 1 {
		u += "?page=" + strconv.Itoa(page)
	}
	return u
}

// New returns the strategy named by style ("pretty" or "query").
func New(style, base string) (outline.Permalinker, error) {
	switch strings.ToLower(strings.TrimSpace(style)) {
	case "", "pretty":
		return Pretty{Base: base}, nil
	case "query":
		return Query{Base: base}, nil
	}
	return nil, fmt.Errorf("unknown permalink style %q", style)
}
