package outline

import (
	"strconv"
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// ApplyNumbering labels every node with its hierarchical position:
// "1.", "2." at the top level and "1.1", "1.2.3" below.
func ApplyNumbering(nodes []*doctree.Node) {
	applyNumbering(nodes, nil)
}

func applyNumbering(nodes []*doctree.Node, prefix []string) {
	for i, n := range nodes {
		path := append(prefix[:len(prefix):len(prefix)], strconv.Itoa(i+1))
		if len(path) == 1 {
			n.Number = path[0] + "."
		} else {
			n.Number = strings.Join(path, ".")
		}
		applyNumbering(n.Children, path)
	}
}
