package doctree

// HeadingRecord is one heading tag found while scanning a document, in document order.
type HeadingRecord struct {
	ID    string `json:"id"`
	Level int    `json:"level"` // 1-6
	Title string `json:"title"`
	Page  int    `json:"page"` // 1-based

	// Raw data-outline* attribute values, interpreted by the hybrid tree builder.
	Outline      string `json:"outline,omitempty"`
	OutlineTitle string `json:"outline_title,omitempty"`
	OutlineLevel string `json:"outline_level,omitempty"`
}

// Node is one entry of the outline forest.
type Node struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Level    int     `json:"level,omitempty"` // 0 in manual mode
	Number   string  `json:"number,omitempty"`
	Children []*Node `json:"children,omitempty"`
}

// PageMap maps an anchor id to the page it first appears on.
type PageMap map[string]int

// Has reports whether id is a key of the map.
func (m PageMap) Has(id string) bool {
	_, ok := m[id]
	return ok
}

// ParsedDocument is the cacheable result of scanning a whole document.
type ParsedDocument struct {
	PageMap         PageMap         `json:"page_map"`
	ExistingPageMap PageMap         `json:"existing_page_map"`
	Headings        []HeadingRecord `json:"headings"`
	PageContent     map[int]string  `json:"page_content"`
}

// Pages returns the number of pages in the document.
func (d *ParsedDocument) Pages() int {
	return len(d.PageContent)
}

// Walk visits every node depth-first in sibling order.
func Walk(nodes []*Node, fn func(n *Node, depth int)) {
	var walk func(nodes []*Node, depth int)
	walk = func(nodes []*Node, depth int) {
		for _, n := range nodes {
			fn(n, depth)
			walk(n.Children, depth+1)
		}
	}
	walk(nodes, 0)
}

// Count returns the total number of nodes in the forest.
func Count(nodes []*Node) int {
	n := 0
	Walk(nodes, func(*Node, int) { n++ })
	return n
}
