package main

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/engine"
)

type outlineOutput struct {
	DocumentID string          `json:"document_id,omitempty" yaml:"document_id,omitempty"`
	Source     string          `json:"source" yaml:"source"`
	Mode       string          `json:"mode" yaml:"mode"`
	Depth      int             `json:"depth" yaml:"depth"`
	Numbering  bool            `json:"numbering" yaml:"numbering"`
	Pages      int             `json:"pages" yaml:"pages"`
	PageMap    doctree.PageMap `json:"page_map" yaml:"page_map"`
	Nodes      []nodeOutput    `json:"nodes" yaml:"nodes"`
}

type nodeOutput struct {
	ID       string       `json:"id" yaml:"id"`
	Title    string       `json:"title" yaml:"title"`
	Level    int          `json:"level,omitempty" yaml:"level,omitempty"`
	Number   string       `json:"number,omitempty" yaml:"number,omitempty"`
	Page     int          `json:"page" yaml:"page"`
	Children []nodeOutput `json:"children,omitempty" yaml:"children,omitempty"`
}

func newOutlineOutput(source, documentID string, res *engine.Result) outlineOutput {
	return outlineOutput{
		DocumentID: documentID,
		Source:     source,
		Mode:       string(res.Options.Mode),
		Depth:      res.Options.Depth,
		Numbering:  res.Options.Numbering,
		Pages:      res.Document.Pages(),
		PageMap:    res.Document.PageMap,
		Nodes:      toNodeOutputs(res.Nodes, res.Document.PageMap),
	}
}

func toNodeOutputs(nodes []*doctree.Node, pages doctree.PageMap) []nodeOutput {
	out := make([]nodeOutput, 0, len(nodes))
	for _, n := range nodes {
		page := pages[n.ID]
		if page == 0 {
			page = 1
		}
		out = append(out, nodeOutput{
			ID:       n.ID,
			Title:    n.Title,
			Level:    n.Level,
			Number:   n.Number,
			Page:     page,
			Children: toNodeOutputs(n.Children, pages),
		})
	}
	return out
}

// writeOutput encodes data to w as yaml or json.
func writeOutput(w io.Writer, format string, data any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case "yaml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(data)
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}
