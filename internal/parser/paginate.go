package parser

import (
	"log/slog"
	"regexp"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// PageBreak is the marker that splits a document into pages.
const PageBreak = "<!--nextpage-->"

var pageBreakPattern = regexp.MustCompile(`(?i)<!--nextpage-->`)

// SplitPages splits content at page-break markers. The result always has at
// least one element.
func SplitPages(content string) []string {
	return pageBreakPattern.Split(content, -1)
}

// Paginate scans every page of a document in order, threading one ScanState
// through all pages so anchor ids are unique document-wide.
func Paginate(content string, log *slog.Logger) *doctree.ParsedDocument {
	state := NewScanState(log)
	pages := SplitPages(content)

	doc := &doctree.ParsedDocument{
		PageContent: make(map[int]string, len(pages)),
	}
	for i, page := range pages {
		number := i + 1
		annotated, headings := state.ScanPage(page, number)
		doc.PageContent[number] = annotated
		doc.Headings = append(doc.Headings, headings...)
	}
	doc.PageMap = state.PageMap
	doc.ExistingPageMap = state.ExistingPageMap

	return doc
}
