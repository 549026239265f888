package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Importer converts a source document into markup the outline engine can
// scan, with pages separated by PageBreak.
type Importer interface {
	Import(r io.Reader, filename string) (string, error)
}

// SupportedExtensions lists file extensions this service can import.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate importer for a filename.
func ForFile(filename string) (Importer, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextImporter{}, nil
	case ".md", ".markdown":
		return &MarkdownImporter{}, nil
	case ".html", ".htm":
		return &HTMLImporter{}, nil
	case ".pdf":
		return &PDFImporter{}, nil
	case ".docx":
		return &DOCXImporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// ImportOptions tune individual importers.
type ImportOptions struct {
	PDFFallbackPdftotext bool
}

// Import converts r to paginated markup using the importer for filename.
func Import(r io.Reader, filename string, opts ImportOptions) (string, error) {
	imp, err := ForFile(filename)
	if err != nil {
		return "", err
	}
	if p, ok := imp.(*PDFImporter); ok {
		p.FallbackPdftotext = opts.PDFFallbackPdftotext
	}
	return imp.Import(r, filename)
}
