package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dgallion1/docoutline/internal/engine"
	"github.com/dgallion1/docoutline/internal/parser"
)

// readSource returns the document markup at path. "-" reads markup from
// stdin as is; files are converted by the importer for their extension.
func (a *app) readSource(stdin io.Reader, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	content, err := parser.Import(f, filepath.Base(path), parser.ImportOptions{
		PDFFallbackPdftotext: a.v.GetBool("pdftotext"),
	})
	if err != nil {
		return "", fmt.Errorf("import %s: %w", path, err)
	}
	return content, nil
}

// request builds the engine request for the document at path.
func (a *app) request(ctx context.Context, stdin io.Reader, path string) (engine.Request, error) {
	if err := ctx.Err(); err != nil {
		return engine.Request{}, err
	}
	content, err := a.readSource(stdin, path)
	if err != nil {
		return engine.Request{}, err
	}
	return engine.Request{
		DocumentID:  a.v.GetString("document-id"),
		Content:     content,
		Options:     a.options(),
		CurrentPage: max(1, a.v.GetInt("page")),
	}, nil
}
