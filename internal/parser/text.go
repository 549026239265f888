package parser

import (
	"bufio"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// TextImporter handles plain text files. Blank lines separate paragraphs and
// a form feed starts a new page.
type TextImporter struct{}

func (p *TextImporter) Import(r io.Reader, filename string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	pages := strings.Split(string(data), "\f")
	out := make([]string, 0, len(pages))
	for _, page := range pages {
		paragraphs, err := splitParagraphs(page)
		if err != nil {
			return "", err
		}
		out = append(out, paragraphMarkup(paragraphs))
	}
	return strings.Join(out, PageBreak), nil
}

func splitParagraphs(text string) ([]string, error) {
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var paragraphs []string
	var current strings.Builder

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			if current.Len() > 0 {
				paragraphs = append(paragraphs, current.String())
				current.Reset()
			}
		} else {
			if current.Len() > 0 {
				current.WriteString("\n")
			}
			current.WriteString(line)
		}
	}
	if current.Len() > 0 {
		paragraphs = append(paragraphs, current.String())
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return paragraphs, nil
}

func paragraphMarkup(paragraphs []string) string {
	var buf strings.Builder
	for _, para := range paragraphs {
		buf.WriteString("<p>")
		buf.WriteString(html.EscapeString(para))
		buf.WriteString("</p>\n")
	}
	return buf.String()
}
