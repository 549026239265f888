package parser

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/dgallion1/docoutline/internal/anchor"
	"github.com/dgallion1/docoutline/internal/doctree"
)

// ScanState carries the collision-tracking state shared by every page of one
// document parse. It must not be reused across documents.
type ScanState struct {
	UsedIDs         map[string]bool
	PageMap         doctree.PageMap
	ExistingPageMap doctree.PageMap

	log *slog.Logger
}

// NewScanState returns an empty accumulator for a single document parse.
func NewScanState(log *slog.Logger) *ScanState {
	if log == nil {
		log = slog.Default()
	}
	return &ScanState{
		UsedIDs:         make(map[string]bool),
		PageMap:         make(doctree.PageMap),
		ExistingPageMap: make(doctree.PageMap),
		log:             log,
	}
}

// headingTag is one matched <hN ...>...</hN> element, as byte offsets into the page.
type headingTag struct {
	start, end int    // whole element
	level      int
	nameEnd    int    // offset just past "<hN"
	openEnd    int    // offset just past the open tag's ">"
	attrs      string // raw attribute block between "<hN" and ">"
	inner      string
}

// ScanPage finds every heading on one page, injects an id into headings that
// lack one, and returns the annotated markup with the page's heading records.
// Markup outside rewritten open tags is returned byte-for-byte.
func (s *ScanState) ScanPage(markup string, page int) (string, []doctree.HeadingRecord) {
	tags := findHeadings(markup)
	if len(tags) == 0 {
		return markup, nil
	}

	var (
		out      strings.Builder
		headings = make([]doctree.HeadingRecord, 0, len(tags))
		last     int
	)
	out.Grow(len(markup) + 16*len(tags))

	for _, tag := range tags {
		attrs := ParseAttributes(tag.attrs)
		id := strings.TrimSpace(attrs["id"])
		title := NormalizeTitle(tag.inner)

		out.WriteString(markup[last:tag.start])
		last = tag.end

		if id != "" {
			if s.UsedIDs[id] {
				s.log.Warn("duplicate heading id", "id", id, "page", page)
			} else {
				s.UsedIDs[id] = true
			}
			if !s.ExistingPageMap.Has(id) {
				s.ExistingPageMap[id] = page
			}
			out.WriteString(markup[tag.start:tag.end])
		} else {
			id = s.uniqueID(title)
			out.WriteString(markup[tag.start:tag.nameEnd])
			out.WriteString(withInjectedID(tag.attrs, id))
			out.WriteString(">")
			out.WriteString(markup[tag.openEnd:tag.end])
		}

		if !s.PageMap.Has(id) {
			s.PageMap[id] = page
		}

		headings = append(headings, doctree.HeadingRecord{
			ID:           id,
			Level:        tag.level,
			Title:        title,
			Page:         page,
			Outline:      attrs["data-outline"],
			OutlineTitle: attrs["data-outline-title"],
			OutlineLevel: attrs["data-outline-level"],
		})
	}
	out.WriteString(markup[last:])

	return out.String(), headings
}

// uniqueID generates a slug for title that is not yet in use and reserves it.
func (s *ScanState) uniqueID(title string) string {
	base := anchor.Slugify(title)
	id := base
	for suffix := 2; s.UsedIDs[id]; suffix++ {
		id = base + "-" + strconv.Itoa(suffix)
	}
	s.UsedIDs[id] = true
	return id
}

// findHeadings locates well-formed heading elements in document order.
// A candidate that has no closing ">" or no matching "</hN>" is skipped and
// scanning resumes one byte later, so malformed tags are left untouched.
func findHeadings(markup string) []headingTag {
	lower := asciiLower(markup)
	var tags []headingTag

	for pos := 0; pos < len(lower); {
		rel := strings.Index(lower[pos:], "<h")
		if rel == -1 {
			break
		}
		start := pos + rel
		tag, ok := matchHeading(markup, lower, start)
		if !ok {
			pos = start + 1
			continue
		}
		tags = append(tags, tag)
		pos = tag.end
	}
	return tags
}

// matchHeading tries to match a heading element beginning at start ("<h").
func matchHeading(markup, lower string, start int) (headingTag, bool) {
	digit := start + 2
	if digit >= len(lower) || lower[digit] < '1' || lower[digit] > '6' {
		return headingTag{}, false
	}
	nameEnd := digit + 1
	if nameEnd < len(lower) && isWordByte(lower[nameEnd]) {
		return headingTag{}, false // e.g. <h1x> or <h12>
	}

	gt := strings.IndexByte(lower[nameEnd:], '>')
	if gt == -1 {
		return headingTag{}, false
	}
	openEnd := nameEnd + gt + 1

	closing := "</h" + string(lower[digit]) + ">"
	ci := strings.Index(lower[openEnd:], closing)
	if ci == -1 {
		return headingTag{}, false
	}
	closeStart := openEnd + ci

	return headingTag{
		start:   start,
		end:     closeStart + len(closing),
		level:   int(lower[digit] - '0'),
		nameEnd: nameEnd,
		openEnd: openEnd,
		attrs:   markup[nameEnd : openEnd-1],
		inner:   markup[openEnd:closeStart],
	}, true
}

func isWordByte(b byte) bool {
	return b == '_' || ('0' <= b && b <= '9') || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}

// asciiLower lower-cases ASCII letters only, so byte offsets stay aligned
// with the original string.
func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
