// Package engine computes outlines for documents, caching the parse of each
// document between requests.
package engine

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/dgallion1/docoutline/internal/cache"
	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/parser"
)

// Sentinel marks page content that already carries an injected outline.
const Sentinel = "<!--outline-injected-->"

// Request describes one outline computation.
type Request struct {
	DocumentID string
	Content    string
	Options    outline.Options

	// ManualContent holds the [item] markers for manual mode. When empty,
	// the content of the document's first enclosing [outline] shortcode is used.
	ManualContent string

	CurrentPage int
}

// Result is a computed outline with the parse it was built from.
type Result struct {
	Nodes    []*doctree.Node
	Document *doctree.ParsedDocument
	Options  outline.Options
	CacheHit bool
}

type Engine struct {
	cache      *cache.Cache // nil disables caching
	permalinks outline.Permalinker
	stats      *Stats
	log        *slog.Logger
}

func New(c *cache.Cache, permalinks outline.Permalinker, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		cache:      c,
		permalinks: permalinks,
		stats:      NewStats(time.Hour),
		log:        log,
	}
}

func (e *Engine) Stats() *Stats { return e.stats }

// Parse returns the paginated, id-annotated document, from cache when possible.
// Cache failures are logged and the document is parsed directly.
func (e *Engine) Parse(ctx context.Context, req Request) (*doctree.ParsedDocument, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	opts := req.Options.Normalize()
	useCache := e.cache != nil && req.DocumentID != ""

	var key string
	if useCache {
		key = cache.Key(req.DocumentID, string(opts.Mode), opts.Depth, opts.Numbering)
		doc, ok, err := e.cache.Load(ctx, key)
		switch {
		case err != nil:
			e.stats.CacheError()
			e.log.Warn("cache load failed", "key", key, "error", err)
		case ok:
			e.stats.CacheHit()
			return doc, true, nil
		default:
			e.stats.CacheMiss()
		}
	}

	start := time.Now()
	doc := parser.Paginate(req.Content, e.log.With("document_id", req.DocumentID))
	e.stats.Record(time.Since(start))

	if useCache {
		if err := e.cache.Save(ctx, req.DocumentID, key, doc); err != nil {
			e.stats.CacheError()
			e.log.Warn("cache save failed", "key", key, "error", err)
		}
	}
	return doc, false, nil
}

// Outline builds the outline forest for req.
func (e *Engine) Outline(ctx context.Context, req Request) (*Result, error) {
	opts := req.Options.Normalize()
	req.Options = opts

	doc, hit, err := e.Parse(ctx, req)
	if err != nil {
		return nil, err
	}
	log := e.log.With("document_id", req.DocumentID)

	var nodes []*doctree.Node
	if opts.Mode == outline.ModeManual {
		markers := req.ManualContent
		if markers == "" {
			if sc, ok := parser.FindOutlineShortcode(req.Content); ok {
				markers = sc.Content
			}
		}
		nodes = outline.BuildManualTree(markers, doc.ExistingPageMap, log)
	} else {
		nodes = outline.BuildTree(doc.Headings, opts.Mode, opts.Depth, log)
	}
	if opts.Numbering {
		outline.ApplyNumbering(nodes)
	}

	return &Result{Nodes: nodes, Document: doc, Options: opts, CacheHit: hit}, nil
}

// Render returns the outline navigation for req.CurrentPage, or "" when the
// outline is empty.
func (e *Engine) Render(ctx context.Context, req Request) (string, error) {
	res, err := e.Outline(ctx, req)
	if err != nil {
		return "", err
	}
	return e.render(req, res), nil
}

func (e *Engine) render(req Request, res *Result) string {
	if len(res.Document.PageMap) == 0 {
		return ""
	}
	r := outline.Resolver{
		DocumentID:  req.DocumentID,
		CurrentPage: req.CurrentPage,
		PageMap:     res.Document.PageMap,
		Permalinks:  e.permalinks,
	}
	return outline.Render(res.Nodes, r, outline.RenderOptions{
		Sticky: res.Options.Sticky,
		Class:  res.Options.Class,
	})
}

// FilterPage prepares one page of a document for display. Documents without
// an [outline] shortcode pass through unchanged. Otherwise the page gets its
// injected heading ids (except in manual mode), loses its shortcodes, and is
// prefixed with the outline navigation. Pages already carrying Sentinel are
// returned as they are.
func (e *Engine) FilterPage(ctx context.Context, documentID, content string, page int) (string, error) {
	pages := parser.SplitPages(content)
	page = max(1, min(page, len(pages)))
	pageContent := pages[page-1]

	if !parser.HasOutlineShortcode(content) || strings.Contains(pageContent, Sentinel) {
		return pageContent, nil
	}
	sc, ok := parser.FindOutlineShortcode(content)
	if !ok {
		return pageContent, nil
	}

	opts := outline.OptionsFromAttributes(sc.Attributes)
	if _, set := sc.Attributes["mode"]; !set {
		opts.Mode = outline.ParseMode(parser.DetectOutlineMode(content))
	}
	req := Request{
		DocumentID:    documentID,
		Content:       content,
		Options:       opts,
		ManualContent: sc.Content,
		CurrentPage:   page,
	}
	res, err := e.Outline(ctx, req)
	if err != nil {
		return "", err
	}

	if res.Options.Mode != outline.ModeManual {
		if annotated, ok := res.Document.PageContent[page]; ok {
			pageContent = annotated
		}
	}
	pageContent = parser.RemoveOutlineShortcodes(pageContent)

	nav := e.render(req, res)
	if strings.TrimSpace(nav) == "" {
		return pageContent, nil
	}
	return Sentinel + nav + pageContent, nil
}

// Invalidate drops every cached parse of the document.
func (e *Engine) Invalidate(ctx context.Context, documentID string) (int, error) {
	if e.cache == nil {
		return 0, nil
	}
	n, err := e.cache.InvalidateAll(ctx, documentID)
	if err != nil {
		return 0, err
	}
	e.log.Info("invalidated outline cache", "document_id", documentID, "keys", n)
	return n, nil
}
