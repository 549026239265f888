package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/engine"
	"github.com/dgallion1/docoutline/internal/parser"
)

// Outliner is the part of the engine a worker drives.
type Outliner interface {
	Outline(ctx context.Context, req engine.Request) (*engine.Result, error)
	Invalidate(ctx context.Context, documentID string) (int, error)
}

// Worker processes a single warming job.
type Worker struct {
	engine    Outliner
	log       *slog.Logger
	importOpt parser.ImportOptions

	maxConcurrent int
}

func NewWorker(eng Outliner, log *slog.Logger, importOpt parser.ImportOptions, maxConcurrent int) *Worker {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Worker{
		engine:        eng,
		log:           log,
		importOpt:     importOpt,
		maxConcurrent: maxConcurrent,
	}
}

// Process imports the job's source if needed, then computes every requested
// outline variant so later requests hit the cache.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID)

	// Phase 1: Import
	content := job.Content()
	if data := job.FileData(); data != nil {
		job.SetStatus(StatusImporting, "importing")
		imported, err := parser.Import(bytes.NewReader(data), job.Filename, w.importOpt)
		if err != nil {
			log.Error("import failed", "error", err)
			job.AddError(fmt.Sprintf("import: %s", err))
			job.SetStatus(StatusFailed, "importing")
			return
		}
		content = imported
		job.SetContent(content)
		job.SetFileData(nil)
	}
	job.SetContentHash(ContentHashHex([]byte(content)))

	// Phase 2: Invalidate stale entries and parse.
	job.SetStatus(StatusParsing, "parsing")
	// Cache stores retry their own transient failures.
	if job.Refresh {
		if _, err := w.engine.Invalidate(ctx, job.DocID); err != nil {
			log.Error("invalidate failed", "error", err)
			job.AddError(fmt.Sprintf("invalidate: %s", err))
			job.SetStatus(StatusFailed, "parsing")
			return
		}
	}

	// Phase 3: Build each variant with bounded concurrency.
	job.SetStatus(StatusBuilding, "building")
	type variantResult struct {
		res *engine.Result
		err error
		idx int
	}
	results := make(chan variantResult, len(job.Variants))
	sem := make(chan struct{}, w.maxConcurrent)

	for i, opts := range job.Variants {
		sem <- struct{}{}
		go func() {
			defer func() { <-sem }()
			res, err := w.engine.Outline(ctx, engine.Request{
				DocumentID: job.DocID,
				Content:    content,
				Options:    opts,
			})
			results <- variantResult{res: res, err: err, idx: i}
		}()
	}

	built := 0
	for range job.Variants {
		r := <-results
		if r.err != nil {
			log.Error("outline failed", "variant", r.idx, "error", r.err)
			job.AddError(fmt.Sprintf("variant %d: %s", r.idx, r.err))
			continue
		}
		built++
		if built == 1 {
			job.SetParsed(r.res.Document.Pages(), len(r.res.Document.Headings))
		}
		job.VariantDone(r.idx, doctree.Count(r.res.Nodes))
	}
	log.Info("warming complete", "variants", len(job.Variants), "built", built)

	switch {
	case built == len(job.Variants):
		job.SetStatus(StatusCompleted, "done")
	case built > 0:
		job.SetStatus(StatusPartial, "done")
	default:
		job.SetStatus(StatusFailed, "building")
	}
}
