package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/parser"
	"github.com/dgallion1/docoutline/internal/pipeline"
)

// readUpload reads the "file" part of a multipart request, enforcing the
// upload limit. It writes the error response itself and reports success.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return "", nil, false
	}
	// Form values stay in memory; only spilled file parts are removed.
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return "", nil, false
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return "", nil, false
	}

	data, err := readLimited(file, s.cfg.MaxUploadBytes)
	if err != nil {
		jsonError(w, err.Error(), http.StatusRequestEntityTooLarge)
		return "", nil, false
	}
	return filename, data, true
}

func readLimited(f multipart.File, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file")
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("file exceeds max size (%d bytes)", limit)
	}
	return data, nil
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	filename, data, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	content, err := parser.Import(bytes.NewReader(data), filename,
		parser.ImportOptions{PDFFallbackPdftotext: s.cfg.PDFFallbackPdftotext})
	if err != nil {
		s.log.Warn("import failed", "filename", filename, "error", err)
		jsonError(w, "import failed: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"filename": filename,
		"content":  content,
		"pages":    len(parser.SplitPages(content)),
	})
}

type warmVariant struct {
	Mode      flexString `json:"mode"`
	Depth     flexString `json:"depth"`
	Numbering flexString `json:"numbering"`
}

func (v warmVariant) options(defaultDepth int) outline.Options {
	req := outlineRequest{Mode: v.Mode, Depth: v.Depth, Numbering: v.Numbering}
	return req.toEngine(defaultDepth).Options
}

// handleWarm queues a cache warming job. It takes either a JSON body
// {document_id, content, variants, refresh} or a multipart upload with
// "file", "document_id" and "refresh" fields.
func (s *Server) handleWarm(w http.ResponseWriter, r *http.Request) {
	var job *pipeline.Job

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		filename, data, ok := s.readUpload(w, r)
		if !ok {
			return
		}

		docID := r.FormValue("document_id")
		if docID == "" {
			docID = pipeline.ContentHashHex(data)[:16]
		}
		job = pipeline.NewJob(docID, nil)
		job.Filename = filename
		job.Refresh = outline.ParseBool(r.FormValue("refresh"))
		job.SetFileData(data)
	} else {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
		var req struct {
			DocumentID string        `json:"document_id"`
			Content    string        `json:"content"`
			Variants   []warmVariant `json:"variants"`
			Refresh    bool          `json:"refresh"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			jsonError(w, "invalid json body: "+err.Error(), http.StatusBadRequest)
			return
		}
		if req.DocumentID == "" {
			jsonError(w, "document_id is required", http.StatusBadRequest)
			return
		}
		variants := make([]outline.Options, 0, len(req.Variants))
		for _, v := range req.Variants {
			variants = append(variants, v.options(s.cfg.DefaultDepth))
		}
		job = pipeline.NewJob(req.DocumentID, variants)
		job.Refresh = req.Refresh
		job.SetContent(req.Content)
	}

	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	snap := job.Snapshot()
	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":   snap.ID,
		"doc_id":   snap.DocID,
		"status":   snap.Status,
		"poll_url": fmt.Sprintf("/api/warm/%s/status", snap.ID),
	})
}

func (s *Server) handleWarmStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

func (s *Server) handleInvalidate(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	n, err := s.engine.Invalidate(r.Context(), docID)
	if err != nil {
		jsonError(w, "invalidate failed: "+err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"document_id":  docID,
		"keys_deleted": n,
	})
}

func (s *Server) handleEngineStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"stats":       s.engine.Stats().Snapshot(),
		"queue_depth": s.orchestrator.QueueDepth(),
	})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
