package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/engine"
	"github.com/dgallion1/docoutline/internal/outline"
)

// flexString accepts a JSON string, number or bool, so "depth": 3 and
// "depth": "3" mean the same thing.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		raw = ""
	}
	*f = flexString(raw)
	return nil
}

type outlineRequest struct {
	DocumentID    string     `json:"document_id"`
	Content       string     `json:"content"`
	Mode          flexString `json:"mode"`
	Depth         flexString `json:"depth"`
	Numbering     flexString `json:"numbering"`
	Sticky        flexString `json:"sticky"`
	Class         string     `json:"class"`
	ManualContent string     `json:"manual_content"`
	CurrentPage   int        `json:"current_page"`
}

// toEngine converts the body with the same fallbacks as shortcode attributes.
func (req outlineRequest) toEngine(defaultDepth int) engine.Request {
	attrs := map[string]string{
		"depth":     strconv.Itoa(defaultDepth),
		"numbering": string(req.Numbering),
		"sticky":    string(req.Sticky),
		"class":     req.Class,
	}
	if req.Mode != "" {
		attrs["mode"] = string(req.Mode)
	}
	if req.Depth != "" {
		attrs["depth"] = string(req.Depth)
	}
	return engine.Request{
		DocumentID:    req.DocumentID,
		Content:       req.Content,
		Options:       outline.OptionsFromAttributes(attrs),
		ManualContent: req.ManualContent,
		CurrentPage:   max(1, req.CurrentPage),
	}
}

func (s *Server) decodeOutlineRequest(w http.ResponseWriter, r *http.Request) (outlineRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	var req outlineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid json body: "+err.Error(), http.StatusBadRequest)
		return req, false
	}
	return req, true
}

func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeOutlineRequest(w, r)
	if !ok {
		return
	}
	res, err := s.engine.Outline(r.Context(), req.toEngine(s.cfg.DefaultDepth))
	if err != nil {
		jsonError(w, "outline failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	nodes := res.Nodes
	if nodes == nil {
		nodes = []*doctree.Node{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"nodes":             nodes,
		"page_map":          res.Document.PageMap,
		"existing_page_map": res.Document.ExistingPageMap,
		"pages":             res.Document.Pages(),
		"options":           res.Options,
		"cache_hit":         res.CacheHit,
	})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeOutlineRequest(w, r)
	if !ok {
		return
	}
	html, err := s.engine.Render(r.Context(), req.toEngine(s.cfg.DefaultDepth))
	if err != nil {
		jsonError(w, "render failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"html": html})
}

func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	var req struct {
		DocumentID string `json:"document_id"`
		Content    string `json:"content"`
		Page       int    `json:"page"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid json body: "+err.Error(), http.StatusBadRequest)
		return
	}
	html, err := s.engine.FilterPage(r.Context(), req.DocumentID, req.Content, req.Page)
	if err != nil {
		jsonError(w, "filter failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"html": html})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
