package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/docoutline/internal/cache"
	"github.com/dgallion1/docoutline/internal/config"
	"github.com/dgallion1/docoutline/internal/engine"
	"github.com/dgallion1/docoutline/internal/permalink"
	"github.com/dgallion1/docoutline/internal/pipeline"
)

const testKey = "test-key"

const twoPages = `<h2 id="intro">Intro</h2><h3>Setup</h3><!--nextpage--><h2>Usage</h2>`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.Config{
		OutlineAPIKey:     testKey,
		DefaultDepth:      3,
		WorkerCount:       1,
		MaxQueueSize:      4,
		MaxConcurrentWarm: 1,
		MaxUploadBytes:    1 << 20,
		JobTTL:            time.Hour,
	}
	eng := engine.New(cache.New(cache.NewMemoryStore(), time.Hour, log), permalink.Pretty{Base: "/docs"}, log)
	orch := pipeline.NewOrchestrator(cfg, eng, log)
	orch.Start(context.Background())
	t.Cleanup(orch.Stop)
	return NewServer(eng, orch, log, cfg)
}

func do(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Authorization", "Bearer "+testKey)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestHealth_NoAuth(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "ok") {
		t.Errorf("unexpected health response: %d %s", rec.Code, rec.Body.String())
	}
}

func TestAuth(t *testing.T) {
	s := newTestServer(t)
	for _, header := range []string{"", "Bearer wrong", "Basic abc"} {
		req := httptest.NewRequest(http.MethodGet, "/api/stats/engine", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("header %q: expected 401, got %d", header, rec.Code)
		}
	}
}

func TestOutline(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/api/outline", map[string]any{
		"document_id": "guide",
		"content":     twoPages,
		"depth":       "3",
		"numbering":   true,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	out := decode(t, rec)

	nodes := out["nodes"].([]any)
	if len(nodes) != 2 {
		t.Fatalf("expected 2 top-level nodes, got %d", len(nodes))
	}
	first := nodes[0].(map[string]any)
	if first["id"] != "intro" || first["number"] != "1." {
		t.Errorf("unexpected first node: %v", first)
	}
	child := first["children"].([]any)[0].(map[string]any)
	if child["id"] != "setup" || child["number"] != "1.1" {
		t.Errorf("unexpected child: %v", child)
	}
	if out["pages"].(float64) != 2 {
		t.Errorf("expected 2 pages, got %v", out["pages"])
	}
	if out["page_map"].(map[string]any)["usage"].(float64) != 2 {
		t.Errorf("expected usage on page 2, got %v", out["page_map"])
	}
	if _, ok := out["existing_page_map"].(map[string]any)["setup"]; ok {
		t.Error("expected generated ids absent from existing_page_map")
	}
}

func TestOutline_EmptyNodesIsArray(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/api/outline", map[string]any{"content": "<p>nothing</p>"})
	if !strings.Contains(rec.Body.String(), `"nodes":[]`) {
		t.Errorf("expected empty node array, got %s", rec.Body.String())
	}
}

func TestOutline_BadJSON(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/outline", strings.NewReader("{"))
	req.Header.Set("Authorization", "Bearer "+testKey)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestRender(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/api/render", map[string]any{
		"document_id":  "guide",
		"content":      twoPages,
		"current_page": 2,
		"sticky":       "yes",
	})
	html := decode(t, rec)["html"].(string)
	if !strings.Contains(html, `class="outline outline--sticky"`) {
		t.Errorf("expected sticky nav, got %s", html)
	}
	if !strings.Contains(html, `href="/docs/guide/#intro"`) || !strings.Contains(html, `href="#usage"`) {
		t.Errorf("unexpected links: %s", html)
	}
}

func TestFilter(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/api/filter", map[string]any{
		"document_id": "guide",
		"content":     "[outline]" + twoPages,
		"page":        1,
	})
	html := decode(t, rec)["html"].(string)
	if !strings.HasPrefix(html, engine.Sentinel+"<nav") {
		t.Errorf("expected injected nav, got %s", html)
	}
	if !strings.Contains(html, `<h3 id="setup">Setup</h3>`) {
		t.Errorf("expected injected heading id, got %s", html)
	}
}

func TestInvalidateAndStats(t *testing.T) {
	s := newTestServer(t)
	body := map[string]any{"document_id": "guide", "content": twoPages}
	do(t, s, http.MethodPost, "/api/outline", body)
	do(t, s, http.MethodPost, "/api/outline", body)

	stats := decode(t, do(t, s, http.MethodGet, "/api/stats/engine", nil))["stats"].(map[string]any)
	if stats["cache_hits"].(float64) != 1 || stats["cache_misses"].(float64) != 1 {
		t.Errorf("unexpected stats: %v", stats)
	}

	out := decode(t, do(t, s, http.MethodDelete, "/api/documents/guide/cache", nil))
	if out["keys_deleted"].(float64) != 1 {
		t.Errorf("expected 1 key deleted, got %v", out)
	}
}

func multipartBody(t *testing.T, filename, content string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	fw.Write([]byte(content))
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestImport(t *testing.T) {
	s := newTestServer(t)
	body, ct := multipartBody(t, "notes.txt", "first page\f\fsecond page", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/import", body)
	req.Header.Set("Authorization", "Bearer "+testKey)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	out := decode(t, rec)
	if out["filename"] != "notes.txt" {
		t.Errorf("unexpected filename %v", out["filename"])
	}
	if !strings.Contains(out["content"].(string), "<!--nextpage-->") {
		t.Errorf("expected page breaks in %q", out["content"])
	}
}

func TestImport_UnsupportedType(t *testing.T) {
	s := newTestServer(t)
	body, ct := multipartBody(t, "data.xlsx", "x", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/import", body)
	req.Header.Set("Authorization", "Bearer "+testKey)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func waitForJob(t *testing.T, s *Server, jobID string) map[string]any {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		out := decode(t, do(t, s, http.MethodGet, "/api/warm/"+jobID+"/status", nil))
		if st := out["status"]; st == "completed" || st == "failed" || st == "partial" {
			return out
		}
		if time.Now().After(deadline) {
			t.Fatalf("job %s did not finish: %v", jobID, out)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestWarm_JSON(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/api/warm", map[string]any{
		"document_id": "guide",
		"content":     twoPages,
		"variants":    []map[string]any{{"depth": 1}, {"depth": 2, "numbering": "on"}},
	})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	out := decode(t, rec)
	jobID := out["job_id"].(string)
	if out["poll_url"] != "/api/warm/"+jobID+"/status" {
		t.Errorf("unexpected poll url %v", out["poll_url"])
	}

	final := waitForJob(t, s, jobID)
	if final["status"] != "completed" {
		t.Fatalf("expected completed, got %v", final)
	}
	nodes := final["progress"].(map[string]any)["nodes"].([]any)
	if nodes[0].(float64) != 2 || nodes[1].(float64) != 3 {
		t.Errorf("expected node counts [2 3], got %v", nodes)
	}
}

func TestWarm_Multipart(t *testing.T) {
	s := newTestServer(t)
	body, ct := multipartBody(t, "guide.md", "## One\n\n## Two\n", map[string]string{"document_id": "md-guide"})
	req := httptest.NewRequest(http.MethodPost, "/api/warm", body)
	req.Header.Set("Authorization", "Bearer "+testKey)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}

	final := waitForJob(t, s, decode(t, rec)["job_id"].(string))
	if final["status"] != "completed" || final["doc_id"] != "md-guide" {
		t.Errorf("unexpected final job: %v", final)
	}
}

func TestWarm_MissingDocumentID(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/api/warm", map[string]any{"content": twoPages})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestWarmStatus_NotFound(t *testing.T) {
	s := newTestServer(t)
	if rec := do(t, s, http.MethodGet, "/api/warm/nope/status", nil); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"report.pdf":          "report.pdf",
		"../../etc/passwd":    "passwd",
		"dir/notes..txt":      "notes_txt",
		"":                    "unnamed",
		`C:\\temp\\file.docx`: `C:__temp__file.docx`,
	}
	for in, want := range cases {
		if got := sanitizeFilename(in); got != want {
			t.Errorf("sanitizeFilename(%q): expected %q, got %q", in, want, got)
		}
	}
}
