package cache

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/docoutline/internal/doctree"
)

func sampleDoc() *doctree.ParsedDocument {
	return &doctree.ParsedDocument{
		PageMap:         doctree.PageMap{"a": 1, "d": 2},
		ExistingPageMap: doctree.PageMap{"a": 1},
		Headings: []doctree.HeadingRecord{
			{ID: "a", Level: 2, Title: "A", Page: 1},
			{ID: "d", Level: 2, Title: "D", Page: 2},
		},
		PageContent: map[int]string{1: `<h2 id="a">A</h2>`, 2: `<h2 id="d">D</h2>`},
	}
}

func TestKey(t *testing.T) {
	doc := documentKey("42")
	if len(doc) != 64 {
		t.Fatalf("expected 64 hex chars, got %q", doc)
	}
	if got := Key("42", "hybrid", 5, true); got != "outline_"+doc+"_hybrid_5_1" {
		t.Errorf("expected outline_<hash>_hybrid_5_1, got %q", got)
	}
	if Key("42", "auto", 3, true) == Key("42", "auto", 3, false) {
		t.Error("expected numbering to change the key")
	}
	if got := IndexKey("42"); got != "outline_keys_"+doc {
		t.Errorf("expected outline_keys_<hash>, got %q", got)
	}
	if Key("42", "auto", 3, false) != Key("42", "auto", 3, false) {
		t.Error("expected key to be deterministic")
	}
}

func TestKey_DistinctDocumentIDs(t *testing.T) {
	// Each group differs only in case, punctuation or non-ASCII text.
	groups := [][]string{
		{"Guide", "guide", "GUIDE"},
		{"docs/a.md", "docs/am.d", "docsamd"},
		{"My Doc!", "mydoc", "my-doc"},
		{"日本", "中文", "", "_"},
	}
	for _, ids := range groups {
		seen := map[string]string{}
		index := map[string]string{}
		for _, id := range ids {
			k := Key(id, "auto", 3, false)
			if prev, ok := seen[k]; ok {
				t.Errorf("ids %q and %q share key %q", prev, id, k)
			}
			seen[k] = id
			ik := IndexKey(id)
			if prev, ok := index[ik]; ok {
				t.Errorf("ids %q and %q share index key %q", prev, id, ik)
			}
			index[ik] = id
		}
	}
}

func TestCache_DocumentsIsolated(t *testing.T) {
	ctx := context.Background()
	c := New(NewMemoryStore(), time.Hour, nil)

	upper, lower := sampleDoc(), sampleDoc()
	lower.PageMap = doctree.PageMap{"other": 1}

	if err := c.Save(ctx, "Guide", Key("Guide", "auto", 3, false), upper); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, ok, _ := c.Load(ctx, Key("guide", "auto", 3, false)); ok {
		t.Fatal("expected miss for a different document id")
	}
	if err := c.Save(ctx, "guide", Key("guide", "auto", 3, false), lower); err != nil {
		t.Fatalf("save: %v", err)
	}

	n, err := c.InvalidateAll(ctx, "guide")
	if err != nil || n != 1 {
		t.Fatalf("expected 1 key invalidated, got %d err=%v", n, err)
	}
	doc, ok, err := c.Load(ctx, Key("Guide", "auto", 3, false))
	if err != nil || !ok {
		t.Fatalf("expected other document to survive invalidation, got ok=%v err=%v", ok, err)
	}
	if !doc.PageMap.Has("d") {
		t.Errorf("expected the Guide parse, got %v", doc.PageMap)
	}
}

func TestCache_SaveLoad(t *testing.T) {
	ctx := context.Background()
	c := New(NewMemoryStore(), time.Hour, nil)
	key := Key("42", "auto", 3, false)

	if _, ok, err := c.Load(ctx, key); ok || err != nil {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
	if err := c.Save(ctx, "42", key, sampleDoc()); err != nil {
		t.Fatalf("save: %v", err)
	}
	doc, ok, err := c.Load(ctx, key)
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if doc.PageMap["d"] != 2 || doc.Pages() != 2 || len(doc.Headings) != 2 {
		t.Errorf("unexpected round trip: %+v", doc)
	}
}

func TestCache_TracksKeysOnce(t *testing.T) {
	ctx := context.Background()
	c := New(NewMemoryStore(), time.Hour, nil)
	k1 := Key("42", "auto", 3, false)
	k2 := Key("42", "auto", 2, true)

	for _, k := range []string{k1, k2, k1} {
		if err := c.Save(ctx, "42", k, sampleDoc()); err != nil {
			t.Fatalf("save %s: %v", k, err)
		}
	}
	keys, err := c.Keys(ctx, "42")
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	if len(keys) != 2 || keys[0] != k1 || keys[1] != k2 {
		t.Errorf("expected [%s %s], got %v", k1, k2, keys)
	}
}

func TestCache_InvalidateAll(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	c := New(store, time.Hour, nil)
	k1 := Key("42", "auto", 3, false)
	k2 := Key("42", "manual", 3, false)
	other := Key("7", "auto", 3, false)

	for _, s := range []struct{ doc, key string }{{"42", k1}, {"42", k2}, {"7", other}} {
		if err := c.Save(ctx, s.doc, s.key, sampleDoc()); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	n, err := c.InvalidateAll(ctx, "42")
	if err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 keys removed, got %d", n)
	}
	for _, k := range []string{k1, k2, IndexKey("42")} {
		if _, ok, _ := store.Get(ctx, k); ok {
			t.Errorf("expected %s removed", k)
		}
	}
	if _, ok, _ := c.Load(ctx, other); !ok {
		t.Error("expected other document untouched")
	}
}

func TestCache_UndecodableEntryIsMiss(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	store := NewMemoryStore()
	c := New(store, time.Hour, slog.New(slog.NewTextHandler(&buf, nil)))

	store.Set(ctx, "k", []byte("{not json"), 0)
	if _, ok, err := c.Load(ctx, "k"); ok || err != nil {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
	if store.Len() != 0 {
		t.Error("expected bad entry removed")
	}
	if !strings.Contains(buf.String(), "undecodable") {
		t.Errorf("expected warning, got %q", buf.String())
	}
}

type failingStore struct{ *MemoryStore }

var errDown = errors.New("store down")

func (f *failingStore) Get(context.Context, string) ([]byte, bool, error) { return nil, false, errDown }

func TestCache_StoreErrorsPropagate(t *testing.T) {
	c := New(&failingStore{NewMemoryStore()}, time.Hour, nil)
	if _, _, err := c.Load(context.Background(), "k"); !errors.Is(err, errDown) {
		t.Errorf("expected wrapped store error, got %v", err)
	}
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewMemoryStore()
	s.now = func() time.Time { return now }

	s.Set(ctx, "short", []byte("x"), time.Minute)
	s.Set(ctx, "forever", []byte("y"), 0)

	if v, ok, _ := s.Get(ctx, "short"); !ok || string(v) != "x" {
		t.Fatalf("expected fresh entry, got %q %v", v, ok)
	}

	now = now.Add(2 * time.Minute)
	if _, ok, _ := s.Get(ctx, "short"); ok {
		t.Error("expected expired entry to miss")
	}
	s.Set(ctx, "short2", []byte("z"), time.Minute)
	now = now.Add(time.Hour)
	if n := s.Cleanup(); n != 1 {
		t.Errorf("expected 1 entry cleaned, got %d", n)
	}
	if _, ok, _ := s.Get(ctx, "forever"); !ok {
		t.Error("expected entry without ttl to survive")
	}
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	in := []byte("abc")
	s.Set(ctx, "k", in, 0)
	in[0] = 'X'

	out, _, _ := s.Get(ctx, "k")
	if string(out) != "abc" {
		t.Errorf("expected stored copy, got %q", out)
	}
	out[1] = 'Y'
	again, _, _ := s.Get(ctx, "k")
	if string(again) != "abc" {
		t.Errorf("expected returned copy, got %q", again)
	}
}
