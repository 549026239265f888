package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// Cache stores ParsedDocuments as JSON and tracks which keys belong to each
// document so they can be invalidated together.
type Cache struct {
	store Store
	ttl   time.Duration
	log   *slog.Logger

	// Serializes index read-modify-write within this process.
	indexMu sync.Mutex
}

func New(store Store, ttl time.Duration, log *slog.Logger) *Cache {
	if log == nil {
		log = slog.Default()
	}
	return &Cache{store: store, ttl: ttl, log: log}
}

// Load returns the cached document for key. A value that cannot be decoded
// is treated as a miss and removed.
func (c *Cache) Load(ctx context.Context, key string) (*doctree.ParsedDocument, bool, error) {
	data, ok, err := c.store.Get(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("cache get %s: %w", key, err)
	}
	if !ok {
		return nil, false, nil
	}

	var doc doctree.ParsedDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		c.log.Warn("discarding undecodable cache entry", "key", key, "error", err)
		if err := c.store.Delete(ctx, key); err != nil {
			c.log.Warn("delete undecodable cache entry", "key", key, "error", err)
		}
		return nil, false, nil
	}
	return &doc, true, nil
}

// Save stores doc under key and records key in the document's index.
func (c *Cache) Save(ctx context.Context, documentID, key string, doc *doctree.ParsedDocument) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return c.track(ctx, documentID, key)
}

// Keys returns every key recorded for the document.
func (c *Cache) Keys(ctx context.Context, documentID string) ([]string, error) {
	data, ok, err := c.store.Get(ctx, IndexKey(documentID))
	if err != nil {
		return nil, fmt.Errorf("cache get index: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var keys []string
	if err := json.Unmarshal(data, &keys); err != nil {
		c.log.Warn("discarding undecodable key index", "document_id", documentID, "error", err)
		return nil, nil
	}
	return keys, nil
}

func (c *Cache) track(ctx context.Context, documentID, key string) error {
	c.indexMu.Lock()
	defer c.indexMu.Unlock()

	keys, err := c.Keys(ctx, documentID)
	if err != nil {
		return err
	}
	if slices.Contains(keys, key) {
		return nil
	}
	keys = append(keys, key)

	data, err := json.Marshal(keys)
	if err != nil {
		return fmt.Errorf("marshal key index: %w", err)
	}
	if err := c.store.Set(ctx, IndexKey(documentID), data, 0); err != nil {
		return fmt.Errorf("cache set index: %w", err)
	}
	return nil
}

// InvalidateAll deletes every cached entry of the document and its index.
// It returns the number of entry keys removed.
func (c *Cache) InvalidateAll(ctx context.Context, documentID string) (int, error) {
	c.indexMu.Lock()
	defer c.indexMu.Unlock()

	keys, err := c.Keys(ctx, documentID)
	if err != nil {
		return 0, err
	}
	if err := c.store.Delete(ctx, append(keys, IndexKey(documentID))...); err != nil {
		return 0, fmt.Errorf("cache delete: %w", err)
	}
	return len(keys), nil
}

// Close closes the underlying store.
func (c *Cache) Close() error {
	return c.store.Close()
}
